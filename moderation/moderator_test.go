package moderation

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestModerator_CensorsKnownWords(t *testing.T) {
	req := require.New(t)
	moderator, err := NewModerator([]string{"darn", "heck"}, '*')
	req.NoError(err)

	req.Equal("**** it all to ****", moderator.Censor("darn it all to heck"))
}

func TestModerator_IsCaseInsensitive(t *testing.T) {
	req := require.New(t)
	moderator, err := NewModerator([]string{"darn"}, '*')
	req.NoError(err)

	req.Equal("**** and ****", moderator.Censor("DARN and DaRn"))
}

func TestModerator_LeavesCleanTextUntouched(t *testing.T) {
	req := require.New(t)
	moderator, err := NewModerator([]string{"darn"}, '*')
	req.NoError(err)

	clean := "a perfectly polite sentence"
	req.Equal(clean, moderator.Censor(clean))
}

func TestModerator_HandlesUnicodeContent(t *testing.T) {
	req := require.New(t)
	moderator, err := NewModerator([]string{"zut"}, '#')
	req.NoError(err)

	req.Equal("### alors, ça c'est embêtant", moderator.Censor("zut alors, ça c'est embêtant"))
}

func TestLoadEmbedded(t *testing.T) {
	req := require.New(t)

	data, err := LoadEmbedded()
	req.NoError(err)
	req.NotEmpty(data.Words)
	req.Contains(data.Languages, "en")
	req.Contains(data.Languages, "fr")
	req.Contains(data.Words, "darn")
}
