// Package moderation censors blacklisted words in chat content before it
// reaches the transcript and the subscribers.
package moderation

import (
	"unicode"

	goahocorasick "github.com/anknown/ahocorasick"
)

type Moderator struct {
	matcher      *goahocorasick.Machine
	censoredChar rune
}

// NewModerator builds the Aho-Corasick automaton from a lowercased copy of
// the word list, so matching is case-insensitive.
func NewModerator(censoredWords []string, censoredChar rune) (Moderator, error) {
	patterns := make([][]rune, len(censoredWords))
	for i, word := range censoredWords {
		patterns[i] = lowerRunes([]rune(word))
	}

	m := new(goahocorasick.Machine)
	if err := m.Build(patterns); err != nil {
		return Moderator{}, err
	}
	return Moderator{matcher: m, censoredChar: censoredChar}, nil
}

// Censor replaces every character of a forbidden span with the replacement
// rune, preserving the length and spacing of the original text.
func (m *Moderator) Censor(original string) string {
	origRunes := []rune(original)
	if len(origRunes) == 0 {
		return original
	}

	spans := m.matcher.MultiPatternSearch(lowerRunes(origRunes), false)
	if len(spans) == 0 {
		return original
	}

	for _, span := range spans {
		start := span.Pos
		end := start + len(span.Word)
		if start < 0 || end > len(origRunes) {
			continue
		}
		for i := start; i < end; i++ {
			origRunes[i] = m.censoredChar
		}
	}
	return string(origRunes)
}

// lowerRunes maps one-to-one so match positions stay valid in the
// original text.
func lowerRunes(in []rune) []rune {
	out := make([]rune, len(in))
	for i, r := range in {
		out[i] = unicode.ToLower(r)
	}
	return out
}
