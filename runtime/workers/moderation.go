package workers

import (
	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/moderation"
	"context"
	"log/slog"

	"github.com/abadojack/whatlanggo"
)

var _ contract.Worker = (*ModerationWorker)(nil)

// ModerationWorker is the sanitizing stage of the pipeline. Chat commands
// get their content censored and tagged with a detected language; lifecycle
// commands pass through untouched. The stage is strictly one-in-one-out,
// so the pipeline's total order survives it.
type ModerationWorker struct {
	moderator moderation.Moderator
	commands  chan domain.Command
	sanitized chan domain.Command
	log       *slog.Logger
}

func NewModerationWorker(moderator moderation.Moderator,
	commands, sanitized chan domain.Command, log *slog.Logger) *ModerationWorker {
	return &ModerationWorker{
		moderator: moderator,
		commands:  commands,
		sanitized: sanitized,
		log:       log,
	}
}

func (w *ModerationWorker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Stopping worker")
			return ctx.Err()
		case cmd, ok := <-w.commands:
			if !ok {
				w.log.Debug("Channel is closed")
				return nil
			}
			if postCmd, isPost := cmd.(domain.PostMessageCommand); isPost {
				cmd = w.sanitize(postCmd)
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case w.sanitized <- cmd:
			}
		}
	}
}

func (w *ModerationWorker) sanitize(cmd domain.PostMessageCommand) domain.PostMessageCommand {
	info := whatlanggo.Detect(cmd.Content)
	cmd.Lang = info.Lang.Iso6391()
	cmd.Content = w.moderator.Censor(cmd.Content)
	return cmd
}
