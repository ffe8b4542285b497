package driven

import (
	"context"
	"errors"

	"github.com/slackdeck/slackdeck/internal/domain/model"
)

// ErrDuplicateMessage indicates an insert with a remote timestamp that is
// already stored. The messages table enforces uniqueness on message_ts.
var ErrDuplicateMessage = errors.New("message with this timestamp already exists")

// MessageStore persists messages that were successfully posted to Slack.
// Rows are never mutated after creation.
type MessageStore interface {
	// Insert stores a sent message and returns it with ID and CreatedAt
	// populated. Returns ErrDuplicateMessage when the remote timestamp is
	// already present.
	Insert(ctx context.Context, msg model.SentMessage) (model.SentMessage, error)

	// ListRecent returns up to limit stored messages, newest first.
	ListRecent(ctx context.Context, limit int) ([]model.SentMessage, error)

	// ListByChannel returns up to limit stored messages for one channel,
	// newest first.
	ListByChannel(ctx context.Context, channelID string, limit int) ([]model.SentMessage, error)

	// GetByTimestamp returns the stored message with the given remote
	// timestamp, or nil, nil when none exists.
	GetByTimestamp(ctx context.Context, messageTS string) (*model.SentMessage, error)

	// ListReplies returns the stored replies of a parent message: every
	// message whose thread timestamp equals the parent's own remote
	// timestamp. A message that is itself a reply has no replies.
	ListReplies(ctx context.Context, parent model.SentMessage) ([]model.SentMessage, error)
}
