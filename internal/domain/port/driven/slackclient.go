// Package driven defines the driven-side port interfaces: what the
// application core requires from storage and from the Slack Web API.
package driven

import (
	"context"

	"github.com/slackdeck/slackdeck/internal/domain/model"
)

// SlackClient is the remote API adapter port. Every implementation is
// bound to a single access token; failures surface as *model.OpError so
// callers never see a raw transport fault.
type SlackClient interface {
	// Authenticate verifies the bound token and returns the remote identity.
	Authenticate(ctx context.Context) (*model.Identity, error)

	// ListChannels returns public channels, private channels, and direct
	// messages merged into one ordered list.
	ListChannels(ctx context.Context) ([]model.Channel, error)

	// PostMessage posts a new top-level message to a channel.
	PostMessage(ctx context.Context, channelID, text string) (*model.PostedMessage, error)

	// PostReply posts a message into the thread rooted at threadTS.
	PostReply(ctx context.Context, channelID, threadTS, text string) (*model.PostedMessage, error)

	// GetChannelHistory returns up to limit recent plain user messages from
	// a channel, newest first. System and bot entries are excluded.
	GetChannelHistory(ctx context.Context, channelID string, limit int) ([]model.HistoryEntry, error)
}

// ClientFactory builds a SlackClient bound to the given token. The
// application core uses it to construct a client per stored credential.
type ClientFactory func(token string) SlackClient
