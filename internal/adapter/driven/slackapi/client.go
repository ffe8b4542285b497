// Package slackapi implements the SlackClient port using the slack-go library.
package slackapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/slack-go/slack"

	"github.com/slackdeck/slackdeck/internal/domain/model"
	"github.com/slackdeck/slackdeck/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.SlackClient = (*Client)(nil)

// conversationsPageSize is the page size used for conversations.list calls.
const conversationsPageSize = 200

// Client implements the driven.SlackClient port bound to a single access
// token. Every remote failure is logged with operation context and returned
// as a *model.OpError; callers never see a raw transport fault.
//
// A Client is built per request and used from a single goroutine.
type Client struct {
	api    *slack.Client
	userID string // Authenticated user id, cached after a successful auth.test.
}

// NewClient creates a Slack API client for the given token. No retry,
// backoff, or rate-limit middleware is attached; every call is single-shot.
func NewClient(token string) *Client {
	return &Client{api: slack.New(token)}
}

// NewClientWithHTTPClient creates a Client with a custom http.Client and API
// base URL. This constructor is intended for testing, allowing injection of
// an httptest server.
func NewClientWithHTTPClient(httpClient *http.Client, baseURL, token string) *Client {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}

	api := slack.New(token,
		slack.OptionHTTPClient(httpClient),
		slack.OptionAPIURL(baseURL),
	)
	return &Client{api: api}
}

// Authenticate verifies the bound token via auth.test and returns the remote
// identity payload.
func (c *Client) Authenticate(ctx context.Context) (*model.Identity, error) {
	resp, err := c.api.AuthTestContext(ctx)
	if err != nil {
		return nil, c.fail("auth.test", err)
	}

	c.userID = resp.UserID

	return &model.Identity{
		Team:   resp.Team,
		User:   resp.User,
		TeamID: resp.TeamID,
		UserID: resp.UserID,
		URL:    resp.URL,
		BotID:  resp.BotID,
	}, nil
}

// ListChannels fetches public channels, private channels, and direct
// messages and merges them into one ordered list. A failure in any of the
// three conversations.list fetches aborts the whole operation; a failed
// users.info lookup for a single DM only degrades that entry's name.
func (c *Client) ListChannels(ctx context.Context) ([]model.Channel, error) {
	publics, err := c.fetchConversations(ctx, "public_channel")
	if err != nil {
		return nil, c.fail("conversations.list public_channel", err)
	}

	privates, err := c.fetchConversations(ctx, "private_channel")
	if err != nil {
		return nil, c.fail("conversations.list private_channel", err)
	}

	ims, err := c.fetchConversations(ctx, "im")
	if err != nil {
		return nil, c.fail("conversations.list im", err)
	}

	channels := make([]model.Channel, 0, len(publics)+len(privates)+len(ims))

	for _, ch := range publics {
		channels = append(channels, model.Channel{
			ID:       ch.ID,
			Name:     "#" + ch.Name,
			Kind:     model.ChannelPublic,
			IsMember: ch.IsMember,
		})
	}

	for _, ch := range privates {
		channels = append(channels, model.Channel{
			ID:       ch.ID,
			Name:     "#" + ch.Name,
			Kind:     model.ChannelPrivate,
			IsMember: ch.IsMember,
		})
	}

	for _, dm := range ims {
		channels = append(channels, model.Channel{
			ID:       dm.ID,
			Name:     c.dmDisplayName(ctx, dm.User),
			Kind:     model.ChannelIM,
			IsMember: true,
		})
	}

	return channels, nil
}

// PostMessage posts a new top-level message to a channel and returns the
// remote-assigned timestamp.
func (c *Client) PostMessage(ctx context.Context, channelID, text string) (*model.PostedMessage, error) {
	respChannel, timestamp, err := c.api.PostMessageContext(ctx, channelID,
		slack.MsgOptionText(text, false),
	)
	if err != nil {
		return nil, c.fail("chat.postMessage", err)
	}

	return &model.PostedMessage{
		ChannelID: respChannel,
		Timestamp: timestamp,
		SenderID:  c.senderID(ctx),
	}, nil
}

// PostReply posts a message into the thread rooted at threadTS. It is the
// same remote operation as PostMessage with a thread timestamp attached;
// the reply receives its own timestamp, distinct from the parent's.
func (c *Client) PostReply(ctx context.Context, channelID, threadTS, text string) (*model.PostedMessage, error) {
	respChannel, timestamp, err := c.api.PostMessageContext(ctx, channelID,
		slack.MsgOptionText(text, false),
		slack.MsgOptionTS(threadTS),
	)
	if err != nil {
		return nil, c.fail("chat.postMessage thread", err)
	}

	return &model.PostedMessage{
		ChannelID: respChannel,
		Timestamp: timestamp,
		SenderID:  c.senderID(ctx),
	}, nil
}

// GetChannelHistory fetches up to limit recent entries from a channel and
// keeps only plain user messages: entries carrying a subtype (joins, bot
// posts, topic changes) are dropped.
func (c *Client) GetChannelHistory(ctx context.Context, channelID string, limit int) ([]model.HistoryEntry, error) {
	resp, err := c.api.GetConversationHistoryContext(ctx, &slack.GetConversationHistoryParameters{
		ChannelID: channelID,
		Limit:     limit,
	})
	if err != nil {
		return nil, c.fail("conversations.history", err)
	}

	entries := make([]model.HistoryEntry, 0, len(resp.Messages))
	for _, msg := range resp.Messages {
		if msg.Type != "message" || msg.SubType != "" {
			continue
		}

		var threadTS *string
		if msg.ThreadTimestamp != "" {
			ts := msg.ThreadTimestamp
			threadTS = &ts
		}

		entries = append(entries, model.HistoryEntry{
			Timestamp:  msg.Timestamp,
			Text:       msg.Text,
			SenderID:   msg.User,
			ThreadTS:   threadTS,
			ReplyCount: msg.ReplyCount,
		})
	}

	return entries, nil
}

// senderID returns the id of the user the bound token acts as, resolving it
// via auth.test the first time it is needed. chat.postMessage does not echo
// the posting user, so the id must come from the token's own identity. A
// failed lookup returns the empty id; the message was already posted, and
// callers substitute their placeholder sender.
func (c *Client) senderID(ctx context.Context) string {
	if c.userID != "" {
		return c.userID
	}

	resp, err := c.api.AuthTestContext(ctx)
	if err != nil {
		slog.Warn("slack auth.test lookup for sender id failed",
			"error", err,
		)
		return ""
	}

	c.userID = resp.UserID
	return c.userID
}

// fetchConversations pages through conversations.list for one conversation
// type, excluding archived conversations.
func (c *Client) fetchConversations(ctx context.Context, conversationType string) ([]slack.Channel, error) {
	params := &slack.GetConversationsParameters{
		Types:           []string{conversationType},
		ExcludeArchived: true,
		Limit:           conversationsPageSize,
	}

	var all []slack.Channel
	for {
		channels, nextCursor, err := c.api.GetConversationsContext(ctx, params)
		if err != nil {
			return nil, err
		}

		all = append(all, channels...)

		if nextCursor == "" {
			return all, nil
		}
		params.Cursor = nextCursor
	}
}

// dmDisplayName resolves the counterpart's human name for a direct message.
// When the users.info lookup fails the entry is kept with a deterministic
// fallback name derived from the counterpart's id.
func (c *Client) dmDisplayName(ctx context.Context, userID string) string {
	user, err := c.api.GetUserInfoContext(ctx, userID)
	if err != nil {
		slog.Warn("slack users.info lookup failed, using fallback name",
			"user_id", userID,
			"error", err,
		)
		return "@user_" + userID
	}

	name := user.RealName
	if name == "" {
		name = user.Name
	}
	return "@" + name
}

// fail logs a remote failure with operation context and converts it to the
// tagged error the rest of the system consumes. An explicit Slack-side
// rejection keeps the remote-supplied message; anything else (network
// fault, decoding fault) becomes an unexpected failure.
func (c *Client) fail(op string, err error) *model.OpError {
	var apiErr slack.SlackErrorResponse
	if errors.As(err, &apiErr) {
		slog.Error("slack api call rejected",
			"op", op,
			"error", apiErr.Err,
		)
		return model.NewOpError(model.ErrKindRemoteRejected, apiErr.Error())
	}

	var rateErr *slack.RateLimitedError
	if errors.As(err, &rateErr) {
		slog.Error("slack api call rate limited",
			"op", op,
			"retry_after", rateErr.RetryAfter,
		)
		return model.NewOpError(model.ErrKindRemoteRejected, rateErr.Error())
	}

	slog.Error("slack api call failed",
		"op", op,
		"error", err,
	)
	return model.NewOpError(model.ErrKindUnexpected, fmt.Sprintf("Unexpected error: %v", err))
}
