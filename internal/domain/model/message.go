package model

import "time"

// SentMessage is a message this console successfully posted to Slack.
// MessageTS is the Slack-assigned timestamp and doubles as the remote
// identifier; it is unique across all stored messages. ThreadTS is the
// parent message's timestamp when this message is a threaded reply.
type SentMessage struct {
	ID          int64
	ChannelID   string
	ChannelName string
	MessageTS   string
	Text        string
	ThreadTS    *string
	UserID      string
	CreatedAt   time.Time
}

// IsThreadReply reports whether the message was posted into a thread.
func (m SentMessage) IsThreadReply() bool {
	return m.ThreadTS != nil
}
