package model

// Identity is the auth.test payload for a verified token.
type Identity struct {
	Team   string
	User   string
	TeamID string
	UserID string
	URL    string
	BotID  string
}

// PostedMessage is the remote-assigned result of a successful post.
// SenderID may be empty when the remote response does not identify the
// sender; callers substitute a placeholder before persisting.
type PostedMessage struct {
	ChannelID string
	Timestamp string
	SenderID  string
}

// HistoryEntry is one plain user message from a channel's recent history.
// ThreadTS is nil for messages outside any thread. Slack sets it equal to
// the message's own timestamp on thread parents; that value is passed
// through untouched.
type HistoryEntry struct {
	Timestamp  string
	Text       string
	SenderID   string
	ThreadTS   *string
	ReplyCount int
}
