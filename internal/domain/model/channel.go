package model

// ChannelKind identifies the kind of Slack conversation a channel entry is.
type ChannelKind string

const (
	ChannelPublic  ChannelKind = "public_channel"
	ChannelPrivate ChannelKind = "private_channel"
	ChannelIM      ChannelKind = "im"
)

// Channel is one reachable conversation target. Name carries a display
// prefix: "#" for public and private channels, "@" for direct messages.
type Channel struct {
	ID       string
	Name     string
	Kind     ChannelKind
	IsMember bool
}
