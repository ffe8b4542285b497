// Package viewmodel defines presentation-ready structs for templ components.
// View models decouple template rendering from domain model types.
package viewmodel

// FlashViewModel is a one-shot notice shown at the top of the dashboard.
type FlashViewModel struct {
	Level   string // "success" or "error"
	Message string
}

// CredentialViewModel holds presentation-ready data for one stored credential.
type CredentialViewModel struct {
	ID       int64
	Name     string
	TeamName string
	UserName string
	AddedAt  string
	LastUsed string // empty when the credential has never been used
}

// SentMessageViewModel holds presentation-ready data for one stored sent message.
type SentMessageViewModel struct {
	TS          string
	ChannelID   string
	ChannelName string
	User        string
	Text        string
	TextHTML    string // sanitized markdown rendering of Text
	IsReply     bool
	ThreadTS    string // empty for top-level messages
	SentAt      string
}

// DashboardViewModel holds everything the dashboard page renders.
type DashboardViewModel struct {
	Flash          *FlashViewModel
	Credentials    []CredentialViewModel
	RecentMessages []SentMessageViewModel
}
