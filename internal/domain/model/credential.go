package model

import "time"

// Credential is a named Slack access token bound to one remote account.
// TeamName and UserName are captured from the auth.test payload when the
// token is first verified. Credentials are soft-deactivated, never deleted.
type Credential struct {
	ID        int64
	Name      string
	Token     string
	TeamName  string
	UserName  string
	IsActive  bool
	CreatedAt time.Time
	LastUsed  *time.Time
}
