package driven

import (
	"context"
	"time"

	"github.com/slackdeck/slackdeck/internal/domain/model"
)

// CredentialStore persists stored Slack credentials. Credentials are only
// ever soft-deactivated; no method removes a row.
type CredentialStore interface {
	// Create inserts a new credential and returns it with ID and
	// CreatedAt populated.
	Create(ctx context.Context, cred model.Credential) (model.Credential, error)

	// GetActive returns the active credential with the given id, or
	// nil, nil when no such active credential exists.
	GetActive(ctx context.Context, id int64) (*model.Credential, error)

	// ListActive returns all active credentials, newest first.
	ListActive(ctx context.Context) ([]model.Credential, error)

	// Count returns the total number of credentials, active or not.
	Count(ctx context.Context) (int, error)

	// TouchLastUsed stamps the credential's last-used timestamp.
	// Concurrent writers race benignly; last writer wins.
	TouchLastUsed(ctx context.Context, id int64, usedAt time.Time) error

	// Deactivate clears the active flag on the credential.
	Deactivate(ctx context.Context, id int64) error
}
