// Package application contains the console's use-case services.
package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/slackdeck/slackdeck/internal/domain/model"
	"github.com/slackdeck/slackdeck/internal/domain/port/driven"
)

const (
	// recentMessageCount is how many sent messages the dashboard shows.
	recentMessageCount = 20
	// defaultHistoryLimit is the channel history page size when the caller
	// does not specify one.
	defaultHistoryLimit = 10
)

// User-facing failure messages. These travel unchanged from here to the
// {success:false, error} envelope or the flash notice.
const (
	msgEmptyToken    = "Please provide a valid Slack token."
	msgInvalidToken  = "Invalid token"
	msgMissingFields = "Please fill in all required fields."
	msgMissingParams = "Missing parameters"
)

// placeholderSender is stored when the remote response does not identify
// the posting user.
const placeholderSender = "bot"

// DashboardData is everything the dashboard page needs.
type DashboardData struct {
	Credentials    []model.Credential
	RecentMessages []model.SentMessage
}

// ConsoleService implements the console's user-facing operations: register
// credentials, browse channels, post messages and replies, and read the
// locally persisted history. Each operation resolves a stored credential,
// builds a Slack client bound to its token, performs a single remote call,
// and persists the outcome where one exists.
type ConsoleService struct {
	creds   driven.CredentialStore
	msgs    driven.MessageStore
	factory driven.ClientFactory
	logger  *slog.Logger
}

// NewConsoleService creates a ConsoleService with all required dependencies.
func NewConsoleService(
	creds driven.CredentialStore,
	msgs driven.MessageStore,
	factory driven.ClientFactory,
	logger *slog.Logger,
) *ConsoleService {
	return &ConsoleService{
		creds:   creds,
		msgs:    msgs,
		factory: factory,
		logger:  logger,
	}
}

// Dashboard returns the active credentials and the most recent sent
// messages, newest first. No remote call is made.
func (s *ConsoleService) Dashboard(ctx context.Context) (*DashboardData, error) {
	creds, err := s.creds.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list credentials: %w", err)
	}

	msgs, err := s.msgs.ListRecent(ctx, recentMessageCount)
	if err != nil {
		return nil, fmt.Errorf("list recent messages: %w", err)
	}

	return &DashboardData{Credentials: creds, RecentMessages: msgs}, nil
}

// AddCredential verifies the token against auth.test and persists it with
// the team and user labels from the identity payload. Nothing is persisted
// when the token is empty or authentication fails. An omitted name defaults
// to "Token N" where N counts all credentials ever stored plus one.
func (s *ConsoleService) AddCredential(ctx context.Context, name, token string) (model.Credential, error) {
	token = strings.TrimSpace(token)
	name = strings.TrimSpace(name)

	if token == "" {
		return model.Credential{}, model.NewOpError(model.ErrKindValidation, msgEmptyToken)
	}

	if name == "" {
		count, err := s.creds.Count(ctx)
		if err != nil {
			return model.Credential{}, fmt.Errorf("count credentials: %w", err)
		}
		name = fmt.Sprintf("Token %d", count+1)
	}

	identity, err := s.factory(token).Authenticate(ctx)
	if err != nil {
		return model.Credential{}, err
	}

	cred, err := s.creds.Create(ctx, model.Credential{
		Name:     name,
		Token:    token,
		TeamName: identity.Team,
		UserName: identity.User,
	})
	if err != nil {
		return model.Credential{}, fmt.Errorf("store credential: %w", err)
	}

	s.logger.Info("credential added",
		"id", cred.ID,
		"name", cred.Name,
		"team", cred.TeamName,
	)
	return cred, nil
}

// ListChannels returns the merged channel listing for the given stored
// credential. The credential's last-used timestamp is stamped before the
// remote call; an unknown or inactive id produces no remote call at all.
func (s *ConsoleService) ListChannels(ctx context.Context, credentialID int64) ([]model.Channel, error) {
	cred, err := s.resolveCredential(ctx, credentialID)
	if err != nil {
		return nil, err
	}

	return s.factory(cred.Token).ListChannels(ctx)
}

// PostMessage posts a new top-level message and persists it with the
// remote-assigned timestamp. An unselected credential (id zero) is a
// validation failure like a missing field. Nothing is persisted when the
// remote call fails. An empty channel name falls back to "Channel <id>".
func (s *ConsoleService) PostMessage(ctx context.Context, credentialID int64, channelID, channelName, text string) (model.SentMessage, error) {
	text = strings.TrimSpace(text)
	if credentialID == 0 || channelID == "" || text == "" {
		return model.SentMessage{}, model.NewOpError(model.ErrKindValidation, msgMissingFields)
	}

	cred, err := s.resolveCredential(ctx, credentialID)
	if err != nil {
		return model.SentMessage{}, err
	}

	posted, err := s.factory(cred.Token).PostMessage(ctx, channelID, text)
	if err != nil {
		return model.SentMessage{}, err
	}

	return s.storeSentMessage(ctx, channelID, channelName, text, posted, nil)
}

// PostReply posts a threaded reply and persists it with the parent's
// timestamp as the thread link. The reply's own remote timestamp is
// distinct from the parent's.
func (s *ConsoleService) PostReply(ctx context.Context, credentialID int64, channelID, channelName, threadTS, text string) (model.SentMessage, error) {
	text = strings.TrimSpace(text)
	if credentialID == 0 || channelID == "" || threadTS == "" || text == "" {
		return model.SentMessage{}, model.NewOpError(model.ErrKindValidation, msgMissingFields)
	}

	cred, err := s.resolveCredential(ctx, credentialID)
	if err != nil {
		return model.SentMessage{}, err
	}

	posted, err := s.factory(cred.Token).PostReply(ctx, channelID, threadTS, text)
	if err != nil {
		return model.SentMessage{}, err
	}

	return s.storeSentMessage(ctx, channelID, channelName, text, posted, &threadTS)
}

// ListMessages returns recent channel history for the given credential.
// limit values of zero or less fall back to the default page size.
func (s *ConsoleService) ListMessages(ctx context.Context, credentialID int64, channelID string, limit int) ([]model.HistoryEntry, error) {
	if credentialID == 0 || channelID == "" {
		return nil, model.NewOpError(model.ErrKindValidation, msgMissingParams)
	}

	cred, err := s.resolveCredential(ctx, credentialID)
	if err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	return s.factory(cred.Token).GetChannelHistory(ctx, channelID, limit)
}

// SentMessages returns the locally persisted messages previously posted to
// one channel, newest first. No remote call is made. limit values of zero
// or less fall back to the dashboard's recent-message count.
func (s *ConsoleService) SentMessages(ctx context.Context, channelID string, limit int) ([]model.SentMessage, error) {
	if channelID == "" {
		return nil, model.NewOpError(model.ErrKindValidation, msgMissingParams)
	}

	if limit <= 0 {
		limit = recentMessageCount
	}

	msgs, err := s.msgs.ListByChannel(ctx, channelID, limit)
	if err != nil {
		return nil, fmt.Errorf("list sent messages for %s: %w", channelID, err)
	}
	return msgs, nil
}

// Replies returns the stored replies of the sent message with the given
// remote timestamp.
func (s *ConsoleService) Replies(ctx context.Context, messageTS string) ([]model.SentMessage, error) {
	if messageTS == "" {
		return nil, model.NewOpError(model.ErrKindValidation, msgMissingParams)
	}

	parent, err := s.msgs.GetByTimestamp(ctx, messageTS)
	if err != nil {
		return nil, fmt.Errorf("lookup message %s: %w", messageTS, err)
	}
	if parent == nil {
		return nil, model.NewOpError(model.ErrKindLookup, "Message not found")
	}

	replies, err := s.msgs.ListReplies(ctx, *parent)
	if err != nil {
		return nil, fmt.Errorf("list replies of %s: %w", messageTS, err)
	}
	return replies, nil
}

// DeactivateCredential soft-deactivates a stored credential. The row is
// kept; only the active flag is cleared.
func (s *ConsoleService) DeactivateCredential(ctx context.Context, credentialID int64) error {
	cred, err := s.resolveCredential(ctx, credentialID)
	if err != nil {
		return err
	}

	if err := s.creds.Deactivate(ctx, cred.ID); err != nil {
		return fmt.Errorf("deactivate credential %d: %w", cred.ID, err)
	}

	s.logger.Info("credential deactivated", "id", cred.ID, "name", cred.Name)
	return nil
}

// resolveCredential loads an active credential and stamps its last-used
// timestamp. A failed stamp is logged and ignored: the timestamp is
// informational and concurrent writers race benignly.
func (s *ConsoleService) resolveCredential(ctx context.Context, credentialID int64) (*model.Credential, error) {
	cred, err := s.creds.GetActive(ctx, credentialID)
	if err != nil {
		return nil, fmt.Errorf("lookup credential %d: %w", credentialID, err)
	}
	if cred == nil {
		return nil, model.NewOpError(model.ErrKindLookup, msgInvalidToken)
	}

	if err := s.creds.TouchLastUsed(ctx, cred.ID, time.Now().UTC()); err != nil {
		s.logger.Warn("failed to stamp credential last-used",
			"id", cred.ID,
			"error", err,
		)
	}

	return cred, nil
}

// storeSentMessage persists the outcome of a successful post.
func (s *ConsoleService) storeSentMessage(ctx context.Context, channelID, channelName, text string, posted *model.PostedMessage, threadTS *string) (model.SentMessage, error) {
	if channelName == "" {
		channelName = "Channel " + channelID
	}

	sender := posted.SenderID
	if sender == "" {
		sender = placeholderSender
	}

	msg, err := s.msgs.Insert(ctx, model.SentMessage{
		ChannelID:   channelID,
		ChannelName: channelName,
		MessageTS:   posted.Timestamp,
		Text:        text,
		ThreadTS:    threadTS,
		UserID:      sender,
	})
	if err != nil {
		return model.SentMessage{}, fmt.Errorf("store sent message: %w", err)
	}

	s.logger.Info("message stored",
		"channel_id", msg.ChannelID,
		"message_ts", msg.MessageTS,
		"is_reply", msg.IsThreadReply(),
	)
	return msg, nil
}
