package httphandler_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httphandler "github.com/slackdeck/slackdeck/internal/adapter/driving/http"
	"github.com/slackdeck/slackdeck/internal/application"
	"github.com/slackdeck/slackdeck/internal/domain/model"
	"github.com/slackdeck/slackdeck/internal/domain/port/driven"
)

// --- Mock implementations ---

type mockCredentialStore struct {
	cred *model.Credential
	err  error
}

func (m *mockCredentialStore) Create(_ context.Context, cred model.Credential) (model.Credential, error) {
	return cred, nil
}

func (m *mockCredentialStore) GetActive(_ context.Context, _ int64) (*model.Credential, error) {
	return m.cred, m.err
}

func (m *mockCredentialStore) ListActive(_ context.Context) ([]model.Credential, error) {
	return nil, nil
}

func (m *mockCredentialStore) Count(_ context.Context) (int, error) { return 0, nil }

func (m *mockCredentialStore) TouchLastUsed(_ context.Context, _ int64, _ time.Time) error {
	return nil
}

func (m *mockCredentialStore) Deactivate(_ context.Context, _ int64) error { return nil }

type mockMessageStore struct {
	parent    *model.SentMessage
	replies   []model.SentMessage
	byChannel []model.SentMessage
	gotLimit  int
	err       error
}

func (m *mockMessageStore) Insert(_ context.Context, msg model.SentMessage) (model.SentMessage, error) {
	return msg, nil
}

func (m *mockMessageStore) ListRecent(_ context.Context, _ int) ([]model.SentMessage, error) {
	return nil, nil
}

func (m *mockMessageStore) ListByChannel(_ context.Context, _ string, limit int) ([]model.SentMessage, error) {
	m.gotLimit = limit
	return m.byChannel, m.err
}

func (m *mockMessageStore) GetByTimestamp(_ context.Context, _ string) (*model.SentMessage, error) {
	return m.parent, m.err
}

func (m *mockMessageStore) ListReplies(_ context.Context, _ model.SentMessage) ([]model.SentMessage, error) {
	return m.replies, nil
}

type mockSlackClient struct {
	channels    []model.Channel
	channelsErr error
	history     []model.HistoryEntry
	historyErr  error
}

func (m *mockSlackClient) Authenticate(_ context.Context) (*model.Identity, error) {
	return &model.Identity{}, nil
}

func (m *mockSlackClient) ListChannels(_ context.Context) ([]model.Channel, error) {
	return m.channels, m.channelsErr
}

func (m *mockSlackClient) PostMessage(_ context.Context, _, _ string) (*model.PostedMessage, error) {
	return nil, errors.New("not implemented")
}

func (m *mockSlackClient) PostReply(_ context.Context, _, _, _ string) (*model.PostedMessage, error) {
	return nil, errors.New("not implemented")
}

func (m *mockSlackClient) GetChannelHistory(_ context.Context, _ string, _ int) ([]model.HistoryEntry, error) {
	return m.history, m.historyErr
}

// --- Test helpers ---

func setupMux(creds driven.CredentialStore, msgs driven.MessageStore, client driven.SlackClient) http.Handler {
	factory := func(string) driven.SlackClient { return client }
	console := application.NewConsoleService(creds, msgs, factory, slog.Default())

	h := httphandler.NewHandler(console, slog.Default())
	mux := http.NewServeMux()
	httphandler.RegisterAPIRoutes(mux, h)
	return httphandler.ApplyMiddleware(mux, slog.Default())
}

func activeCredential() *model.Credential {
	return &model.Credential{ID: 1, Name: "Token 1", Token: "xoxb-stored", IsActive: true}
}

func doGet(t *testing.T, mux http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

// --- Tests ---

func TestListChannels_Success(t *testing.T) {
	client := &mockSlackClient{channels: []model.Channel{
		{ID: "C1", Name: "#general", Kind: model.ChannelPublic, IsMember: true},
		{ID: "D1", Name: "@Jane Doe", Kind: model.ChannelIM, IsMember: true},
	}}
	mux := setupMux(&mockCredentialStore{cred: activeCredential()}, &mockMessageStore{}, client)

	rec := doGet(t, mux, "/channels?token_id=1")

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])

	channels, ok := body["channels"].([]any)
	require.True(t, ok)
	require.Len(t, channels, 2)

	first := channels[0].(map[string]any)
	assert.Equal(t, "C1", first["id"])
	assert.Equal(t, "#general", first["name"])
	assert.Equal(t, "public_channel", first["type"])
	assert.Equal(t, true, first["is_member"])

	second := channels[1].(map[string]any)
	assert.Equal(t, "im", second["type"])
}

func TestListChannels_MissingTokenID(t *testing.T) {
	mux := setupMux(&mockCredentialStore{}, &mockMessageStore{}, &mockSlackClient{})

	rec := doGet(t, mux, "/channels")

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "No token selected", body["error"])
}

func TestListChannels_UnknownCredentialKeepsHTTP200(t *testing.T) {
	mux := setupMux(&mockCredentialStore{cred: nil}, &mockMessageStore{}, &mockSlackClient{})

	rec := doGet(t, mux, "/channels?token_id=42")

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Invalid token", body["error"])
}

func TestListChannels_StoreFailureIsGeneric500(t *testing.T) {
	mux := setupMux(&mockCredentialStore{err: errors.New("disk gone")}, &mockMessageStore{}, &mockSlackClient{})

	rec := doGet(t, mux, "/channels?token_id=1")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "internal server error", body["error"])
	assert.NotContains(t, rec.Body.String(), "disk gone")
}

func TestListMessages_Success(t *testing.T) {
	threadTS := "1234567890.123456"
	client := &mockSlackClient{history: []model.HistoryEntry{
		{Timestamp: "1234567891.000001", Text: "hello", SenderID: "U1", ThreadTS: &threadTS, ReplyCount: 2},
		{Timestamp: "1234567890.000001", Text: "earlier", SenderID: "U2"},
	}}
	mux := setupMux(&mockCredentialStore{cred: activeCredential()}, &mockMessageStore{}, client)

	rec := doGet(t, mux, "/messages?token_id=1&channel_id=C1&limit=5")

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])

	messages, ok := body["messages"].([]any)
	require.True(t, ok)
	require.Len(t, messages, 2)

	first := messages[0].(map[string]any)
	assert.Equal(t, "1234567891.000001", first["ts"])
	assert.Equal(t, "hello", first["text"])
	assert.Equal(t, "U1", first["user"])
	assert.Equal(t, threadTS, first["thread_ts"])
	assert.Equal(t, float64(2), first["reply_count"])

	// thread_ts is omitted for top-level entries.
	second := messages[1].(map[string]any)
	_, present := second["thread_ts"]
	assert.False(t, present)
}

func TestListMessages_MissingChannelID(t *testing.T) {
	mux := setupMux(&mockCredentialStore{cred: activeCredential()}, &mockMessageStore{}, &mockSlackClient{})

	rec := doGet(t, mux, "/messages?token_id=1")

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Missing parameters", body["error"])
}

func TestListMessages_MissingTokenID(t *testing.T) {
	mux := setupMux(&mockCredentialStore{}, &mockMessageStore{}, &mockSlackClient{})

	rec := doGet(t, mux, "/messages?channel_id=C1")

	body := decodeBody(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "No token selected", body["error"])
}

func TestListSentMessages_Success(t *testing.T) {
	threadTS := "1000.0001"
	msgs := &mockMessageStore{byChannel: []model.SentMessage{
		{
			ID: 2, MessageTS: "1000.0002", ChannelID: "C1", ChannelName: "#general",
			Text: "a reply", UserID: "U2", ThreadTS: &threadTS,
			CreatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		},
		{
			ID: 1, MessageTS: threadTS, ChannelID: "C1", ChannelName: "#general",
			Text: "hello", UserID: "U1",
			CreatedAt: time.Date(2026, 3, 1, 11, 0, 0, 0, time.UTC),
		},
	}}
	mux := setupMux(&mockCredentialStore{}, msgs, &mockSlackClient{})

	rec := doGet(t, mux, "/sent-messages?channel_id=C1&limit=5")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 5, msgs.gotLimit)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])

	messages, ok := body["messages"].([]any)
	require.True(t, ok)
	require.Len(t, messages, 2)

	first := messages[0].(map[string]any)
	assert.Equal(t, "1000.0002", first["ts"])
	assert.Equal(t, "C1", first["channel_id"])
	assert.Equal(t, threadTS, first["thread_ts"])
	assert.Equal(t, "2026-03-01T12:00:00Z", first["sent_at"])

	second := messages[1].(map[string]any)
	assert.Equal(t, "hello", second["text"])
	_, present := second["thread_ts"]
	assert.False(t, present)
}

func TestListSentMessages_MissingChannelID(t *testing.T) {
	mux := setupMux(&mockCredentialStore{}, &mockMessageStore{}, &mockSlackClient{})

	rec := doGet(t, mux, "/sent-messages")

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Missing parameters", body["error"])
}

func TestListReplies_Success(t *testing.T) {
	threadTS := "1000.0001"
	msgs := &mockMessageStore{
		parent: &model.SentMessage{ID: 1, MessageTS: threadTS, ChannelID: "C1", ChannelName: "#general"},
		replies: []model.SentMessage{
			{
				ID: 2, MessageTS: "1000.0002", ChannelID: "C1", ChannelName: "#general",
				Text: "a reply", UserID: "U2", ThreadTS: &threadTS,
				CreatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
			},
		},
	}
	mux := setupMux(&mockCredentialStore{}, msgs, &mockSlackClient{})

	rec := doGet(t, mux, "/replies?ts=1000.0001")

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])

	replies, ok := body["replies"].([]any)
	require.True(t, ok)
	require.Len(t, replies, 1)

	first := replies[0].(map[string]any)
	assert.Equal(t, "1000.0002", first["ts"])
	assert.Equal(t, "a reply", first["text"])
	assert.Equal(t, threadTS, first["thread_ts"])
	assert.Equal(t, "2026-03-01T12:00:00Z", first["sent_at"])
}

func TestListReplies_UnknownMessage(t *testing.T) {
	mux := setupMux(&mockCredentialStore{}, &mockMessageStore{}, &mockSlackClient{})

	rec := doGet(t, mux, "/replies?ts=0.0")

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Message not found", body["error"])
}

func TestHealth(t *testing.T) {
	mux := setupMux(&mockCredentialStore{}, &mockMessageStore{}, &mockSlackClient{})

	rec := doGet(t, mux, "/api/v1/health")

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "ok", body["status"])
	assert.NotEmpty(t, body["time"])
}
