// Package httphandler implements the JSON API driving adapter.
package httphandler

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/slackdeck/slackdeck/internal/application"
)

// msgNoTokenSelected is returned when a request omits the token_id parameter.
const msgNoTokenSelected = "No token selected"

// Handler is the HTTP driving adapter that serves the JSON API consumed by
// the dashboard's scripts. Every payload is wrapped in a success envelope;
// operation failures keep HTTP 200 and carry the failure message in the
// envelope so the frontend only has to inspect one shape.
type Handler struct {
	console *application.ConsoleService
	logger  *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(console *application.ConsoleService, logger *slog.Logger) *Handler {
	return &Handler{console: console, logger: logger}
}

// RegisterAPIRoutes registers the JSON API routes on the provided mux.
func RegisterAPIRoutes(mux *http.ServeMux, h *Handler) {
	mux.HandleFunc("GET /channels", h.ListChannels)
	mux.HandleFunc("GET /messages", h.ListMessages)
	mux.HandleFunc("GET /sent-messages", h.ListSentMessages)
	mux.HandleFunc("GET /replies", h.ListReplies)
	mux.HandleFunc("GET /api/v1/health", h.Health)
}

// ListChannels returns the merged channel listing for the credential named by
// the token_id query parameter.
func (h *Handler) ListChannels(w http.ResponseWriter, r *http.Request) {
	credentialID, ok := h.credentialID(w, r)
	if !ok {
		return
	}

	channels, err := h.console.ListChannels(r.Context(), credentialID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	resp := make([]ChannelResponse, 0, len(channels))
	for _, ch := range channels {
		resp = append(resp, toChannelResponse(ch))
	}

	writeJSON(w, http.StatusOK, ChannelListResponse{Success: true, Channels: resp})
}

// ListMessages returns recent remote history for a channel, fetched with the
// credential named by token_id. limit is optional and defaults server-side.
func (h *Handler) ListMessages(w http.ResponseWriter, r *http.Request) {
	credentialID, ok := h.credentialID(w, r)
	if !ok {
		return
	}

	channelID := r.URL.Query().Get("channel_id")
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	entries, err := h.console.ListMessages(r.Context(), credentialID, channelID, limit)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	resp := make([]HistoryMessageResponse, 0, len(entries))
	for _, entry := range entries {
		resp = append(resp, toHistoryMessageResponse(entry))
	}

	writeJSON(w, http.StatusOK, HistoryListResponse{Success: true, Messages: resp})
}

// ListSentMessages returns the locally stored messages previously posted to
// the channel named by channel_id, newest first. Unlike ListMessages this
// reads the local history only; no credential and no remote call is involved.
func (h *Handler) ListSentMessages(w http.ResponseWriter, r *http.Request) {
	channelID := r.URL.Query().Get("channel_id")
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	msgs, err := h.console.SentMessages(r.Context(), channelID, limit)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	resp := make([]StoredMessageResponse, 0, len(msgs))
	for _, msg := range msgs {
		resp = append(resp, toStoredMessageResponse(msg))
	}

	writeJSON(w, http.StatusOK, SentMessageListResponse{Success: true, Messages: resp})
}

// ListReplies returns the locally stored replies of the sent message with the
// remote timestamp given in the ts query parameter.
func (h *Handler) ListReplies(w http.ResponseWriter, r *http.Request) {
	replies, err := h.console.Replies(r.Context(), r.URL.Query().Get("ts"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	resp := make([]StoredMessageResponse, 0, len(replies))
	for _, reply := range replies {
		resp = append(resp, toStoredMessageResponse(reply))
	}

	writeJSON(w, http.StatusOK, ReplyListResponse{Success: true, Replies: resp})
}

// Health returns a simple health check response.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}

// credentialID extracts the token_id query parameter. A missing or malformed
// value writes the failure envelope and reports false.
func (h *Handler) credentialID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := r.URL.Query().Get("token_id")
	if raw == "" {
		writeFailure(w, http.StatusOK, msgNoTokenSelected)
		return 0, false
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		writeFailure(w, http.StatusOK, msgNoTokenSelected)
		return 0, false
	}

	return id, true
}
