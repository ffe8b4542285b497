package httphandler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/slackdeck/slackdeck/internal/domain/model"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 failure envelope is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"success":false,"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeFailure writes the failure envelope with the given status and message.
func writeFailure(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, failureResponse{Success: false, Error: message})
}

// writeServiceError maps a service error onto the wire. Tagged operation
// failures keep HTTP 200 and travel in the envelope with their user-facing
// message; anything else is logged and hidden behind a generic 500.
func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	var opErr *model.OpError
	if errors.As(err, &opErr) {
		writeFailure(w, http.StatusOK, opErr.Message)
		return
	}

	h.logger.Error("request failed", "error", err)
	writeFailure(w, http.StatusInternalServerError, "internal server error")
}

// failureResponse is the envelope for every failed operation.
type failureResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// ChannelResponse is the JSON representation of a single conversation.
type ChannelResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	IsMember bool   `json:"is_member"`
}

// ChannelListResponse is the success envelope for the channel listing.
type ChannelListResponse struct {
	Success  bool              `json:"success"`
	Channels []ChannelResponse `json:"channels"`
}

// HistoryMessageResponse is the JSON representation of one remote history entry.
type HistoryMessageResponse struct {
	TS         string  `json:"ts"`
	Text       string  `json:"text"`
	User       string  `json:"user"`
	ThreadTS   *string `json:"thread_ts,omitempty"`
	ReplyCount int     `json:"reply_count"`
}

// HistoryListResponse is the success envelope for channel history.
type HistoryListResponse struct {
	Success  bool                     `json:"success"`
	Messages []HistoryMessageResponse `json:"messages"`
}

// StoredMessageResponse is the JSON representation of a locally stored
// sent message.
type StoredMessageResponse struct {
	TS          string  `json:"ts"`
	ChannelID   string  `json:"channel_id"`
	ChannelName string  `json:"channel_name"`
	Text        string  `json:"text"`
	User        string  `json:"user"`
	ThreadTS    *string `json:"thread_ts,omitempty"`
	SentAt      string  `json:"sent_at"`
}

// SentMessageListResponse is the success envelope for the locally stored
// messages of one channel.
type SentMessageListResponse struct {
	Success  bool                    `json:"success"`
	Messages []StoredMessageResponse `json:"messages"`
}

// ReplyListResponse is the success envelope for the stored replies of a thread.
type ReplyListResponse struct {
	Success bool                    `json:"success"`
	Replies []StoredMessageResponse `json:"replies"`
}

// HealthResponse is the JSON representation of the health check endpoint.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

// toChannelResponse converts a domain Channel to its JSON representation.
func toChannelResponse(ch model.Channel) ChannelResponse {
	return ChannelResponse{
		ID:       ch.ID,
		Name:     ch.Name,
		Type:     string(ch.Kind),
		IsMember: ch.IsMember,
	}
}

// toHistoryMessageResponse converts a domain HistoryEntry to its JSON representation.
func toHistoryMessageResponse(entry model.HistoryEntry) HistoryMessageResponse {
	return HistoryMessageResponse{
		TS:         entry.Timestamp,
		Text:       entry.Text,
		User:       entry.SenderID,
		ThreadTS:   entry.ThreadTS,
		ReplyCount: entry.ReplyCount,
	}
}

// toStoredMessageResponse converts a domain SentMessage to its JSON representation.
func toStoredMessageResponse(msg model.SentMessage) StoredMessageResponse {
	return StoredMessageResponse{
		TS:          msg.MessageTS,
		ChannelID:   msg.ChannelID,
		ChannelName: msg.ChannelName,
		Text:        msg.Text,
		User:        msg.UserID,
		ThreadTS:    msg.ThreadTS,
		SentAt:      msg.CreatedAt.UTC().Format(time.RFC3339),
	}
}
