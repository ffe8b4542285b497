// Package web implements the HTML GUI driving adapter using templ components.
package web

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/slackdeck/slackdeck/internal/adapter/driving/web/templates"
	"github.com/slackdeck/slackdeck/internal/adapter/driving/web/templates/pages"
	vm "github.com/slackdeck/slackdeck/internal/adapter/driving/web/viewmodel"
	"github.com/slackdeck/slackdeck/internal/application"
	"github.com/slackdeck/slackdeck/internal/domain/model"
)

// Handler is the web GUI driving adapter. Form-submitting actions always
// redirect back to the dashboard and report their outcome through a flash
// notice; only the dashboard itself renders HTML.
type Handler struct {
	console *application.ConsoleService
	logger  *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(console *application.ConsoleService, logger *slog.Logger) *Handler {
	return &Handler{console: console, logger: logger}
}

// Dashboard renders the main dashboard page with the full HTML layout.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	data, err := h.console.Dashboard(r.Context())
	if err != nil {
		h.logger.Error("failed to load dashboard data", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	var flash *vm.FlashViewModel
	if level, message, ok := popFlash(w, r); ok {
		flash = &vm.FlashViewModel{Level: level, Message: message}
	}

	component := pages.Dashboard(toDashboardViewModel(data, flash))
	layout := templates.Layout("SlackDeck", component)

	if err := layout.Render(r.Context(), w); err != nil {
		h.logger.Error("failed to render dashboard", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

// AddCredential registers a new token from the dashboard form.
func (h *Handler) AddCredential(w http.ResponseWriter, r *http.Request) {
	cred, err := h.console.AddCredential(r.Context(), r.FormValue("name"), r.FormValue("token"))
	if err != nil {
		h.redirectWithRemoteError(w, r, err, "Invalid token: %s")
		return
	}

	h.redirectWithSuccess(w, r, fmt.Sprintf("Token added successfully for team: %s", cred.TeamName))
}

// DeactivateCredential soft-removes a token from the dashboard.
func (h *Handler) DeactivateCredential(w http.ResponseWriter, r *http.Request) {
	credentialID, _ := strconv.ParseInt(r.FormValue("token_id"), 10, 64)

	if err := h.console.DeactivateCredential(r.Context(), credentialID); err != nil {
		h.redirectWithError(w, r, err)
		return
	}

	h.redirectWithSuccess(w, r, "Token removed")
}

// PostMessage sends a new top-level message through the selected token.
func (h *Handler) PostMessage(w http.ResponseWriter, r *http.Request) {
	credentialID, _ := strconv.ParseInt(r.FormValue("token_id"), 10, 64)

	_, err := h.console.PostMessage(r.Context(),
		credentialID,
		r.FormValue("channel_id"),
		r.FormValue("channel_name"),
		r.FormValue("message"),
	)
	if err != nil {
		h.redirectWithRemoteError(w, r, err, "Failed to post message: %s")
		return
	}

	h.redirectWithSuccess(w, r, "Message posted successfully!")
}

// PostReply sends a threaded reply through the selected token.
func (h *Handler) PostReply(w http.ResponseWriter, r *http.Request) {
	credentialID, _ := strconv.ParseInt(r.FormValue("token_id"), 10, 64)

	_, err := h.console.PostReply(r.Context(),
		credentialID,
		r.FormValue("channel_id"),
		r.FormValue("channel_name"),
		r.FormValue("thread_ts"),
		r.FormValue("message"),
	)
	if err != nil {
		h.redirectWithRemoteError(w, r, err, "Failed to post message: %s")
		return
	}

	h.redirectWithSuccess(w, r, "Reply posted successfully!")
}

// redirectWithSuccess sets a success flash and returns to the dashboard.
func (h *Handler) redirectWithSuccess(w http.ResponseWriter, r *http.Request, message string) {
	setFlash(w, flashLevelSuccess, message)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// redirectWithRemoteError is redirectWithError with a prefix applied to
// failures that came back from Slack. Validation and lookup notices are
// flashed as-is; they already read as complete sentences.
func (h *Handler) redirectWithRemoteError(w http.ResponseWriter, r *http.Request, err error, format string) {
	var opErr *model.OpError
	if errors.As(err, &opErr) && (opErr.Kind == model.ErrKindRemoteRejected || opErr.Kind == model.ErrKindUnexpected) {
		setFlash(w, flashLevelError, fmt.Sprintf(format, opErr.Message))
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	h.redirectWithError(w, r, err)
}

// redirectWithError converts a service failure into an error flash and
// returns to the dashboard. Tagged operation failures carry their
// user-facing message; anything else is logged and shown generically.
func (h *Handler) redirectWithError(w http.ResponseWriter, r *http.Request, err error) {
	var opErr *model.OpError
	if errors.As(err, &opErr) {
		setFlash(w, flashLevelError, opErr.Message)
	} else {
		h.logger.Error("dashboard action failed", "error", err)
		setFlash(w, flashLevelError, "Something went wrong. Please try again.")
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}
