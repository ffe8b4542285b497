package web

import (
	"io/fs"
	"net/http"
)

// RegisterRoutes registers all web GUI routes on the provided mux.
// The dashboard is served at /; form actions POST and redirect back to it.
// Static assets are served from the embedded filesystem at /static/*.
func RegisterRoutes(mux *http.ServeMux, h *Handler) {
	// Static assets (embedded via go:embed).
	staticFS, _ := fs.Sub(StaticFS, "static")
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(staticFS)))

	// Page routes.
	mux.HandleFunc("GET /{$}", h.Dashboard)

	// Form actions.
	mux.HandleFunc("POST /token", h.AddCredential)
	mux.HandleFunc("POST /token/deactivate", h.DeactivateCredential)
	mux.HandleFunc("POST /post-message", h.PostMessage)
	mux.HandleFunc("POST /post-reply", h.PostReply)
}
