package web

import (
	"net/http"
	"net/url"
	"strings"
)

const (
	flashCookieName = "flash"
	flashMaxAge     = 60

	flashLevelSuccess = "success"
	flashLevelError   = "error"
)

// setFlash stores a one-shot notice shown on the next dashboard render. The
// value is a "level|message" pair, query-escaped to survive cookie encoding.
func setFlash(w http.ResponseWriter, level, message string) {
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    url.QueryEscape(level + "|" + message),
		Path:     "/",
		MaxAge:   flashMaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

// popFlash reads the flash cookie and clears it so the notice renders once.
func popFlash(w http.ResponseWriter, r *http.Request) (level, message string, ok bool) {
	cookie, err := r.Cookie(flashCookieName)
	if err != nil || cookie.Value == "" {
		return "", "", false
	}

	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})

	decoded, err := url.QueryUnescape(cookie.Value)
	if err != nil {
		return "", "", false
	}

	level, message, found := strings.Cut(decoded, "|")
	if !found {
		return flashLevelSuccess, decoded, true
	}
	return level, message, true
}
