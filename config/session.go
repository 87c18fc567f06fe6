package config

import (
	"net/http"

	"github.com/gorilla/sessions"
)

// NewSessionStore returns the cookie store that carries OAuth state between
// the login redirect and the callback.
func NewSessionStore(cfg Config) *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   600,
		HttpOnly: true,
		Secure:   !cfg.IsDevelopment(),
		SameSite: http.SameSiteLaxMode,
	}
	return store
}
