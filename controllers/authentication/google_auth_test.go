package authentication

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gorilla/sessions"
	"golang.org/x/oauth2"

	"fintrek-backend/models"
)

func fakeGoogle(t *testing.T, profile googleUserInfo) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "google-token",
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	})
	mux.HandleFunc("GET /userinfo", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer google-token" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(profile)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func withGoogle(h *Handler, srv *httptest.Server) {
	h.Google = &oauth2.Config{
		ClientID:     "client",
		ClientSecret: "secret",
		RedirectURL:  "http://localhost/auth/google/callback",
		Endpoint:     oauth2.Endpoint{AuthURL: srv.URL + "/auth", TokenURL: srv.URL + "/token"},
	}
	h.Sessions = sessions.NewCookieStore([]byte("session-key"))
	h.UserInfoURL = srv.URL + "/userinfo"
}

// googleRoundTrip runs the redirect and the callback, returning the callback response.
func googleRoundTrip(t *testing.T, h *Handler) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.HandleGoogleLogin(rec, httptest.NewRequest(http.MethodGet, "/auth/google/login", nil))
	if rec.Code != http.StatusTemporaryRedirect {
		t.Fatalf("login status = %d", rec.Code)
	}
	loc, err := url.Parse(rec.Header().Get("Location"))
	if err != nil {
		t.Fatalf("parse redirect: %v", err)
	}
	state := loc.Query().Get("state")
	if state == "" {
		t.Fatal("redirect carries no state")
	}

	req := httptest.NewRequest(http.MethodGet, "/auth/google/callback?code=abc&state="+url.QueryEscape(state), nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	out := httptest.NewRecorder()
	h.HandleGoogleCallback(out, req)
	return out
}

func TestGoogleCallbackCreatesThenLogsIn(t *testing.T) {
	h, _, prov := newHandler(t)
	withGoogle(h, fakeGoogle(t, googleUserInfo{ID: "g-1", Email: "Grace@Example.com", GivenName: "Grace", FamilyName: "Hopper"}))

	rec := googleRoundTrip(t, h)
	if rec.Code != http.StatusCreated {
		t.Fatalf("first callback status = %d, body = %s", rec.Code, rec.Body.String())
	}
	first := decode[authResponse](t, rec)
	if first.User.Email != "grace@example.com" || first.User.FirstName != "Grace" {
		t.Fatalf("user = %+v", first.User)
	}
	if len(prov.users) != 1 {
		t.Fatalf("provisioned %d users, want 1", len(prov.users))
	}

	rec = googleRoundTrip(t, h)
	if rec.Code != http.StatusOK {
		t.Fatalf("second callback status = %d", rec.Code)
	}
	second := decode[authResponse](t, rec)
	if second.User.UID != first.User.UID {
		t.Fatalf("second login created a new user: %q != %q", second.User.UID, first.User.UID)
	}
	if len(prov.users) != 1 {
		t.Fatalf("provisioned %d users, want 1", len(prov.users))
	}
}

func TestGoogleCallbackLinksExistingEmail(t *testing.T) {
	h, db, _ := newHandler(t)
	local := signup(t, h, "grace@example.com", "password1")
	withGoogle(h, fakeGoogle(t, googleUserInfo{ID: "g-2", Email: "grace@example.com", Picture: "https://img.example/p.png"}))

	rec := googleRoundTrip(t, h)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if got := decode[authResponse](t, rec); got.User.UID != local.User.UID {
		t.Fatalf("uid = %q, want %q", got.User.UID, local.User.UID)
	}
	var user models.User
	if err := db.First(&user, "id = ?", local.User.UID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if user.GoogleID == nil || *user.GoogleID != "g-2" || user.AvatarURL != "https://img.example/p.png" {
		t.Fatalf("user not linked: %+v", user)
	}
}

func TestGoogleCallbackRejectsBadState(t *testing.T) {
	h, _, _ := newHandler(t)
	withGoogle(h, fakeGoogle(t, googleUserInfo{ID: "g-1", Email: "a@example.com"}))

	rec := httptest.NewRecorder()
	h.HandleGoogleCallback(rec, httptest.NewRequest(http.MethodGet, "/auth/google/callback?code=abc&state=forged", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestGoogleDisabled(t *testing.T) {
	h, _, _ := newHandler(t)
	rec := httptest.NewRecorder()
	h.HandleGoogleLogin(rec, httptest.NewRequest(http.MethodGet, "/auth/google/login", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
}
