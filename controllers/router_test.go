package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"fintrek-backend/catalog"
	"fintrek-backend/controllers/analytics"
	"fintrek-backend/controllers/assistant"
	"fintrek-backend/controllers/authentication"
	"fintrek-backend/controllers/community"
	"fintrek-backend/controllers/gamification"
	"fintrek-backend/controllers/learning"
	"fintrek-backend/controllers/notifications"
	"fintrek-backend/controllers/profile"
	"fintrek-backend/controllers/quizzes"
	"fintrek-backend/controllers/respond"
	"fintrek-backend/controllers/transactions"
	"fintrek-backend/models/dbtest"
	"fintrek-backend/services"
)

func newServer(t *testing.T) http.Handler {
	t.Helper()
	db := dbtest.Open(t)
	content := catalog.NewDatabase(db)
	notifier := &services.Notifier{DB: db}
	game := &services.Gamification{DB: db, Catalog: content, Notifier: notifier}
	tokens := authentication.NewTokenIssuer("secret", time.Hour, time.Hour)
	s := &Server{
		Version:        "test",
		AllowedOrigins: []string{"https://app.example"},
		Guard:          &authentication.Guard{Tokens: tokens, DB: db},
		Auth:           &authentication.Handler{DB: db, Tokens: tokens, Provisioner: game},
		Profile:        &profile.Handler{DB: db, Catalog: content, Gamification: game},
		Transactions:   &transactions.Handler{DB: db},
		Analytics:      &analytics.Handler{DB: db},
		Learning:       &learning.Handler{DB: db, Catalog: content, Gamification: game},
		Quizzes:        &quizzes.Handler{DB: db, Catalog: content, Gamification: game},
		Gamification:   &gamification.Handler{DB: db, Gamification: game},
		Community:      &community.Handler{DB: db, Notifier: notifier},
		Notifications:  &notifications.Handler{DB: db},
		Assistant:      &assistant.Handler{},
	}
	return s.Routes()
}

func TestHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	newServer(t).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]string
	json.NewDecoder(rec.Body).Decode(&body)
	if body["status"] != "healthy" || body["version"] != "test" {
		t.Fatalf("body = %v", body)
	}
}

func TestUnknownRouteIsJSON404(t *testing.T) {
	srv := newServer(t)
	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/nope"},
		{http.MethodPatch, "/transactions"},
	} {
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(tc.method, tc.path, nil))
		if rec.Code != http.StatusNotFound {
			t.Fatalf("%s %s: status = %d", tc.method, tc.path, rec.Code)
		}
		var body respond.ErrorBody
		if err := json.NewDecoder(rec.Body).Decode(&body); err != nil || body.Error != "Endpoint not found" {
			t.Fatalf("%s %s: body = %+v, err = %v", tc.method, tc.path, body, err)
		}
	}
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	srv := newServer(t)
	for _, path := range []string{"/profile", "/transactions", "/points", "/notifications", "/analytics/summary"} {
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("GET %s: status = %d, want 401", path, rec.Code)
		}
	}
}

func TestSignupThenUseToken(t *testing.T) {
	srv := newServer(t)
	body, _ := json.Marshal(map[string]string{"email": "ada@example.com", "password": "password1", "firstName": "Ada", "lastName": "L"})
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/signup", bytes.NewReader(body)))
	if rec.Code != http.StatusCreated {
		t.Fatalf("signup status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var signup struct {
		Tokens authentication.TokenPair `json:"tokens"`
	}
	json.NewDecoder(rec.Body).Decode(&signup)

	req := httptest.NewRequest(http.MethodGet, "/points", nil)
	req.Header.Set("Authorization", "Bearer "+signup.Tokens.AccessToken)
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("points status = %d, body = %s", rec.Code, rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer "+signup.Tokens.AccessToken)
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Logged out successfully") {
		t.Fatalf("logout status = %d, body = %s", rec.Code, rec.Body.String())
	}
}

func TestCORSPreflight(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/transactions", nil)
	req.Header.Set("Origin", "https://app.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	newServer(t).ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example" {
		t.Fatalf("Allow-Origin = %q", got)
	}
}

func TestRecoverPanics(t *testing.T) {
	h := recoverPanics(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	var body respond.ErrorBody
	json.NewDecoder(rec.Body).Decode(&body)
	if body.Error != "Internal server error" {
		t.Fatalf("body = %+v", body)
	}
}
