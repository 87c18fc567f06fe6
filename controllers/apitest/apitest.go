// Package apitest drives controller handlers in tests.
package apitest

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"fintrek-backend/controllers/authentication"
)

// Route registers one handler on a fresh mux so path values resolve.
type Route struct {
	mux *http.ServeMux
}

func NewRoute(pattern string, h http.HandlerFunc) *Route {
	mux := http.NewServeMux()
	mux.HandleFunc(pattern, h)
	return &Route{mux: mux}
}

// Do sends the request as userID ("" for anonymous) and returns the recorder.
func (rt *Route) Do(t *testing.T, method, path string, body any, userID string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req = req.WithContext(authentication.WithIdentity(req.Context(), authentication.Identity{UserID: userID}))
	}
	rec := httptest.NewRecorder()
	rt.mux.ServeHTTP(rec, req)
	return rec
}

// Call runs a single handler without routing.
func Call(t *testing.T, h http.HandlerFunc, method, path string, body any, userID string) *httptest.ResponseRecorder {
	t.Helper()
	return NewRoute("/", h).Do(t, method, path, body, userID)
}

// Decode parses the JSON body into T, failing the test on error.
func Decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return out
}

// Status fails the test when the recorder status differs from want.
func Status(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status = %d, want %d; body = %s", rec.Code, want, rec.Body.String())
	}
}
