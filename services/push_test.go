package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/SherClockHolmes/webpush-go"

	"fintrek-backend/models"
)

func TestWebPushStatusHandling(t *testing.T) {
	priv, pub, err := webpush.GenerateVAPIDKeys()
	if err != nil {
		t.Fatalf("GenerateVAPIDKeys: %v", err)
	}
	// A browser-side key pair for the subscription itself.
	_, subKey, err := webpush.GenerateVAPIDKeys()
	if err != nil {
		t.Fatalf("GenerateVAPIDKeys: %v", err)
	}

	status := http.StatusCreated
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "" {
			t.Errorf("missing VAPID authorization header")
		}
		w.WriteHeader(status)
	}))
	defer srv.Close()

	p := &WebPush{PublicKey: pub, PrivateKey: priv, Subject: "mailto:ops@fintrek.app", HTTPClient: srv.Client()}
	sub := models.PushSubscription{Endpoint: srv.URL + "/push/1", P256dh: subKey, Auth: "c2VjcmV0LWF1dGgtMTIzNA"}

	gone, err := p.Push(context.Background(), sub, []byte(`{"title":"FinTrek"}`))
	if err != nil || gone {
		t.Fatalf("Push = (%v, %v), want delivered", gone, err)
	}

	status = http.StatusGone
	gone, err = p.Push(context.Background(), sub, []byte(`{"title":"FinTrek"}`))
	if err != nil || !gone {
		t.Fatalf("Push = (%v, %v), want gone", gone, err)
	}

	status = http.StatusInternalServerError
	if _, err := p.Push(context.Background(), sub, []byte(`{}`)); err == nil {
		t.Fatalf("expected error for 500 response")
	}
}
