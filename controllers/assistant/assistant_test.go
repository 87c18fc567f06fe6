package assistant

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"fintrek-backend/controllers/apitest"
	"fintrek-backend/services"
)

type fakeAsker struct {
	reply string
	err   error
	got   string
}

func (f *fakeAsker) Ask(ctx context.Context, message string) (string, error) {
	f.got = message
	return f.reply, f.err
}

func TestChat(t *testing.T) {
	tests := []struct {
		name    string
		asker   Asker
		message string
		want    int
	}{
		{"reply", &fakeAsker{reply: "Diversify."}, " What is diversification? ", http.StatusOK},
		{"empty message", &fakeAsker{}, "   ", http.StatusBadRequest},
		{"too long", &fakeAsker{}, strings.Repeat("a", maxMessageLength+1), http.StatusBadRequest},
		{"not configured", nil, "hi", http.StatusServiceUnavailable},
		{"disabled upstream", &fakeAsker{err: services.ErrAssistantDisabled}, "hi", http.StatusServiceUnavailable},
		{"upstream failure", &fakeAsker{err: errors.New("boom")}, "hi", http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &Handler{Assistant: tt.asker}
			rec := apitest.Call(t, h.Chat, http.MethodPost, "/assistant/chat", map[string]string{"message": tt.message}, "u1")
			apitest.Status(t, rec, tt.want)
			if tt.want != http.StatusOK {
				return
			}
			if got := apitest.Decode[map[string]string](t, rec)["reply"]; got != "Diversify." {
				t.Fatalf("reply = %q", got)
			}
			if f := tt.asker.(*fakeAsker); f.got != "What is diversification?" {
				t.Fatalf("asked %q, want trimmed message", f.got)
			}
		})
	}
}
