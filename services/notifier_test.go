package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"fintrek-backend/models"
	"fintrek-backend/models/dbtest"
)

type fakePusher struct {
	mu   sync.Mutex
	sent []string
	gone map[string]bool
}

func (f *fakePusher) Push(ctx context.Context, sub models.PushSubscription, payload []byte) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sub.Endpoint)
	if f.gone[sub.Endpoint] {
		return true, nil
	}
	if sub.Endpoint == "https://push.example/broken" {
		return false, errors.New("boom")
	}
	return false, nil
}

func TestNotifierStoresAndPushes(t *testing.T) {
	db := dbtest.Open(t)
	for _, endpoint := range []string{"https://push.example/a", "https://push.example/gone", "https://push.example/broken"} {
		if err := db.Create(&models.PushSubscription{UserID: "u1", Endpoint: endpoint, P256dh: "k", Auth: "a"}).Error; err != nil {
			t.Fatalf("create subscription: %v", err)
		}
	}
	pusher := &fakePusher{gone: map[string]bool{"https://push.example/gone": true}}
	n := &Notifier{DB: db, Pusher: pusher}

	if err := n.Notify(context.Background(), "u1", "Someone replied to your discussion"); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	n.Wait()

	if len(pusher.sent) != 3 {
		t.Fatalf("pushed to %v, want 3 endpoints", pusher.sent)
	}
	var stored models.Notification
	if err := db.First(&stored, "user_id = ?", "u1").Error; err != nil {
		t.Fatalf("load notification: %v", err)
	}
	if stored.IsRead || stored.Message != "Someone replied to your discussion" {
		t.Fatalf("notification = %+v", stored)
	}

	var remaining int64
	db.Model(&models.PushSubscription{}).Count(&remaining)
	if remaining != 2 {
		t.Fatalf("subscriptions = %d, want gone endpoint removed", remaining)
	}
}

func TestNotifierWithoutPusher(t *testing.T) {
	db := dbtest.Open(t)
	n := &Notifier{DB: db}
	if err := n.Notify(context.Background(), "u1", "hello"); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	var count int64
	db.Model(&models.Notification{}).Count(&count)
	if count != 1 {
		t.Fatalf("notifications = %d, want 1", count)
	}
}
