package notifications

import (
	"net/http"
	"testing"

	"fintrek-backend/controllers/apitest"
	"fintrek-backend/models"
	"fintrek-backend/models/dbtest"
)

func TestNotificationLifecycle(t *testing.T) {
	db := dbtest.Open(t)
	h := &Handler{DB: db}
	rows := []models.Notification{
		{UserID: "u1", Message: "one"},
		{UserID: "u1", Message: "two"},
		{UserID: "u2", Message: "other"},
	}
	if err := db.Create(&rows).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	type listResponse struct {
		Notifications []models.Notification `json:"notifications"`
		Unread        int                   `json:"unread"`
	}
	list := func() listResponse {
		rec := apitest.Call(t, h.ListNotifications, http.MethodGet, "/notifications", nil, "u1")
		apitest.Status(t, rec, http.StatusOK)
		return apitest.Decode[listResponse](t, rec)
	}
	if got := list(); len(got.Notifications) != 2 || got.Unread != 2 {
		t.Fatalf("list = %+v", got)
	}

	read := apitest.NewRoute("PUT /notifications/{id}/read", h.MarkRead)
	apitest.Status(t, read.Do(t, http.MethodPut, "/notifications/"+rows[0].ID+"/read", nil, "u1"), http.StatusOK)
	apitest.Status(t, read.Do(t, http.MethodPut, "/notifications/"+rows[2].ID+"/read", nil, "u1"), http.StatusNotFound)
	if got := list(); got.Unread != 1 {
		t.Fatalf("unread = %d, want 1", got.Unread)
	}

	del := apitest.NewRoute("DELETE /notifications/{id}", h.DeleteNotification)
	apitest.Status(t, del.Do(t, http.MethodDelete, "/notifications/"+rows[2].ID, nil, "u1"), http.StatusNotFound)
	apitest.Status(t, del.Do(t, http.MethodDelete, "/notifications/"+rows[1].ID, nil, "u1"), http.StatusOK)
	if got := list(); len(got.Notifications) != 1 || got.Unread != 0 {
		t.Fatalf("after delete = %+v", got)
	}
}

func TestSubscribeMovesEndpoint(t *testing.T) {
	db := dbtest.Open(t)
	h := &Handler{DB: db, VAPIDPublicKey: "public-key"}
	body := map[string]any{
		"endpoint": "https://push.example/abc",
		"keys":     map[string]string{"p256dh": "p", "auth": "a"},
	}

	rec := apitest.Call(t, h.Subscribe, http.MethodPost, "/notifications/subscribe", body, "u1")
	apitest.Status(t, rec, http.StatusCreated)
	if got := apitest.Decode[map[string]string](t, rec); got["vapidPublicKey"] != "public-key" {
		t.Fatalf("response = %v", got)
	}
	apitest.Status(t, apitest.Call(t, h.Subscribe, http.MethodPost, "/notifications/subscribe", body, "u2"), http.StatusCreated)

	var subs []models.PushSubscription
	if err := db.Find(&subs).Error; err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(subs) != 1 || subs[0].UserID != "u2" {
		t.Fatalf("subscriptions = %+v", subs)
	}

	bad := map[string]any{"endpoint": "http://insecure.example", "keys": map[string]string{}}
	rec = apitest.Call(t, h.Subscribe, http.MethodPost, "/notifications/subscribe", bad, "u1")
	apitest.Status(t, rec, http.StatusBadRequest)

	apitest.Status(t, apitest.Call(t, h.Unsubscribe, http.MethodDelete, "/notifications/subscribe", map[string]any{"endpoint": "https://push.example/abc"}, "u1"), http.StatusOK)
	var n int64
	db.Model(&models.PushSubscription{}).Count(&n)
	if n != 1 {
		t.Fatalf("another user's subscription was removed")
	}
	apitest.Status(t, apitest.Call(t, h.Unsubscribe, http.MethodDelete, "/notifications/subscribe", map[string]any{"endpoint": "https://push.example/abc"}, "u2"), http.StatusOK)
	db.Model(&models.PushSubscription{}).Count(&n)
	if n != 0 {
		t.Fatalf("subscriptions left = %d", n)
	}
}
