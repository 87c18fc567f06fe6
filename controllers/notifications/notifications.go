package notifications

import (
	"log"
	"net/http"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"fintrek-backend/controllers/authentication"
	"fintrek-backend/controllers/respond"
	"fintrek-backend/models"
)

type Handler struct {
	DB *gorm.DB
	// VAPIDPublicKey is handed to browsers so they can subscribe; empty disables push.
	VAPIDPublicKey string
}

func (h *Handler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	items := []models.Notification{}
	err := h.DB.WithContext(r.Context()).
		Where("user_id = ?", authentication.UserID(r.Context())).
		Order("created_at DESC").
		Limit(100).
		Find(&items).Error
	if err != nil {
		log.Printf("Notifications error: %v", err)
		respond.Error(w, http.StatusInternalServerError, "Failed to fetch notifications")
		return
	}
	unread := 0
	for _, n := range items {
		if !n.IsRead {
			unread++
		}
	}
	respond.JSON(w, http.StatusOK, map[string]any{
		"notifications": items,
		"unread":        unread,
	})
}

func (h *Handler) MarkRead(w http.ResponseWriter, r *http.Request) {
	res := h.DB.WithContext(r.Context()).Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", r.PathValue("id"), authentication.UserID(r.Context())).
		Update("is_read", true)
	if res.Error != nil {
		log.Printf("Mark notification error: %v", res.Error)
		respond.Error(w, http.StatusInternalServerError, "Failed to update notification")
		return
	}
	if res.RowsAffected == 0 {
		respond.Error(w, http.StatusNotFound, "Notification not found")
		return
	}
	respond.Message(w, http.StatusOK, "Notification marked as read")
}

func (h *Handler) DeleteNotification(w http.ResponseWriter, r *http.Request) {
	res := h.DB.WithContext(r.Context()).
		Where("id = ? AND user_id = ?", r.PathValue("id"), authentication.UserID(r.Context())).
		Delete(&models.Notification{})
	if res.Error != nil {
		log.Printf("Delete notification error: %v", res.Error)
		respond.Error(w, http.StatusInternalServerError, "Failed to delete notification")
		return
	}
	if res.RowsAffected == 0 {
		respond.Error(w, http.StatusNotFound, "Notification not found")
		return
	}
	respond.Message(w, http.StatusOK, "Notification deleted successfully")
}

type subscriptionRequest struct {
	Endpoint string `json:"endpoint"`
	Keys     struct {
		P256dh string `json:"p256dh"`
		Auth   string `json:"auth"`
	} `json:"keys"`
}

// Subscribe stores a browser push subscription. Re-subscribing an endpoint
// moves it to the caller.
func (h *Handler) Subscribe(w http.ResponseWriter, r *http.Request) {
	var req subscriptionRequest
	if err := respond.DecodeJSON(w, r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	var v respond.Validator
	endpoint := strings.TrimSpace(req.Endpoint)
	v.Check(strings.HasPrefix(endpoint, "https://"), "endpoint", "must be an https URL")
	v.Check(req.Keys.P256dh != "", "keys.p256dh", "is required")
	v.Check(req.Keys.Auth != "", "keys.auth", "is required")
	if !v.Valid() {
		respond.ValidationFailed(w, v.Errors())
		return
	}

	sub := models.PushSubscription{
		UserID:   authentication.UserID(r.Context()),
		Endpoint: endpoint,
		P256dh:   req.Keys.P256dh,
		Auth:     req.Keys.Auth,
	}
	err := h.DB.WithContext(r.Context()).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "endpoint"}},
		DoUpdates: clause.AssignmentColumns([]string{"user_id", "p256dh", "auth"}),
	}).Create(&sub).Error
	if err != nil {
		log.Printf("Subscribe error: %v", err)
		respond.Error(w, http.StatusInternalServerError, "Failed to save subscription")
		return
	}
	respond.JSON(w, http.StatusCreated, map[string]any{
		"message":        "Subscribed to notifications",
		"vapidPublicKey": h.VAPIDPublicKey,
	})
}

func (h *Handler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	var req subscriptionRequest
	if err := respond.DecodeJSON(w, r, &req); err != nil || strings.TrimSpace(req.Endpoint) == "" {
		respond.ValidationFailed(w, []respond.FieldError{{Field: "endpoint", Message: "is required"}})
		return
	}
	err := h.DB.WithContext(r.Context()).
		Where("endpoint = ? AND user_id = ?", strings.TrimSpace(req.Endpoint), authentication.UserID(r.Context())).
		Delete(&models.PushSubscription{}).Error
	if err != nil {
		log.Printf("Unsubscribe error: %v", err)
		respond.Error(w, http.StatusInternalServerError, "Failed to remove subscription")
		return
	}
	respond.Message(w, http.StatusOK, "Unsubscribed from notifications")
}
