package community

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"fintrek-backend/controllers/authentication"
	"fintrek-backend/controllers/respond"
	"fintrek-backend/models"
)

type replyRequest struct {
	Content string `json:"content"`
}

func (req replyRequest) validate() (string, []respond.FieldError) {
	content := strings.TrimSpace(req.Content)
	var v respond.Validator
	v.Check(content != "" && len(content) <= maxContentLength, "content", "is required and must be at most 10000 characters")
	return content, v.Errors()
}

// notifyOwner tells a discussion owner about activity by someone else.
func (h *Handler) notifyOwner(r *http.Request, d models.Discussion, actorID, message string) {
	if h.Notifier == nil || d.UserID == actorID {
		return
	}
	if err := h.Notifier.Notify(r.Context(), d.UserID, message); err != nil {
		log.Printf("Community: notify %s: %v", d.UserID, err)
	}
}

func (h *Handler) CreateReply(w http.ResponseWriter, r *http.Request) {
	var req replyRequest
	if err := respond.DecodeJSON(w, r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	content, errs := req.validate()
	if len(errs) > 0 {
		respond.ValidationFailed(w, errs)
		return
	}
	d, ok := h.loadDiscussion(w, r, r.PathValue("id"))
	if !ok {
		return
	}

	userID := authentication.UserID(r.Context())
	reply := models.DiscussionReply{
		DiscussionID: d.ID,
		UserID:       userID,
		AuthorName:   h.authorName(r, userID),
		Content:      content,
	}
	err := h.DB.WithContext(r.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&reply).Error; err != nil {
			return err
		}
		return tx.Model(&models.Discussion{}).Where("id = ?", d.ID).UpdateColumn("updated_at", h.now()).Error
	})
	if err != nil {
		log.Printf("Create reply error: %v", err)
		respond.Error(w, http.StatusInternalServerError, "Failed to create reply")
		return
	}

	h.notifyOwner(r, d, userID, fmt.Sprintf("%s replied to your discussion \"%s\"", reply.AuthorName, d.Title))
	respond.JSON(w, http.StatusCreated, map[string]any{"reply": reply})
}

func (h *Handler) ownedReply(w http.ResponseWriter, r *http.Request) (models.DiscussionReply, bool) {
	var reply models.DiscussionReply
	err := h.DB.WithContext(r.Context()).First(&reply, "id = ?", r.PathValue("id")).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respond.Error(w, http.StatusNotFound, "Reply not found")
		return reply, false
	}
	if err != nil {
		log.Printf("Reply error: %v", err)
		respond.Error(w, http.StatusInternalServerError, "Failed to fetch reply")
		return reply, false
	}
	if reply.UserID != authentication.UserID(r.Context()) {
		respond.Error(w, http.StatusForbidden, "Unauthorized access")
		return reply, false
	}
	return reply, true
}

func (h *Handler) UpdateReply(w http.ResponseWriter, r *http.Request) {
	var req replyRequest
	if err := respond.DecodeJSON(w, r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	content, errs := req.validate()
	if len(errs) > 0 {
		respond.ValidationFailed(w, errs)
		return
	}
	reply, ok := h.ownedReply(w, r)
	if !ok {
		return
	}
	if err := h.DB.WithContext(r.Context()).Model(&reply).Update("content", content).Error; err != nil {
		log.Printf("Update reply error: %v", err)
		respond.Error(w, http.StatusInternalServerError, "Failed to update reply")
		return
	}
	reply.Content = content
	respond.JSON(w, http.StatusOK, map[string]any{"reply": reply})
}

func (h *Handler) DeleteReply(w http.ResponseWriter, r *http.Request) {
	reply, ok := h.ownedReply(w, r)
	if !ok {
		return
	}
	if err := h.DB.WithContext(r.Context()).Delete(&reply).Error; err != nil {
		log.Printf("Delete reply error: %v", err)
		respond.Error(w, http.StatusInternalServerError, "Failed to delete reply")
		return
	}
	respond.Message(w, http.StatusOK, "Reply deleted successfully")
}

func (h *Handler) likeCount(r *http.Request, discussionID string) (int64, error) {
	var n int64
	err := h.DB.WithContext(r.Context()).Model(&models.DiscussionLike{}).Where("discussion_id = ?", discussionID).Count(&n).Error
	return n, err
}

// Like is idempotent; only the first like notifies the owner.
func (h *Handler) Like(w http.ResponseWriter, r *http.Request) {
	d, ok := h.loadDiscussion(w, r, r.PathValue("id"))
	if !ok {
		return
	}
	userID := authentication.UserID(r.Context())

	res := h.DB.WithContext(r.Context()).Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.DiscussionLike{DiscussionID: d.ID, UserID: userID})
	if res.Error != nil {
		log.Printf("Like discussion error: %v", res.Error)
		respond.Error(w, http.StatusInternalServerError, "Failed to like discussion")
		return
	}
	if res.RowsAffected > 0 {
		h.notifyOwner(r, d, userID, fmt.Sprintf("%s liked your discussion \"%s\"", h.authorName(r, userID), d.Title))
	}

	n, err := h.likeCount(r, d.ID)
	if err != nil {
		log.Printf("Like discussion error: count: %v", err)
		respond.Error(w, http.StatusInternalServerError, "Failed to like discussion")
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{"liked": true, "likeCount": n})
}

func (h *Handler) Unlike(w http.ResponseWriter, r *http.Request) {
	d, ok := h.loadDiscussion(w, r, r.PathValue("id"))
	if !ok {
		return
	}
	err := h.DB.WithContext(r.Context()).
		Where("discussion_id = ? AND user_id = ?", d.ID, authentication.UserID(r.Context())).
		Delete(&models.DiscussionLike{}).Error
	if err != nil {
		log.Printf("Unlike discussion error: %v", err)
		respond.Error(w, http.StatusInternalServerError, "Failed to unlike discussion")
		return
	}
	n, err := h.likeCount(r, d.ID)
	if err != nil {
		log.Printf("Unlike discussion error: count: %v", err)
		respond.Error(w, http.StatusInternalServerError, "Failed to unlike discussion")
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{"liked": false, "likeCount": n})
}
