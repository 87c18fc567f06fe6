package community

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"gorm.io/gorm"

	"fintrek-backend/controllers/authentication"
	"fintrek-backend/controllers/respond"
	"fintrek-backend/models"
	"fintrek-backend/services"
)

const (
	maxTitleLength   = 200
	maxContentLength = 10000
)

type Handler struct {
	DB       *gorm.DB
	Notifier *services.Notifier
	Now      func() time.Time
}

func (h *Handler) now() time.Time {
	if h.Now != nil {
		return h.Now().UTC()
	}
	return time.Now().UTC()
}

type discussionPayload struct {
	models.Discussion
	AuthorAvatar string `json:"authorAvatar"`
	ReplyCount   int64  `json:"replyCount"`
	LikeCount    int64  `json:"likeCount"`
	LikedByMe    bool   `json:"likedByMe"`
}

type countRow struct {
	DiscussionID string
	N            int64
}

func (h *Handler) countBy(r *http.Request, model any, ids []string) (map[string]int64, error) {
	var rows []countRow
	err := h.DB.WithContext(r.Context()).Model(model).
		Select("discussion_id, COUNT(*) AS n").
		Where("discussion_id IN ?", ids).
		Group("discussion_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.DiscussionID] = row.N
	}
	return out, nil
}

func (h *Handler) usersByID(r *http.Request, ids []string) (map[string]models.User, error) {
	var users []models.User
	if err := h.DB.WithContext(r.Context()).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	out := make(map[string]models.User, len(users))
	for _, u := range users {
		out[u.ID] = u
	}
	return out, nil
}

// decorate adds author details and counters, backfilling author names that
// were never recorded.
func (h *Handler) decorate(r *http.Request, discussions []models.Discussion) ([]discussionPayload, error) {
	out := make([]discussionPayload, 0, len(discussions))
	if len(discussions) == 0 {
		return out, nil
	}
	ids := make([]string, 0, len(discussions))
	authorIDs := make([]string, 0, len(discussions))
	for _, d := range discussions {
		ids = append(ids, d.ID)
		authorIDs = append(authorIDs, d.UserID)
	}

	authors, err := h.usersByID(r, authorIDs)
	if err != nil {
		return nil, err
	}
	replies, err := h.countBy(r, &models.DiscussionReply{}, ids)
	if err != nil {
		return nil, err
	}
	likes, err := h.countBy(r, &models.DiscussionLike{}, ids)
	if err != nil {
		return nil, err
	}
	liked := map[string]bool{}
	if userID := authentication.UserID(r.Context()); userID != "" {
		var likedIDs []string
		err := h.DB.WithContext(r.Context()).Model(&models.DiscussionLike{}).
			Where("user_id = ? AND discussion_id IN ?", userID, ids).
			Pluck("discussion_id", &likedIDs).Error
		if err != nil {
			return nil, err
		}
		for _, id := range likedIDs {
			liked[id] = true
		}
	}

	for _, d := range discussions {
		author, known := authors[d.UserID]
		if strings.TrimSpace(d.AuthorName) == "" {
			d.AuthorName = models.FallbackName(d.UserID)
			if known {
				d.AuthorName = author.DisplayName()
			}
			err := h.DB.WithContext(r.Context()).Model(&models.Discussion{}).
				Where("id = ?", d.ID).
				UpdateColumn("author_name", d.AuthorName).Error
			if err != nil {
				log.Printf("Discussions: backfill author name for %s: %v", d.ID, err)
			}
		}
		out = append(out, discussionPayload{
			Discussion:   d,
			AuthorAvatar: author.AvatarURL,
			ReplyCount:   replies[d.ID],
			LikeCount:    likes[d.ID],
			LikedByMe:    liked[d.ID],
		})
	}
	return out, nil
}

func (h *Handler) ListDiscussions(w http.ResponseWriter, r *http.Request) {
	var v respond.Validator
	limit := v.IntQuery(r, "limit", 20, 1, 100)
	if !v.Valid() {
		respond.ValidationFailed(w, v.Errors())
		return
	}

	q := h.DB.WithContext(r.Context()).Order("is_pinned DESC").Order("updated_at DESC").Limit(limit)
	if category := strings.TrimSpace(r.URL.Query().Get("category")); category != "" {
		q = q.Where("category = ?", category)
	}
	var discussions []models.Discussion
	if err := q.Find(&discussions).Error; err != nil {
		log.Printf("Discussions error: %v", err)
		respond.Error(w, http.StatusInternalServerError, "Failed to fetch discussions")
		return
	}
	out, err := h.decorate(r, discussions)
	if err != nil {
		log.Printf("Discussions error: %v", err)
		respond.Error(w, http.StatusInternalServerError, "Failed to fetch discussions")
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{"discussions": out})
}

type discussionRequest struct {
	Title    *string `json:"title"`
	Content  *string `json:"content"`
	Category *string `json:"category"`
}

func (req discussionRequest) apply(d *models.Discussion, partial bool) []respond.FieldError {
	var v respond.Validator
	if req.Title != nil || !partial {
		title := ""
		if req.Title != nil {
			title = strings.TrimSpace(*req.Title)
		}
		v.Check(title != "" && len(title) <= maxTitleLength, "title", "is required and must be at most 200 characters")
		d.Title = title
	}
	if req.Content != nil || !partial {
		content := ""
		if req.Content != nil {
			content = strings.TrimSpace(*req.Content)
		}
		v.Check(content != "" && len(content) <= maxContentLength, "content", "is required and must be at most 10000 characters")
		d.Content = content
	}
	if req.Category != nil {
		if category := strings.TrimSpace(*req.Category); category != "" {
			d.Category = category
		}
	}
	if d.Category == "" {
		d.Category = models.DefaultDiscussionCategory
	}
	return v.Errors()
}

// authorName snapshots the caller's display name for a new post.
func (h *Handler) authorName(r *http.Request, userID string) string {
	var user models.User
	if err := h.DB.WithContext(r.Context()).First(&user, "id = ?", userID).Error; err != nil {
		return models.FallbackName(userID)
	}
	return user.DisplayName()
}

func (h *Handler) CreateDiscussion(w http.ResponseWriter, r *http.Request) {
	var req discussionRequest
	if err := respond.DecodeJSON(w, r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	userID := authentication.UserID(r.Context())
	d := models.Discussion{UserID: userID}
	if errs := req.apply(&d, false); len(errs) > 0 {
		respond.ValidationFailed(w, errs)
		return
	}
	d.AuthorName = h.authorName(r, userID)

	if err := h.DB.WithContext(r.Context()).Create(&d).Error; err != nil {
		log.Printf("Create discussion error: %v", err)
		respond.Error(w, http.StatusInternalServerError, "Failed to create discussion")
		return
	}
	respond.JSON(w, http.StatusCreated, map[string]any{"discussion": d})
}

func (h *Handler) loadDiscussion(w http.ResponseWriter, r *http.Request, id string) (models.Discussion, bool) {
	var d models.Discussion
	err := h.DB.WithContext(r.Context()).First(&d, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respond.Error(w, http.StatusNotFound, "Discussion not found")
		return d, false
	}
	if err != nil {
		log.Printf("Discussion error: %v", err)
		respond.Error(w, http.StatusInternalServerError, "Failed to fetch discussion")
		return d, false
	}
	return d, true
}

func (h *Handler) GetDiscussion(w http.ResponseWriter, r *http.Request) {
	d, ok := h.loadDiscussion(w, r, r.PathValue("id"))
	if !ok {
		return
	}
	decorated, err := h.decorate(r, []models.Discussion{d})
	if err != nil {
		log.Printf("Discussion error: %v", err)
		respond.Error(w, http.StatusInternalServerError, "Failed to fetch discussion")
		return
	}
	replies := []models.DiscussionReply{}
	if err := h.DB.WithContext(r.Context()).Where("discussion_id = ?", d.ID).Order("created_at").Find(&replies).Error; err != nil {
		log.Printf("Discussion error: replies: %v", err)
		respond.Error(w, http.StatusInternalServerError, "Failed to fetch discussion")
		return
	}
	for i := range replies {
		if strings.TrimSpace(replies[i].AuthorName) == "" {
			replies[i].AuthorName = models.FallbackName(replies[i].UserID)
		}
	}
	respond.JSON(w, http.StatusOK, map[string]any{
		"discussion": decorated[0],
		"replies":    replies,
	})
}

func (h *Handler) UpdateDiscussion(w http.ResponseWriter, r *http.Request) {
	var req discussionRequest
	if err := respond.DecodeJSON(w, r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	d, ok := h.loadDiscussion(w, r, r.PathValue("id"))
	if !ok {
		return
	}
	if d.UserID != authentication.UserID(r.Context()) {
		respond.Error(w, http.StatusForbidden, "Unauthorized access")
		return
	}
	if errs := req.apply(&d, true); len(errs) > 0 {
		respond.ValidationFailed(w, errs)
		return
	}
	if err := h.DB.WithContext(r.Context()).Model(&d).Select("title", "content", "category").Updates(&d).Error; err != nil {
		log.Printf("Update discussion error: %v", err)
		respond.Error(w, http.StatusInternalServerError, "Failed to update discussion")
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{"discussion": d})
}

func (h *Handler) DeleteDiscussion(w http.ResponseWriter, r *http.Request) {
	d, ok := h.loadDiscussion(w, r, r.PathValue("id"))
	if !ok {
		return
	}
	if d.UserID != authentication.UserID(r.Context()) {
		respond.Error(w, http.StatusForbidden, "Unauthorized access")
		return
	}
	err := h.DB.WithContext(r.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("discussion_id = ?", d.ID).Delete(&models.DiscussionReply{}).Error; err != nil {
			return err
		}
		if err := tx.Where("discussion_id = ?", d.ID).Delete(&models.DiscussionLike{}).Error; err != nil {
			return err
		}
		return tx.Delete(&d).Error
	})
	if err != nil {
		log.Printf("Delete discussion error: %v", err)
		respond.Error(w, http.StatusInternalServerError, "Failed to delete discussion")
		return
	}
	respond.Message(w, http.StatusOK, "Discussion deleted successfully")
}

type statsPayload struct {
	ActiveMembers     int64 `json:"activeMembers"`
	TotalDiscussions  int64 `json:"totalDiscussions"`
	WeeklyDiscussions int64 `json:"weeklyDiscussions"`
}

// Stats counts members seen in the last 15 minutes and recent discussion volume.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	now := h.now()
	db := h.DB.WithContext(r.Context())
	var s statsPayload
	err := db.Model(&models.User{}).Where("last_seen_at >= ?", now.Add(-15*time.Minute)).Count(&s.ActiveMembers).Error
	if err == nil {
		err = db.Model(&models.Discussion{}).Count(&s.TotalDiscussions).Error
	}
	if err == nil {
		err = db.Model(&models.Discussion{}).Where("created_at >= ?", now.AddDate(0, 0, -7)).Count(&s.WeeklyDiscussions).Error
	}
	if err != nil {
		log.Printf("Community stats error: %v", err)
		respond.Error(w, http.StatusInternalServerError, "Failed to fetch community stats")
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{"stats": s})
}
