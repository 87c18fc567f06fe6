package profile

import (
	"errors"
	"log"
	"math"
	"net/http"
	"strings"
	"time"

	"gorm.io/gorm"

	"fintrek-backend/catalog"
	"fintrek-backend/controllers/authentication"
	"fintrek-backend/controllers/respond"
	"fintrek-backend/models"
	"fintrek-backend/services"
)

type Handler struct {
	DB           *gorm.DB
	Catalog      catalog.Catalog
	Gamification *services.Gamification
	Avatars      services.AvatarStore // nil when uploads are disabled
}

type profilePayload struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Name      string    `json:"name"`
	AvatarURL string    `json:"avatarUrl"`
	Provider  string    `json:"provider"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toProfile(u models.User) profilePayload {
	return profilePayload{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Name:      u.Name,
		AvatarURL: u.AvatarURL,
		Provider:  u.Provider,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// loadUser writes the 404/500 response itself and reports whether the user was found.
func (h *Handler) loadUser(w http.ResponseWriter, r *http.Request, action string) (models.User, bool) {
	var user models.User
	err := h.DB.WithContext(r.Context()).First(&user, "id = ?", authentication.UserID(r.Context())).Error
	if err == nil {
		return user, true
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respond.Error(w, http.StatusNotFound, "User not found")
		return user, false
	}
	log.Printf("Profile %s error: %v", action, err)
	respond.Error(w, http.StatusInternalServerError, "Failed to "+action+" profile")
	return user, false
}

func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := h.loadUser(w, r, "fetch")
	if !ok {
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{"profile": toProfile(user)})
}

type updateRequest struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Name      *string `json:"name"`
	AvatarURL *string `json:"avatarUrl"`
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req updateRequest
	if err := respond.DecodeJSON(w, r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	updates := map[string]any{}
	var v respond.Validator
	for _, f := range []struct {
		field  string
		column string
		value  *string
	}{
		{"firstName", "first_name", req.FirstName},
		{"lastName", "last_name", req.LastName},
		{"name", "name", req.Name},
	} {
		if f.value == nil {
			continue
		}
		trimmed := strings.TrimSpace(*f.value)
		v.Check(trimmed != "", f.field, "cannot be empty")
		updates[f.column] = trimmed
	}
	if req.AvatarURL != nil {
		updates["avatar_url"] = strings.TrimSpace(*req.AvatarURL)
	}
	if !v.Valid() {
		respond.ValidationFailed(w, v.Errors())
		return
	}

	user, ok := h.loadUser(w, r, "update")
	if !ok {
		return
	}
	if len(updates) > 0 {
		if err := h.DB.WithContext(r.Context()).Model(&user).Updates(updates).Error; err != nil {
			log.Printf("Profile update error: %v", err)
			respond.Error(w, http.StatusInternalServerError, "Failed to update profile")
			return
		}
		if err := h.DB.WithContext(r.Context()).First(&user, "id = ?", user.ID).Error; err != nil {
			log.Printf("Profile update error: reload: %v", err)
			respond.Error(w, http.StatusInternalServerError, "Failed to update profile")
			return
		}
	}

	respond.JSON(w, http.StatusOK, map[string]any{
		"message": "Profile updated successfully",
		"profile": toProfile(user),
	})
}

// DeleteProfile removes the account and everything it owns except community
// posts, which keep their author name snapshot.
func (h *Handler) DeleteProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := h.loadUser(w, r, "delete")
	if !ok {
		return
	}

	owned := []any{
		&models.Transaction{},
		&models.Points{},
		&models.Progress{},
		&models.UserModuleProgress{},
		&models.LessonCompletion{},
		&models.QuizResult{},
		&models.UserActivity{},
		&models.UserAchievement{},
		&models.DiscussionLike{},
		&models.Notification{},
		&models.PushSubscription{},
	}
	err := h.DB.WithContext(r.Context()).Transaction(func(tx *gorm.DB) error {
		for _, m := range owned {
			if err := tx.Where("user_id = ?", user.ID).Delete(m).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&user).Error
	})
	if err != nil {
		log.Printf("Profile delete error: %v", err)
		respond.Error(w, http.StatusInternalServerError, "Failed to delete account")
		return
	}
	respond.Message(w, http.StatusOK, "Account deleted successfully")
}

type statsPayload struct {
	Name             string  `json:"name"`
	Email            string  `json:"email"`
	AvatarURL        string  `json:"avatarUrl"`
	JoinDate         string  `json:"joinDate"`
	Level            string  `json:"level"`
	NextLevel        string  `json:"nextLevel"`
	LevelProgress    int     `json:"levelProgress"`
	TotalPoints      int     `json:"totalPoints"`
	CurrentStreak    int     `json:"currentStreak"`
	LongestStreak    int     `json:"longestStreak"`
	CompletedLessons int     `json:"completedLessons"`
	TotalLessons     int     `json:"totalLessons"`
	QuizzesTaken     int64   `json:"quizzesTaken"`
	QuizAccuracy     int     `json:"quizAccuracy"`
	TimeSpent        float64 `json:"timeSpent"`
}

// Stats is the dashboard aggregate over the profile, points, progress and quiz results.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	user, ok := h.loadUser(w, r, "fetch")
	if !ok {
		return
	}
	ctx := r.Context()

	points, err := h.Gamification.EnsurePoints(ctx, user.ID)
	if err != nil {
		log.Printf("Profile stats error: points: %v", err)
		respond.Error(w, http.StatusInternalServerError, "Failed to fetch profile stats")
		return
	}
	progress, err := h.Gamification.EnsureProgress(ctx, user.ID)
	if err != nil {
		log.Printf("Profile stats error: progress: %v", err)
		respond.Error(w, http.StatusInternalServerError, "Failed to fetch profile stats")
		return
	}

	var quiz struct {
		Taken   int64
		Correct int64
		Total   int64
	}
	err = h.DB.WithContext(ctx).Model(&models.QuizResult{}).
		Select("COUNT(*) AS taken, COALESCE(SUM(score), 0) AS correct, COALESCE(SUM(total_questions), 0) AS total").
		Where("user_id = ?", user.ID).
		Scan(&quiz).Error
	if err != nil {
		log.Printf("Profile stats error: quiz results: %v", err)
		respond.Error(w, http.StatusInternalServerError, "Failed to fetch profile stats")
		return
	}

	level := services.LevelFor(points.TotalPoints)
	stats := statsPayload{
		Name:             statsName(user),
		Email:            user.Email,
		AvatarURL:        user.AvatarURL,
		JoinDate:         user.CreatedAt.Format("January 2006"),
		Level:            level.Current,
		NextLevel:        level.Next,
		LevelProgress:    level.Progress,
		TotalPoints:      points.TotalPoints,
		CurrentStreak:    points.CurrentStreak,
		LongestStreak:    points.LongestStreak,
		CompletedLessons: progress.CompletedLessons,
		TotalLessons:     progress.TotalLessons,
		QuizzesTaken:     quiz.Taken,
		TimeSpent:        math.Round(float64(progress.CompletedLessons) * 0.5),
	}
	if quiz.Total > 0 {
		stats.QuizAccuracy = int(math.Round(float64(quiz.Correct) * 100 / float64(quiz.Total)))
	}
	respond.JSON(w, http.StatusOK, map[string]any{"stats": stats})
}

func statsName(u models.User) string {
	if n := strings.TrimSpace(u.Name); n != "" {
		return n
	}
	if at := strings.Index(u.Email, "@"); at > 0 {
		return u.Email[:at]
	}
	return "User"
}

type achievementPayload struct {
	models.Achievement
	Earned   bool       `json:"earned"`
	EarnedAt *time.Time `json:"earnedAt,omitempty"`
}

func (h *Handler) Achievements(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := authentication.UserID(ctx)

	all, err := h.Catalog.ListAchievements(ctx)
	if err != nil {
		log.Printf("Achievements error: %v", err)
		respond.Error(w, http.StatusInternalServerError, "Failed to fetch achievements")
		return
	}
	var earned []models.UserAchievement
	if err := h.DB.WithContext(ctx).Where("user_id = ?", userID).Find(&earned).Error; err != nil {
		log.Printf("Achievements error: %v", err)
		respond.Error(w, http.StatusInternalServerError, "Failed to fetch achievements")
		return
	}
	earnedAt := make(map[string]time.Time, len(earned))
	for _, ua := range earned {
		earnedAt[ua.AchievementID] = ua.EarnedAt
	}

	out := make([]achievementPayload, 0, len(all))
	for _, a := range all {
		p := achievementPayload{Achievement: a}
		if at, ok := earnedAt[a.ID]; ok {
			p.Earned = true
			p.EarnedAt = &at
		}
		out = append(out, p)
	}
	respond.JSON(w, http.StatusOK, map[string]any{"achievements": out})
}

func (h *Handler) Activity(w http.ResponseWriter, r *http.Request) {
	activity := []models.UserActivity{}
	err := h.DB.WithContext(r.Context()).
		Where("user_id = ?", authentication.UserID(r.Context())).
		Order("created_at DESC").
		Limit(10).
		Find(&activity).Error
	if err != nil {
		log.Printf("Activity error: %v", err)
		respond.Error(w, http.StatusInternalServerError, "Failed to fetch activity")
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{"activity": activity})
}
