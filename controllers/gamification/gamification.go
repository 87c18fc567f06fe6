package gamification

import (
	"errors"
	"log"
	"net/http"

	"gorm.io/gorm"

	"fintrek-backend/controllers/authentication"
	"fintrek-backend/controllers/respond"
	"fintrek-backend/models"
	"fintrek-backend/services"
)

type Handler struct {
	DB           *gorm.DB
	Gamification *services.Gamification
}

func (h *Handler) GetPoints(w http.ResponseWriter, r *http.Request) {
	points, err := h.Gamification.EnsurePoints(r.Context(), authentication.UserID(r.Context()))
	if err != nil {
		log.Printf("Points error: %v", err)
		respond.Error(w, http.StatusInternalServerError, "Failed to fetch points")
		return
	}
	level := services.LevelFor(points.TotalPoints)
	respond.JSON(w, http.StatusOK, map[string]any{
		"points":        points,
		"level":         level.Current,
		"nextLevel":     level.Next,
		"levelProgress": level.Progress,
	})
}

type leaderboardEntry struct {
	Rank          int    `json:"rank"`
	UserID        string `json:"userId"`
	Name          string `json:"name"`
	AvatarURL     string `json:"avatarUrl"`
	TotalPoints   int    `json:"totalPoints"`
	CurrentStreak int    `json:"currentStreak"`
	Level         string `json:"level"`
}

type userRank struct {
	Rank          int64 `json:"rank"`
	TotalPoints   int   `json:"totalPoints"`
	CurrentStreak int   `json:"currentStreak"`
}

type leaderRow struct {
	UserID        string
	TotalPoints   int
	CurrentStreak int
	Name          string
	FirstName     string
	LastName      string
	Email         string
	AvatarURL     string
}

// Leaderboard ranks users by total points. Equal totals share a rank.
func (h *Handler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var v respond.Validator
	limit := v.IntQuery(r, "limit", 10, 1, 100)
	if !v.Valid() {
		respond.ValidationFailed(w, v.Errors())
		return
	}

	var rows []leaderRow
	err := h.DB.WithContext(ctx).Table("points").
		Select("points.user_id, points.total_points, points.current_streak, users.name, users.first_name, users.last_name, users.email, users.avatar_url").
		Joins("LEFT JOIN users ON users.id = points.user_id").
		Order("points.total_points DESC").
		Order("points.user_id").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		log.Printf("Leaderboard error: %v", err)
		respond.Error(w, http.StatusInternalServerError, "Failed to fetch leaderboard")
		return
	}

	entries := make([]leaderboardEntry, 0, len(rows))
	for i, row := range rows {
		rank := i + 1
		if i > 0 && row.TotalPoints == rows[i-1].TotalPoints {
			rank = entries[i-1].Rank
		}
		user := models.User{Base: models.Base{ID: row.UserID}, Name: row.Name, FirstName: row.FirstName, LastName: row.LastName, Email: row.Email}
		entries = append(entries, leaderboardEntry{
			Rank:          rank,
			UserID:        row.UserID,
			Name:          user.DisplayName(),
			AvatarURL:     row.AvatarURL,
			TotalPoints:   row.TotalPoints,
			CurrentStreak: row.CurrentStreak,
			Level:         services.LevelFor(row.TotalPoints).Current,
		})
	}

	body := map[string]any{"leaderboard": entries}
	if userID := authentication.UserID(ctx); userID != "" {
		rank, err := h.rankOf(r, userID)
		switch {
		case err == nil:
			body["userRank"] = rank
		case !errors.Is(err, gorm.ErrRecordNotFound):
			log.Printf("Leaderboard error: user rank: %v", err)
			respond.Error(w, http.StatusInternalServerError, "Failed to fetch leaderboard")
			return
		}
	}
	respond.JSON(w, http.StatusOK, body)
}

func (h *Handler) rankOf(r *http.Request, userID string) (userRank, error) {
	var points models.Points
	if err := h.DB.WithContext(r.Context()).Where("user_id = ?", userID).First(&points).Error; err != nil {
		return userRank{}, err
	}
	var ahead int64
	err := h.DB.WithContext(r.Context()).Model(&models.Points{}).
		Where("total_points > ?", points.TotalPoints).
		Count(&ahead).Error
	if err != nil {
		return userRank{}, err
	}
	return userRank{Rank: ahead + 1, TotalPoints: points.TotalPoints, CurrentStreak: points.CurrentStreak}, nil
}
