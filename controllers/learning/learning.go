package learning

import (
	"errors"
	"log"
	"math"
	"net/http"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"fintrek-backend/catalog"
	"fintrek-backend/controllers/authentication"
	"fintrek-backend/controllers/respond"
	"fintrek-backend/models"
	"fintrek-backend/services"
)

// LessonPoints is awarded for the first completion of a lesson.
const LessonPoints = 25

var errAlreadyCompleted = errors.New("lesson already completed")

type Handler struct {
	DB           *gorm.DB
	Catalog      catalog.Catalog
	Gamification *services.Gamification
}

type modulePayload struct {
	models.LearningModule
	CompletedLessons int `json:"completedLessons"`
}

func (h *Handler) ListModules(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	modules, err := h.Catalog.ListModules(ctx)
	if err != nil {
		log.Printf("Modules error: %v", err)
		respond.Error(w, http.StatusInternalServerError, "Failed to fetch modules")
		return
	}

	completed := map[string]int{}
	if userID := authentication.UserID(ctx); userID != "" {
		var rows []models.UserModuleProgress
		if err := h.DB.WithContext(ctx).Where("user_id = ?", userID).Find(&rows).Error; err != nil {
			log.Printf("Modules error: progress: %v", err)
			respond.Error(w, http.StatusInternalServerError, "Failed to fetch modules")
			return
		}
		for _, row := range rows {
			completed[row.ModuleID] = row.CompletedLessons
		}
	}

	out := make([]modulePayload, 0, len(modules))
	for _, m := range modules {
		out = append(out, modulePayload{LearningModule: m, CompletedLessons: completed[m.ID]})
	}
	respond.JSON(w, http.StatusOK, map[string]any{"modules": out})
}

func (h *Handler) GetModule(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	module, err := h.Catalog.GetModule(ctx, r.PathValue("id"))
	if errors.Is(err, catalog.ErrNotFound) {
		respond.Error(w, http.StatusNotFound, "Module not found")
		return
	}
	if err != nil {
		log.Printf("Module error: %v", err)
		respond.Error(w, http.StatusInternalServerError, "Failed to fetch module")
		return
	}
	lessons, err := h.Catalog.ListLessons(ctx, module.ID)
	if err != nil {
		log.Printf("Module error: lessons: %v", err)
		respond.Error(w, http.StatusInternalServerError, "Failed to fetch module")
		return
	}

	completedIDs := []string{}
	if userID := authentication.UserID(ctx); userID != "" {
		err := h.DB.WithContext(ctx).Model(&models.LessonCompletion{}).
			Where("user_id = ? AND module_id = ?", userID, module.ID).
			Pluck("lesson_id", &completedIDs).Error
		if err != nil {
			log.Printf("Module error: completions: %v", err)
			respond.Error(w, http.StatusInternalServerError, "Failed to fetch module")
			return
		}
	}

	respond.JSON(w, http.StatusOK, map[string]any{
		"module":             modulePayload{LearningModule: module, CompletedLessons: len(completedIDs)},
		"lessons":            lessons,
		"completedLessonIds": completedIDs,
	})
}

// CompleteLesson records the first completion of a lesson and awards its points.
func (h *Handler) CompleteLesson(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := authentication.UserID(ctx)

	lesson, err := h.Catalog.GetLesson(ctx, r.PathValue("id"))
	if errors.Is(err, catalog.ErrNotFound) {
		respond.Error(w, http.StatusNotFound, "Lesson not found")
		return
	}
	if err != nil {
		log.Printf("Complete lesson error: %v", err)
		respond.Error(w, http.StatusInternalServerError, "Failed to complete lesson")
		return
	}

	award := services.Award{
		UserID:          userID,
		Points:          LessonPoints,
		Activity:        "Completed lesson: " + lesson.Title,
		ActivityType:    models.ActivityLesson,
		LessonCompleted: true,
	}
	res, err := h.Gamification.Apply(ctx, award, func(tx *gorm.DB) error {
		completion := models.LessonCompletion{UserID: userID, LessonID: lesson.ID, ModuleID: lesson.ModuleID}
		created := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&completion)
		if created.Error != nil {
			return created.Error
		}
		if created.RowsAffected == 0 {
			return errAlreadyCompleted
		}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "module_id"}},
			DoUpdates: clause.Assignments(map[string]any{"completed_lessons": gorm.Expr("user_module_progress.completed_lessons + 1")}),
		}).Create(&models.UserModuleProgress{UserID: userID, ModuleID: lesson.ModuleID, CompletedLessons: 1}).Error
	})
	if errors.Is(err, errAlreadyCompleted) {
		respond.JSON(w, http.StatusOK, map[string]any{"alreadyCompleted": true})
		return
	}
	if err != nil {
		log.Printf("Complete lesson error: %v", err)
		respond.Error(w, http.StatusInternalServerError, "Failed to complete lesson")
		return
	}

	respond.JSON(w, http.StatusOK, map[string]any{
		"message":         "Lesson completed",
		"pointsEarned":    LessonPoints,
		"points":          res.Points,
		"progress":        res.Progress,
		"newAchievements": nonNil(res.NewAchievements),
	})
}

func nonNil(a []models.Achievement) []models.Achievement {
	if a == nil {
		return []models.Achievement{}
	}
	return a
}

func (h *Handler) GetProgress(w http.ResponseWriter, r *http.Request) {
	progress, err := h.Gamification.EnsureProgress(r.Context(), authentication.UserID(r.Context()))
	if err != nil {
		log.Printf("Progress error: %v", err)
		respond.Error(w, http.StatusInternalServerError, "Failed to fetch progress")
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{"progress": progress})
}

func (h *Handler) OverallProgress(w http.ResponseWriter, r *http.Request) {
	progress, err := h.Gamification.EnsureProgress(r.Context(), authentication.UserID(r.Context()))
	if err != nil {
		log.Printf("Overall progress error: %v", err)
		respond.Error(w, http.StatusInternalServerError, "Failed to fetch progress")
		return
	}
	overall := 0
	if progress.TotalLessons > 0 {
		overall = int(math.Round(float64(progress.CompletedLessons) * 100 / float64(progress.TotalLessons)))
	}
	respond.JSON(w, http.StatusOK, map[string]any{
		"overallCompletion": overall,
		"lessonsCompleted":  progress.CompletedLessons,
		"hoursStudied":      float64(progress.CompletedLessons) * 0.5,
	})
}
