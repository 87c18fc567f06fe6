package quizzes

import (
	"errors"
	"fmt"
	"log"
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
	Now          func() time.Time
}

func (h *Handler) now() time.Time {
	if h.Now != nil {
		return h.Now().UTC()
	}
	return time.Now().UTC()
}

// publicQuestion hides the answer key from quiz takers.
type publicQuestion struct {
	ID         string   `json:"id"`
	Question   string   `json:"question"`
	Options    []string `json:"options"`
	OrderIndex int      `json:"orderIndex"`
}

type quizPayload struct {
	models.Quiz
	Questions []publicQuestion `json:"questions"`
}

func (h *Handler) ListQuizzes(w http.ResponseWriter, r *http.Request) {
	quizzes, err := h.Catalog.ListQuizzes(r.Context(), strings.TrimSpace(r.URL.Query().Get("moduleId")))
	if err != nil {
		log.Printf("Quizzes error: %v", err)
		respond.Error(w, http.StatusInternalServerError, "Failed to fetch quizzes")
		return
	}
	if quizzes == nil {
		quizzes = []models.Quiz{}
	}
	respond.JSON(w, http.StatusOK, map[string]any{"quizzes": quizzes})
}

// DailyQuiz rotates through the daily quizzes by day of the year.
func (h *Handler) DailyQuiz(w http.ResponseWriter, r *http.Request) {
	daily, err := h.Catalog.ListDailyQuizzes(r.Context())
	if err != nil {
		log.Printf("Daily quiz error: %v", err)
		respond.Error(w, http.StatusInternalServerError, "Failed to fetch daily quiz")
		return
	}
	if len(daily) == 0 {
		respond.Error(w, http.StatusNotFound, "No daily quiz available")
		return
	}
	h.writeQuiz(w, r, daily[h.now().YearDay()%len(daily)])
}

func (h *Handler) GetQuiz(w http.ResponseWriter, r *http.Request) {
	quiz, err := h.Catalog.GetQuiz(r.Context(), r.PathValue("id"))
	if errors.Is(err, catalog.ErrNotFound) {
		respond.Error(w, http.StatusNotFound, "Quiz not found")
		return
	}
	if err != nil {
		log.Printf("Quiz error: %v", err)
		respond.Error(w, http.StatusInternalServerError, "Failed to fetch quiz")
		return
	}
	h.writeQuiz(w, r, quiz)
}

func (h *Handler) writeQuiz(w http.ResponseWriter, r *http.Request, quiz models.Quiz) {
	questions, err := h.Catalog.ListQuestions(r.Context(), quiz.ID)
	if err != nil {
		log.Printf("Quiz error: questions: %v", err)
		respond.Error(w, http.StatusInternalServerError, "Failed to fetch quiz")
		return
	}
	public := make([]publicQuestion, 0, len(questions))
	for _, q := range questions {
		public = append(public, publicQuestion{ID: q.ID, Question: q.Question, Options: q.Options, OrderIndex: q.OrderIndex})
	}
	respond.JSON(w, http.StatusOK, map[string]any{"quiz": quizPayload{Quiz: quiz, Questions: public}})
}

type submitRequest struct {
	Answers []int `json:"answers"`
}

type answerResult struct {
	QuestionID    string `json:"questionId"`
	Selected      int    `json:"selected"`
	Correct       bool   `json:"correct"`
	CorrectAnswer int    `json:"correctAnswer"`
	Explanation   string `json:"explanation"`
}

// SubmitQuiz scores the answers, stores the result and awards points per correct answer.
func (h *Handler) SubmitQuiz(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := authentication.UserID(ctx)

	var req submitRequest
	if err := respond.DecodeJSON(w, r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	quiz, err := h.Catalog.GetQuiz(ctx, r.PathValue("id"))
	if errors.Is(err, catalog.ErrNotFound) {
		respond.Error(w, http.StatusNotFound, "Quiz not found")
		return
	}
	if err != nil {
		log.Printf("Submit quiz error: %v", err)
		respond.Error(w, http.StatusInternalServerError, "Failed to submit quiz")
		return
	}
	questions, err := h.Catalog.ListQuestions(ctx, quiz.ID)
	if err != nil {
		log.Printf("Submit quiz error: questions: %v", err)
		respond.Error(w, http.StatusInternalServerError, "Failed to submit quiz")
		return
	}
	if len(questions) == 0 {
		respond.Error(w, http.StatusBadRequest, "Quiz has no questions")
		return
	}
	if len(req.Answers) != len(questions) {
		respond.ValidationFailed(w, []respond.FieldError{{
			Field:   "answers",
			Message: fmt.Sprintf("must contain %d answers", len(questions)),
		}})
		return
	}

	score := 0
	results := make([]answerResult, 0, len(questions))
	for i, q := range questions {
		correct := req.Answers[i] == q.CorrectAnswer
		if correct {
			score++
		}
		results = append(results, answerResult{
			QuestionID:    q.ID,
			Selected:      req.Answers[i],
			Correct:       correct,
			CorrectAnswer: q.CorrectAnswer,
			Explanation:   q.Explanation,
		})
	}

	perQuestion := quiz.PointsPerQuestion
	if perQuestion <= 0 {
		perQuestion = models.DefaultPointsPerQuestion
	}
	earned := score * perQuestion
	activity := fmt.Sprintf("Completed quiz with %d/%d correct", score, len(questions))
	if score == len(questions) {
		activity = "Perfect score on quiz"
	}

	result := models.QuizResult{
		UserID:         userID,
		QuizID:         quiz.ID,
		Score:          score,
		TotalQuestions: len(questions),
		PointsEarned:   earned,
		CompletedAt:    h.now(),
	}
	award := services.Award{UserID: userID, Points: earned, Activity: activity, ActivityType: models.ActivityQuiz}
	res, err := h.Gamification.Apply(ctx, award, func(tx *gorm.DB) error {
		return tx.Create(&result).Error
	})
	if err != nil {
		log.Printf("Submit quiz error: %v", err)
		respond.Error(w, http.StatusInternalServerError, "Failed to submit quiz")
		return
	}

	achievements := res.NewAchievements
	if achievements == nil {
		achievements = []models.Achievement{}
	}
	respond.JSON(w, http.StatusOK, map[string]any{
		"result":          result,
		"score":           score,
		"totalQuestions":  len(questions),
		"pointsEarned":    earned,
		"answers":         results,
		"totalPoints":     res.Points.TotalPoints,
		"newAchievements": achievements,
	})
}

func (h *Handler) ListResults(w http.ResponseWriter, r *http.Request) {
	results := []models.QuizResult{}
	err := h.DB.WithContext(r.Context()).
		Where("user_id = ?", authentication.UserID(r.Context())).
		Order("completed_at DESC").
		Find(&results).Error
	if err != nil {
		log.Printf("Quiz results error: %v", err)
		respond.Error(w, http.StatusInternalServerError, "Failed to fetch quiz results")
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{"results": results})
}
