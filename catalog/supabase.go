package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/supabase-community/postgrest-go"
	"github.com/supabase-community/supabase-go"

	"fintrek-backend/models"
)

// Supabase reads the catalog from a hosted Supabase project through PostgREST.
type Supabase struct {
	client *supabase.Client
}

func NewSupabase(url, key string) (*Supabase, error) {
	client, err := supabase.NewClient(url, key, nil)
	if err != nil {
		return nil, fmt.Errorf("supabase client: %w", err)
	}
	return &Supabase{client: client}, nil
}

var ascending = &postgrest.OrderOpts{Ascending: true}

type moduleRow struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Icon          string    `json:"icon"`
	Color         string    `json:"color"`
	Lessons       int       `json:"lessons"`
	Difficulty    string    `json:"difficulty"`
	EstimatedTime string    `json:"estimated_time"`
	Topics        []string  `json:"topics"`
	OrderIndex    int       `json:"order_index"`
	IsUnlocked    bool      `json:"is_unlocked"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (r moduleRow) model() models.LearningModule {
	return models.LearningModule{
		Base:          models.Base{ID: r.ID, CreatedAt: r.CreatedAt},
		Title:         r.Title,
		Description:   r.Description,
		Icon:          r.Icon,
		Color:         r.Color,
		Lessons:       r.Lessons,
		Difficulty:    r.Difficulty,
		EstimatedTime: r.EstimatedTime,
		Topics:        r.Topics,
		OrderIndex:    r.OrderIndex,
		IsUnlocked:    r.IsUnlocked,
		UpdatedAt:     r.UpdatedAt,
	}
}

type lessonRow struct {
	ID         string    `json:"id"`
	ModuleID   string    `json:"module_id"`
	OrderIndex int       `json:"order_index"`
	Title      string    `json:"title"`
	Duration   string    `json:"duration"`
	Type       string    `json:"type"`
	Content    string    `json:"content"`
	VideoURL   string    `json:"video_url"`
	CreatedAt  time.Time `json:"created_at"`
}

func (r lessonRow) model() models.Lesson {
	return models.Lesson{
		Base:       models.Base{ID: r.ID, CreatedAt: r.CreatedAt},
		ModuleID:   r.ModuleID,
		OrderIndex: r.OrderIndex,
		Title:      r.Title,
		Duration:   r.Duration,
		Type:       r.Type,
		Content:    r.Content,
		VideoURL:   r.VideoURL,
	}
}

type quizRow struct {
	ID                string    `json:"id"`
	ModuleID          *string   `json:"module_id"`
	Title             string    `json:"title"`
	Description       string    `json:"description"`
	IsDaily           bool      `json:"is_daily"`
	PointsPerQuestion int       `json:"points_per_question"`
	TimeLimit         int       `json:"time_limit"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func (r quizRow) model() models.Quiz {
	q := models.Quiz{
		Base:              models.Base{ID: r.ID, CreatedAt: r.CreatedAt},
		ModuleID:          r.ModuleID,
		Title:             r.Title,
		Description:       r.Description,
		IsDaily:           r.IsDaily,
		PointsPerQuestion: r.PointsPerQuestion,
		TimeLimit:         r.TimeLimit,
		UpdatedAt:         r.UpdatedAt,
	}
	if q.PointsPerQuestion <= 0 {
		q.PointsPerQuestion = models.DefaultPointsPerQuestion
	}
	return q
}

type questionRow struct {
	ID            string    `json:"id"`
	QuizID        string    `json:"quiz_id"`
	Question      string    `json:"question"`
	Options       []string  `json:"options"`
	CorrectAnswer int       `json:"correct_answer"`
	Explanation   string    `json:"explanation"`
	OrderIndex    int       `json:"order_index"`
	CreatedAt     time.Time `json:"created_at"`
}

func (r questionRow) model() models.QuizQuestion {
	return models.QuizQuestion{
		Base:          models.Base{ID: r.ID, CreatedAt: r.CreatedAt},
		QuizID:        r.QuizID,
		Question:      r.Question,
		Options:       r.Options,
		CorrectAnswer: r.CorrectAnswer,
		Explanation:   r.Explanation,
		OrderIndex:    r.OrderIndex,
	}
}

type achievementRow struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	Type            string    `json:"type"`
	Icon            string    `json:"icon"`
	PointsRequired  *int      `json:"points_required"`
	StreakRequired  *int      `json:"streak_required"`
	LessonsRequired *int      `json:"lessons_required"`
	CreatedAt       time.Time `json:"created_at"`
}

func (r achievementRow) model() models.Achievement {
	return models.Achievement{
		Base:            models.Base{ID: r.ID, CreatedAt: r.CreatedAt},
		Title:           r.Title,
		Description:     r.Description,
		Type:            r.Type,
		Icon:            r.Icon,
		PointsRequired:  r.PointsRequired,
		StreakRequired:  r.StreakRequired,
		LessonsRequired: r.LessonsRequired,
	}
}

func (s *Supabase) ListModules(ctx context.Context) ([]models.LearningModule, error) {
	var rows []moduleRow
	if _, err := s.client.From("learning_modules").Select("*", "", false).
		Order("order_index", ascending).
		ExecuteTo(&rows); err != nil {
		return nil, fmt.Errorf("list learning_modules: %w", err)
	}
	out := make([]models.LearningModule, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.model())
	}
	return out, nil
}

func (s *Supabase) GetModule(ctx context.Context, id string) (models.LearningModule, error) {
	var rows []moduleRow
	if _, err := s.client.From("learning_modules").Select("*", "", false).
		Eq("id", id).Limit(1, "").
		ExecuteTo(&rows); err != nil {
		return models.LearningModule{}, fmt.Errorf("get learning_module %s: %w", id, err)
	}
	if len(rows) == 0 {
		return models.LearningModule{}, ErrNotFound
	}
	return rows[0].model(), nil
}

func (s *Supabase) ListLessons(ctx context.Context, moduleID string) ([]models.Lesson, error) {
	var rows []lessonRow
	if _, err := s.client.From("lessons").Select("*", "", false).
		Eq("module_id", moduleID).
		Order("order_index", ascending).
		ExecuteTo(&rows); err != nil {
		return nil, fmt.Errorf("list lessons: %w", err)
	}
	out := make([]models.Lesson, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.model())
	}
	return out, nil
}

func (s *Supabase) GetLesson(ctx context.Context, id string) (models.Lesson, error) {
	var rows []lessonRow
	if _, err := s.client.From("lessons").Select("*", "", false).
		Eq("id", id).Limit(1, "").
		ExecuteTo(&rows); err != nil {
		return models.Lesson{}, fmt.Errorf("get lesson %s: %w", id, err)
	}
	if len(rows) == 0 {
		return models.Lesson{}, ErrNotFound
	}
	return rows[0].model(), nil
}

func (s *Supabase) ListQuizzes(ctx context.Context, moduleID string) ([]models.Quiz, error) {
	var rows []quizRow
	q := s.client.From("quizzes").Select("*", "", false)
	if moduleID != "" {
		q = q.Eq("module_id", moduleID)
	}
	if _, err := q.Order("created_at", ascending).ExecuteTo(&rows); err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	return quizModels(rows), nil
}

func (s *Supabase) ListDailyQuizzes(ctx context.Context) ([]models.Quiz, error) {
	var rows []quizRow
	if _, err := s.client.From("quizzes").Select("*", "", false).
		Eq("is_daily", "true").
		Order("id", ascending).
		ExecuteTo(&rows); err != nil {
		return nil, fmt.Errorf("list daily quizzes: %w", err)
	}
	return quizModels(rows), nil
}

func quizModels(rows []quizRow) []models.Quiz {
	out := make([]models.Quiz, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.model())
	}
	return out
}

func (s *Supabase) GetQuiz(ctx context.Context, id string) (models.Quiz, error) {
	var rows []quizRow
	if _, err := s.client.From("quizzes").Select("*", "", false).
		Eq("id", id).Limit(1, "").
		ExecuteTo(&rows); err != nil {
		return models.Quiz{}, fmt.Errorf("get quiz %s: %w", id, err)
	}
	if len(rows) == 0 {
		return models.Quiz{}, ErrNotFound
	}
	return rows[0].model(), nil
}

func (s *Supabase) ListQuestions(ctx context.Context, quizID string) ([]models.QuizQuestion, error) {
	var rows []questionRow
	if _, err := s.client.From("quiz_questions").Select("*", "", false).
		Eq("quiz_id", quizID).
		Order("order_index", ascending).
		ExecuteTo(&rows); err != nil {
		return nil, fmt.Errorf("list quiz_questions: %w", err)
	}
	out := make([]models.QuizQuestion, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.model())
	}
	return out, nil
}

func (s *Supabase) ListAchievements(ctx context.Context) ([]models.Achievement, error) {
	var rows []achievementRow
	if _, err := s.client.From("achievements").Select("*", "", false).
		Order("created_at", ascending).
		ExecuteTo(&rows); err != nil {
		return nil, fmt.Errorf("list achievements: %w", err)
	}
	out := make([]models.Achievement, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.model())
	}
	return out, nil
}
