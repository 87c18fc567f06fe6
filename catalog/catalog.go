// Package catalog serves the read-only learning content: modules, lessons,
// quizzes, questions and achievements. The content lives either in the
// application database or in a hosted Supabase project.
package catalog

import (
	"context"
	"errors"

	"fintrek-backend/models"
)

var ErrNotFound = errors.New("catalog: not found")

type Catalog interface {
	ListModules(ctx context.Context) ([]models.LearningModule, error)
	GetModule(ctx context.Context, id string) (models.LearningModule, error)
	ListLessons(ctx context.Context, moduleID string) ([]models.Lesson, error)
	GetLesson(ctx context.Context, id string) (models.Lesson, error)
	// ListQuizzes returns every quiz, or only the module's when moduleID is set.
	ListQuizzes(ctx context.Context, moduleID string) ([]models.Quiz, error)
	ListDailyQuizzes(ctx context.Context) ([]models.Quiz, error)
	GetQuiz(ctx context.Context, id string) (models.Quiz, error)
	ListQuestions(ctx context.Context, quizID string) ([]models.QuizQuestion, error)
	ListAchievements(ctx context.Context) ([]models.Achievement, error)
}

// TotalLessons sums the lesson counts of every module.
func TotalLessons(ctx context.Context, c Catalog) (int, error) {
	modules, err := c.ListModules(ctx)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, m := range modules {
		total += m.Lessons
	}
	return total, nil
}
