package catalog

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"fintrek-backend/models"
)

// Database reads the catalog from the application's own tables.
type Database struct {
	DB *gorm.DB
}

func NewDatabase(db *gorm.DB) *Database {
	return &Database{DB: db}
}

func (d *Database) first(ctx context.Context, dst any, id string) error {
	err := d.DB.WithContext(ctx).First(dst, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func (d *Database) ListModules(ctx context.Context) ([]models.LearningModule, error) {
	var modules []models.LearningModule
	err := d.DB.WithContext(ctx).Order("order_index").Order("id").Find(&modules).Error
	return modules, err
}

func (d *Database) GetModule(ctx context.Context, id string) (models.LearningModule, error) {
	var m models.LearningModule
	err := d.first(ctx, &m, id)
	return m, err
}

func (d *Database) ListLessons(ctx context.Context, moduleID string) ([]models.Lesson, error) {
	var lessons []models.Lesson
	err := d.DB.WithContext(ctx).Where("module_id = ?", moduleID).Order("order_index").Find(&lessons).Error
	return lessons, err
}

func (d *Database) GetLesson(ctx context.Context, id string) (models.Lesson, error) {
	var l models.Lesson
	err := d.first(ctx, &l, id)
	return l, err
}

func (d *Database) ListQuizzes(ctx context.Context, moduleID string) ([]models.Quiz, error) {
	var quizzes []models.Quiz
	q := d.DB.WithContext(ctx).Order("created_at").Order("id")
	if moduleID != "" {
		q = q.Where("module_id = ?", moduleID)
	}
	err := q.Find(&quizzes).Error
	return quizzes, err
}

func (d *Database) ListDailyQuizzes(ctx context.Context) ([]models.Quiz, error) {
	var quizzes []models.Quiz
	err := d.DB.WithContext(ctx).Where("is_daily = ?", true).Order("id").Find(&quizzes).Error
	return quizzes, err
}

func (d *Database) GetQuiz(ctx context.Context, id string) (models.Quiz, error) {
	var q models.Quiz
	err := d.first(ctx, &q, id)
	return q, err
}

func (d *Database) ListQuestions(ctx context.Context, quizID string) ([]models.QuizQuestion, error) {
	var questions []models.QuizQuestion
	err := d.DB.WithContext(ctx).Where("quiz_id = ?", quizID).Order("order_index").Find(&questions).Error
	return questions, err
}

func (d *Database) ListAchievements(ctx context.Context) ([]models.Achievement, error) {
	var achievements []models.Achievement
	err := d.DB.WithContext(ctx).Order("created_at").Order("id").Find(&achievements).Error
	return achievements, err
}
