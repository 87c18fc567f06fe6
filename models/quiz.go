package models

import "time"

const DefaultPointsPerQuestion = 50

type Quiz struct {
	Base
	ModuleID          *string   `gorm:"index;type:varchar(36)" json:"moduleId,omitempty"`
	Title             string    `gorm:"not null" json:"title"`
	Description       string    `gorm:"type:text" json:"description"`
	IsDaily           bool      `gorm:"not null;default:false;index" json:"isDaily"`
	PointsPerQuestion int       `gorm:"not null;default:50" json:"pointsPerQuestion"`
	TimeLimit         int       `gorm:"not null;default:300" json:"timeLimit"` // seconds
	UpdatedAt         time.Time `json:"updatedAt"`
}

type QuizQuestion struct {
	Base
	QuizID        string   `gorm:"index;type:varchar(36);not null" json:"quizId"`
	Question      string   `gorm:"type:text;not null" json:"question"`
	Options       []string `gorm:"serializer:json" json:"options"`
	CorrectAnswer int      `gorm:"not null" json:"correctAnswer"`
	Explanation   string   `gorm:"type:text" json:"explanation"`
	OrderIndex    int      `gorm:"not null;default:0" json:"orderIndex"`
}

type QuizResult struct {
	Base
	UserID         string    `gorm:"index;type:varchar(36);not null" json:"userId"`
	QuizID         string    `gorm:"index;type:varchar(36);not null" json:"quizId"`
	Score          int       `gorm:"not null" json:"score"`
	TotalQuestions int       `gorm:"not null" json:"totalQuestions"`
	PointsEarned   int       `gorm:"not null;default:0" json:"pointsEarned"`
	CompletedAt    time.Time `gorm:"index" json:"completedAt"`
}
