package models

import "time"

type LearningModule struct {
	Base
	Title         string    `gorm:"not null" json:"title"`
	Description   string    `gorm:"type:text" json:"description"`
	Icon          string    `json:"icon"`
	Color         string    `json:"color"`
	Lessons       int       `gorm:"not null;default:0" json:"lessons"`
	Difficulty    string    `gorm:"not null;default:Beginner" json:"difficulty"`
	EstimatedTime string    `json:"estimatedTime"`
	Topics        []string  `gorm:"serializer:json" json:"topics"`
	OrderIndex    int       `gorm:"not null;default:0;index" json:"orderIndex"`
	IsUnlocked    bool      `gorm:"not null" json:"isUnlocked"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type Lesson struct {
	Base
	ModuleID   string `gorm:"index;type:varchar(36);not null" json:"moduleId"`
	OrderIndex int    `gorm:"not null;default:0" json:"orderIndex"`
	Title      string `gorm:"not null" json:"title"`
	Duration   string `json:"duration"`
	Type       string `gorm:"not null;default:reading" json:"type"` // video, interactive, reading
	Content    string `gorm:"type:text" json:"content"`
	VideoURL   string `json:"videoUrl,omitempty"`
}

type UserModuleProgress struct {
	Base
	UserID           string    `gorm:"uniqueIndex:idx_user_module;type:varchar(36);not null" json:"userId"`
	ModuleID         string    `gorm:"uniqueIndex:idx_user_module;type:varchar(36);not null" json:"moduleId"`
	CompletedLessons int       `gorm:"not null;default:0" json:"completedLessons"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

func (UserModuleProgress) TableName() string { return "user_module_progress" }

type LessonCompletion struct {
	Base
	UserID   string `gorm:"uniqueIndex:idx_user_lesson;type:varchar(36);not null" json:"userId"`
	LessonID string `gorm:"uniqueIndex:idx_user_lesson;type:varchar(36);not null" json:"lessonId"`
	ModuleID string `gorm:"index;type:varchar(36);not null" json:"moduleId"`
}
