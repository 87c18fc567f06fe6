package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base gives every table a UUID primary key, matching the hosted schema.
type Base struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

func (b *Base) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}

// All lists every model for AutoMigrate.
func All() []any {
	return []any{
		&User{},
		&Points{},
		&Progress{},
		&LearningModule{},
		&Lesson{},
		&UserModuleProgress{},
		&LessonCompletion{},
		&Quiz{},
		&QuizQuestion{},
		&QuizResult{},
		&Discussion{},
		&DiscussionReply{},
		&DiscussionLike{},
		&Achievement{},
		&UserAchievement{},
		&UserActivity{},
		&Transaction{},
		&Notification{},
		&PushSubscription{},
	}
}
