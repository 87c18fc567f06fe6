package models

import "time"

type Points struct {
	Base
	UserID        string     `gorm:"uniqueIndex;type:varchar(36);not null" json:"userId"`
	TotalPoints   int        `gorm:"not null;default:0;index" json:"totalPoints"`
	CurrentStreak int        `gorm:"not null;default:0" json:"currentStreak"`
	LongestStreak int        `gorm:"not null;default:0" json:"longestStreak"`
	LastActiveOn  *time.Time `json:"lastActiveOn,omitempty"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

type Progress struct {
	Base
	UserID            string    `gorm:"uniqueIndex;type:varchar(36);not null" json:"userId"`
	CompletedLessons  int       `gorm:"not null;default:0" json:"completedLessons"`
	TotalLessons      int       `gorm:"not null;default:45" json:"totalLessons"`
	CurrentLevel      string    `gorm:"not null;default:'Beginner Trader'" json:"currentLevel"`
	NextLevelProgress int       `gorm:"not null;default:0" json:"nextLevelProgress"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

type Achievement struct {
	Base
	Title           string `gorm:"not null" json:"title"`
	Description     string `gorm:"type:text;not null" json:"description"`
	Type            string `gorm:"not null;default:bronze" json:"type"` // bronze, silver, gold, diamond
	Icon            string `json:"icon"`
	PointsRequired  *int   `json:"pointsRequired,omitempty"`
	StreakRequired  *int   `json:"streakRequired,omitempty"`
	LessonsRequired *int   `json:"lessonsRequired,omitempty"`
}

type UserAchievement struct {
	Base
	UserID        string    `gorm:"uniqueIndex:idx_user_achievement;type:varchar(36);not null" json:"userId"`
	AchievementID string    `gorm:"uniqueIndex:idx_user_achievement;type:varchar(36);not null" json:"achievementId"`
	EarnedAt      time.Time `json:"earnedAt"`
}

const (
	ActivityLesson      = "lesson"
	ActivityQuiz        = "quiz"
	ActivityAchievement = "achievement"
)

type UserActivity struct {
	Base
	UserID       string `gorm:"index;type:varchar(36);not null" json:"userId"`
	Activity     string `gorm:"not null" json:"activity"`
	Points       int    `gorm:"not null;default:0" json:"points"`
	ActivityType string `gorm:"not null;default:general" json:"activityType"`
}

func (UserActivity) TableName() string { return "user_activity" }
