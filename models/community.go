package models

import "time"

const DefaultDiscussionCategory = "General"

type Discussion struct {
	Base
	UserID     string    `gorm:"index;type:varchar(36);not null" json:"userId"`
	Title      string    `gorm:"not null" json:"title"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	Category   string    `gorm:"not null;default:General" json:"category"`
	AuthorName string    `json:"authorName"`
	IsPinned   bool      `gorm:"not null;default:false" json:"isPinned"`
	UpdatedAt  time.Time `gorm:"index" json:"updatedAt"`
}

type DiscussionReply struct {
	Base
	DiscussionID string    `gorm:"index;type:varchar(36);not null" json:"discussionId"`
	UserID       string    `gorm:"index;type:varchar(36);not null" json:"userId"`
	AuthorName   string    `json:"authorName"`
	Content      string    `gorm:"type:text;not null" json:"content"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type DiscussionLike struct {
	Base
	DiscussionID string `gorm:"uniqueIndex:idx_discussion_like;type:varchar(36);not null" json:"discussionId"`
	UserID       string `gorm:"uniqueIndex:idx_discussion_like;type:varchar(36);not null" json:"userId"`
}
