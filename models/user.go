package models

import (
	"strings"
	"time"
)

const (
	ProviderLocal  = "local"
	ProviderGoogle = "google"
)

// User is the account row; it also carries the public profile fields.
type User struct {
	Base
	Email        string     `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string     `gorm:"column:password_hash" json:"-"`
	FirstName    string     `json:"firstName"`
	LastName     string     `json:"lastName"`
	Name         string     `json:"name"`
	AvatarURL    string     `json:"avatarUrl"`
	Provider     string     `gorm:"not null;default:local" json:"provider"`
	GoogleID     *string    `gorm:"uniqueIndex" json:"-"`
	LastSeenAt   *time.Time `json:"-"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// DisplayName picks the best name to show for the user.
func (u User) DisplayName() string {
	if n := strings.TrimSpace(u.Name); n != "" {
		return n
	}
	if full := strings.TrimSpace(u.FirstName + " " + u.LastName); full != "" {
		return full
	}
	if at := strings.Index(u.Email, "@"); at > 0 {
		return u.Email[:at]
	}
	return FallbackName(u.ID)
}

// FallbackName is used when nothing better is known about an author.
func FallbackName(userID string) string {
	short := userID
	if len(short) > 8 {
		short = short[:8]
	}
	return "User " + short
}
