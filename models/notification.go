package models

type Notification struct {
	Base
	UserID  string `gorm:"index;type:varchar(36);not null" json:"userId"`
	Message string `gorm:"type:text;not null" json:"message"`
	IsRead  bool   `gorm:"default:false" json:"isRead"`
}

type PushSubscription struct {
	Base
	UserID   string `gorm:"index;type:varchar(36);not null" json:"userId"`
	Endpoint string `gorm:"uniqueIndex;not null" json:"endpoint"`
	P256dh   string `gorm:"not null" json:"p256dh"`
	Auth     string `gorm:"not null" json:"auth"`
}
