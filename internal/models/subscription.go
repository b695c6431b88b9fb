package models

import "time"

// Subscription is an anonymous browser push endpoint with its encryption keys.
type Subscription struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Endpoint  string    `gorm:"type:text;uniqueIndex;not null" json:"endpoint"`
	P256dh    string    `gorm:"column:p256dh;not null" json:"p256dh"`
	Auth      string    `gorm:"not null" json:"auth"`
	CreatedAt time.Time `json:"created_at"`
}
