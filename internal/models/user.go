// Package models contains data structures for the application's domain models.
package models

import "time"

// AnonymousDisplayName is shown for tweets whose author is null or no longer resolvable.
const AnonymousDisplayName = "anonymous"

// User represents a registered account.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"uniqueIndex;not null" json:"username"`
	Password  string    `gorm:"not null" json:"-"`
	Bio       string    `gorm:"not null;default:''" json:"bio"`
	Avatar    *string   `json:"avatar"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
