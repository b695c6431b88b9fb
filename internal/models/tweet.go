package models

import "time"

// Tweet is a short text post. A nil UserID marks an anonymous tweet; a non-nil
// ParentID makes it a reply. ParentID is never checked for existence.
type Tweet struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	UserID    *uint     `gorm:"index" json:"user_id"`
	ParentID  *uint     `gorm:"index" json:"parent_id"`
	CreatedAt time.Time `gorm:"autoCreateTime:false;not null;index" json:"timestamp"`
}
