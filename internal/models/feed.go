package models

import "time"

// FeedItem is the denormalized read model served by the feed endpoints.
type FeedItem struct {
	ID        uint      `json:"id"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	ParentID  *uint     `json:"parent_id"`
	UserID    *uint     `json:"-"`
	Username  string    `json:"username"`
	Avatar    *string   `json:"avatar"`
	LikeCount int64     `json:"like_count"`
}
