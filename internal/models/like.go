package models

import "time"

// Like records a user's like on a tweet.
// The combination of TweetID and UserID must be unique.
type Like struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	TweetID   uint      `gorm:"not null;uniqueIndex:idx_likes_tweet_user" json:"tweet_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_likes_tweet_user" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}
