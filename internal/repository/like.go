package repository

import (
	"context"

	"murmur/internal/models"

	"gorm.io/gorm"
)

// LikeRepository defines persistence operations for likes.
type LikeRepository interface {
	Exists(ctx context.Context, tweetID, userID uint) (bool, error)
	Create(ctx context.Context, tweetID, userID uint) error
	Delete(ctx context.Context, tweetID, userID uint) error
	Count(ctx context.Context, tweetID uint) (int64, error)
	Likers(ctx context.Context, tweetID uint) ([]string, error)
}

type likeRepository struct {
	db *gorm.DB
}

// NewLikeRepository creates a new like repository
func NewLikeRepository(db *gorm.DB) LikeRepository {
	return &likeRepository{db: db}
}

func (r *likeRepository) Exists(ctx context.Context, tweetID, userID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("tweet_id = ? AND user_id = ?", tweetID, userID).
		Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

// Create inserts a like. A concurrent duplicate surfaces as a CONFLICT error.
func (r *likeRepository) Create(ctx context.Context, tweetID, userID uint) error {
	like := models.Like{TweetID: tweetID, UserID: userID}
	if err := r.db.WithContext(ctx).Create(&like).Error; err != nil {
		if isUniqueViolation(err) {
			return models.NewConflictError("Tweet already liked")
		}
		return models.NewInternalError(err)
	}
	return nil
}

// Delete removes the like if present; deleting a missing like is not an error.
func (r *likeRepository) Delete(ctx context.Context, tweetID, userID uint) error {
	if err := r.db.WithContext(ctx).
		Where("tweet_id = ? AND user_id = ?", tweetID, userID).
		Delete(&models.Like{}).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *likeRepository) Count(ctx context.Context, tweetID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("tweet_id = ?", tweetID).
		Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

// Likers returns the usernames of users who liked the tweet, oldest like first.
func (r *likeRepository) Likers(ctx context.Context, tweetID uint) ([]string, error) {
	names := []string{}
	if err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Joins("JOIN users ON users.id = likes.user_id").
		Where("likes.tweet_id = ?", tweetID).
		Order("likes.created_at ASC").
		Order("likes.id ASC").
		Pluck("users.username", &names).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return names, nil
}
