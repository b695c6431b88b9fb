package repository

import (
	"context"

	"murmur/internal/models"

	"gorm.io/gorm"
)

// TweetRepository defines persistence operations for tweets.
type TweetRepository interface {
	Create(ctx context.Context, tweet *models.Tweet) error
	GetByID(ctx context.Context, id uint) (*models.Tweet, error)
	Delete(ctx context.Context, id uint) error
	ListAllByRecency(ctx context.Context) ([]models.Tweet, error)
	ListByAuthor(ctx context.Context, userID uint) ([]models.Tweet, error)
}

type tweetRepository struct {
	db *gorm.DB
}

// NewTweetRepository creates a new tweet repository
func NewTweetRepository(db *gorm.DB) TweetRepository {
	return &tweetRepository{db: db}
}

func (r *tweetRepository) Create(ctx context.Context, tweet *models.Tweet) error {
	if err := r.db.WithContext(ctx).Create(tweet).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *tweetRepository) GetByID(ctx context.Context, id uint) (*models.Tweet, error) {
	var tweet models.Tweet
	if err := r.db.WithContext(ctx).First(&tweet, id).Error; err != nil {
		return nil, mapLookupError(err, "Tweet", id)
	}
	return &tweet, nil
}

// Delete removes the tweet and its likes in one transaction. Replies are left
// in place with their parent_id pointing at the removed row.
func (r *tweetRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tweet_id = ?", id).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.Tweet{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return mapLookupError(err, "Tweet", id)
	}
	return nil
}

func (r *tweetRepository) ListAllByRecency(ctx context.Context) ([]models.Tweet, error) {
	tweets := []models.Tweet{}
	if err := byRecency(r.db.WithContext(ctx)).Find(&tweets).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return tweets, nil
}

func (r *tweetRepository) ListByAuthor(ctx context.Context, userID uint) ([]models.Tweet, error) {
	tweets := []models.Tweet{}
	if err := byRecency(r.db.WithContext(ctx)).Where("user_id = ?", userID).Find(&tweets).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return tweets, nil
}

// byRecency orders newest first; equal timestamps fall back to the later insert.
func byRecency(db *gorm.DB) *gorm.DB {
	return db.Order("tweets.created_at DESC").Order("tweets.id DESC")
}
