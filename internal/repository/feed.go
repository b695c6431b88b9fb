package repository

import (
	"context"

	"murmur/internal/models"

	"gorm.io/gorm"
)

// FeedRepository builds the denormalized feed view straight from the tables.
type FeedRepository interface {
	List(ctx context.Context) ([]models.FeedItem, error)
	ListByAuthor(ctx context.Context, userID uint) ([]models.FeedItem, error)
}

type feedRepository struct {
	db *gorm.DB
}

// NewFeedRepository creates a new feed repository
func NewFeedRepository(db *gorm.DB) FeedRepository {
	return &feedRepository{db: db}
}

func (r *feedRepository) List(ctx context.Context) ([]models.FeedItem, error) {
	return r.scan(r.feedQuery(ctx))
}

func (r *feedRepository) ListByAuthor(ctx context.Context, userID uint) ([]models.FeedItem, error) {
	return r.scan(r.feedQuery(ctx).Where("tweets.user_id = ?", userID))
}

// feedQuery keeps tweets whose author is null or missing and tweets without likes.
// The like count is a correlated subquery, equivalent to a left join grouped by tweet.
func (r *feedRepository) feedQuery(ctx context.Context) *gorm.DB {
	return byRecency(r.db.WithContext(ctx).
		Table("tweets").
		Select("tweets.id, tweets.content, tweets.created_at AS timestamp, tweets.parent_id, tweets.user_id, "+
			"COALESCE(users.username, ?) AS username, users.avatar, "+
			"(SELECT COUNT(*) FROM likes WHERE likes.tweet_id = tweets.id) AS like_count",
			models.AnonymousDisplayName).
		Joins("LEFT JOIN users ON users.id = tweets.user_id"))
}

func (r *feedRepository) scan(q *gorm.DB) ([]models.FeedItem, error) {
	items := []models.FeedItem{}
	if err := q.Scan(&items).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return items, nil
}
