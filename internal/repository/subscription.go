package repository

import (
	"context"

	"murmur/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SubscriptionRepository defines persistence operations for push subscriptions.
type SubscriptionRepository interface {
	Upsert(ctx context.Context, sub *models.Subscription) error
	List(ctx context.Context) ([]models.Subscription, error)
}

type subscriptionRepository struct {
	db *gorm.DB
}

// NewSubscriptionRepository creates a new subscription repository
func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

// Upsert stores sub keyed by endpoint. Re-registering an endpoint replaces its keys
// and sub is refreshed from the stored row so the original ID is kept.
func (r *subscriptionRepository) Upsert(ctx context.Context, sub *models.Subscription) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "endpoint"}},
			DoUpdates: clause.AssignmentColumns([]string{"p256dh", "auth"}),
		}).Create(sub).Error; err != nil {
			return err
		}
		return tx.Where("endpoint = ?", sub.Endpoint).First(sub).Error
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *subscriptionRepository) List(ctx context.Context) ([]models.Subscription, error) {
	subs := []models.Subscription{}
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&subs).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return subs, nil
}
