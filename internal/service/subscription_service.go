package service

import (
	"context"
	"strings"

	"murmur/internal/models"
	"murmur/internal/repository"
)

type SubscriptionService struct {
	subs repository.SubscriptionRepository
}

type RegisterSubscriptionInput struct {
	Endpoint string
	P256dh   string
	Auth     string
}

func NewSubscriptionService(subs repository.SubscriptionRepository) *SubscriptionService {
	return &SubscriptionService{subs: subs}
}

// Register stores a push subscription. Subscriptions are anonymous and keyed by
// endpoint, so registering the same endpoint again refreshes its keys.
func (s *SubscriptionService) Register(ctx context.Context, in RegisterSubscriptionInput) (*models.Subscription, error) {
	sub := &models.Subscription{
		Endpoint: strings.TrimSpace(in.Endpoint),
		P256dh:   strings.TrimSpace(in.P256dh),
		Auth:     strings.TrimSpace(in.Auth),
	}
	if sub.Endpoint == "" || sub.P256dh == "" || sub.Auth == "" {
		return nil, models.NewValidationError("endpoint, keys.p256dh and keys.auth are required")
	}
	if !strings.HasPrefix(sub.Endpoint, "https://") && !strings.HasPrefix(sub.Endpoint, "http://") {
		return nil, models.NewValidationError("endpoint must be an http(s) URL")
	}

	if err := s.subs.Upsert(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

func (s *SubscriptionService) AllSubscriptions(ctx context.Context) ([]models.Subscription, error) {
	return s.subs.List(ctx)
}
