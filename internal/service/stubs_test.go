package service

import (
	"context"
	"sync"

	"murmur/internal/models"
	"murmur/internal/notifications"
)

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	createFn        func(context.Context, *models.User) error
	getByIDFn       func(context.Context, uint) (*models.User, error)
	getByUsernameFn func(context.Context, string) (*models.User, error)
	updateProfileFn func(context.Context, uint, *string, *string) (*models.User, error)
}

func (s *userRepoStub) Create(ctx context.Context, u *models.User) error { return s.createFn(ctx, u) }
func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) UpdateProfile(ctx context.Context, id uint, bio, avatar *string) (*models.User, error) {
	return s.updateProfileFn(ctx, id, bio, avatar)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		createFn: func(_ context.Context, _ *models.User) error { return nil },
		getByIDFn: func(_ context.Context, id uint) (*models.User, error) {
			return nil, models.NewNotFoundError("User", id)
		},
		getByUsernameFn: func(_ context.Context, username string) (*models.User, error) {
			return nil, models.NewNotFoundError("User", username)
		},
		updateProfileFn: func(_ context.Context, id uint, _, _ *string) (*models.User, error) {
			return &models.User{ID: id}, nil
		},
	}
}

// tweetRepoStub is a stub for repository.TweetRepository.
type tweetRepoStub struct {
	createFn   func(context.Context, *models.Tweet) error
	getByIDFn  func(context.Context, uint) (*models.Tweet, error)
	deleteFn   func(context.Context, uint) error
	listFn     func(context.Context) ([]models.Tweet, error)
	byAuthorFn func(context.Context, uint) ([]models.Tweet, error)
}

func (s *tweetRepoStub) Create(ctx context.Context, t *models.Tweet) error { return s.createFn(ctx, t) }
func (s *tweetRepoStub) GetByID(ctx context.Context, id uint) (*models.Tweet, error) {
	return s.getByIDFn(ctx, id)
}
func (s *tweetRepoStub) Delete(ctx context.Context, id uint) error { return s.deleteFn(ctx, id) }
func (s *tweetRepoStub) ListAllByRecency(ctx context.Context) ([]models.Tweet, error) {
	return s.listFn(ctx)
}
func (s *tweetRepoStub) ListByAuthor(ctx context.Context, userID uint) ([]models.Tweet, error) {
	return s.byAuthorFn(ctx, userID)
}

func noopTweetRepo() *tweetRepoStub {
	return &tweetRepoStub{
		createFn: func(_ context.Context, t *models.Tweet) error {
			t.ID = 1
			return nil
		},
		getByIDFn: func(_ context.Context, id uint) (*models.Tweet, error) {
			return nil, models.NewNotFoundError("Tweet", id)
		},
		deleteFn:   func(_ context.Context, _ uint) error { return nil },
		listFn:     func(_ context.Context) ([]models.Tweet, error) { return []models.Tweet{}, nil },
		byAuthorFn: func(_ context.Context, _ uint) ([]models.Tweet, error) { return []models.Tweet{}, nil },
	}
}

// feedRepoStub is a stub for repository.FeedRepository.
type feedRepoStub struct {
	listFn     func(context.Context) ([]models.FeedItem, error)
	byAuthorFn func(context.Context, uint) ([]models.FeedItem, error)
}

func (s *feedRepoStub) List(ctx context.Context) ([]models.FeedItem, error) { return s.listFn(ctx) }
func (s *feedRepoStub) ListByAuthor(ctx context.Context, userID uint) ([]models.FeedItem, error) {
	return s.byAuthorFn(ctx, userID)
}

// broadcasterStub records every broadcast.
type broadcasterStub struct {
	mu       sync.Mutex
	payloads []notifications.Payload
}

func (b *broadcasterStub) Broadcast(_ context.Context, p notifications.Payload) notifications.Result {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.payloads = append(b.payloads, p)
	return notifications.Result{}
}

func (b *broadcasterStub) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.payloads)
}

func uintPtr(v uint) *uint { return &v }

func strPtr(s string) *string { return &s }
