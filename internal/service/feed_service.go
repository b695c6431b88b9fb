package service

import (
	"context"

	"murmur/internal/models"
	"murmur/internal/repository"
)

// FeedService assembles the read-side feed. Every call reads through to the store.
type FeedService struct {
	feed repository.FeedRepository
}

func NewFeedService(feed repository.FeedRepository) *FeedService {
	return &FeedService{feed: feed}
}

// BuildFeed returns every tweet newest first with author and like data attached.
func (s *FeedService) BuildFeed(ctx context.Context) ([]models.FeedItem, error) {
	return nonNil(s.feed.List(ctx))
}

// BuildAuthorFeed is BuildFeed restricted to one author.
func (s *FeedService) BuildAuthorFeed(ctx context.Context, userID uint) ([]models.FeedItem, error) {
	return nonNil(s.feed.ListByAuthor(ctx, userID))
}

func nonNil(items []models.FeedItem, err error) ([]models.FeedItem, error) {
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []models.FeedItem{}
	}
	return items, nil
}
