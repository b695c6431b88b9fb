package service

import (
	"context"
	"time"
	"unicode/utf8"

	"murmur/internal/featureflags"
	"murmur/internal/middleware"
	"murmur/internal/models"
	"murmur/internal/notifications"
	"murmur/internal/repository"
	"murmur/internal/validation"
)

const pushBodyMaxRunes = 120

// Broadcaster fans a payload out to push subscribers.
type Broadcaster interface {
	Broadcast(ctx context.Context, p notifications.Payload) notifications.Result
}

type TweetService struct {
	tweets      repository.TweetRepository
	users       repository.UserRepository
	broadcaster Broadcaster
	flags       *featureflags.Manager
	now         func() time.Time
}

type PostTweetInput struct {
	AuthorID *uint
	Content  string
	ParentID *uint
}

// NewTweetService creates the tweet service. A nil broadcaster disables push fan-out;
// nil flags leave it ungated.
func NewTweetService(
	tweets repository.TweetRepository,
	users repository.UserRepository,
	broadcaster Broadcaster,
	flags *featureflags.Manager,
) *TweetService {
	return &TweetService{
		tweets:      tweets,
		users:       users,
		broadcaster: broadcaster,
		flags:       flags,
		now:         time.Now,
	}
}

// WithClock replaces the time source used for new tweets.
func (s *TweetService) WithClock(now func() time.Time) *TweetService {
	s.now = now
	return s
}

// PostTweet stores a trimmed tweet and then broadcasts it. Push delivery runs
// synchronously but its failures never fail the post.
func (s *TweetService) PostTweet(ctx context.Context, in PostTweetInput) (*models.Tweet, error) {
	content, err := validation.NormalizeTweetContent(in.Content)
	if err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	tweet := &models.Tweet{
		Content:   content,
		UserID:    in.AuthorID,
		ParentID:  in.ParentID,
		CreatedAt: s.now().UTC(),
	}
	if err := s.tweets.Create(ctx, tweet); err != nil {
		return nil, err
	}

	kind := "post"
	if tweet.ParentID != nil {
		kind = "reply"
	}
	middleware.TweetsPostedTotal.WithLabelValues(kind).Inc()

	s.broadcast(ctx, tweet)
	return tweet, nil
}

func (s *TweetService) broadcast(ctx context.Context, tweet *models.Tweet) {
	if s.broadcaster == nil {
		return
	}
	var authorID uint
	if tweet.UserID != nil {
		authorID = *tweet.UserID
	}
	if s.flags != nil && !s.flags.Enabled(featureflags.PushBroadcast, authorID) {
		return
	}

	title := "New tweet"
	if tweet.ParentID != nil {
		title = "New reply"
	}
	s.broadcaster.Broadcast(ctx, notifications.Payload{
		Title:   title,
		Body:    s.authorName(ctx, tweet.UserID) + ": " + truncateRunes(tweet.Content, pushBodyMaxRunes),
		TweetID: tweet.ID,
	})
}

func (s *TweetService) authorName(ctx context.Context, userID *uint) string {
	if userID == nil || s.users == nil {
		return models.AnonymousDisplayName
	}
	user, err := s.users.GetByID(ctx, *userID)
	if err != nil {
		return models.AnonymousDisplayName
	}
	return user.Username
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n-1]) + "…"
}

// DeleteTweet removes a tweet owned by requesterID. Anonymous tweets have no owner
// and cannot be deleted by anyone.
func (s *TweetService) DeleteTweet(ctx context.Context, requesterID, tweetID uint) error {
	tweet, err := s.tweets.GetByID(ctx, tweetID)
	if err != nil {
		return err
	}
	if tweet.UserID == nil || *tweet.UserID != requesterID {
		return models.NewForbiddenError("You can only delete your own tweets")
	}
	return s.tweets.Delete(ctx, tweetID)
}

func (s *TweetService) GetTweet(ctx context.Context, id uint) (*models.Tweet, error) {
	return s.tweets.GetByID(ctx, id)
}

func (s *TweetService) ListAllByRecency(ctx context.Context) ([]models.Tweet, error) {
	return s.tweets.ListAllByRecency(ctx)
}

func (s *TweetService) ListByAuthor(ctx context.Context, userID uint) ([]models.Tweet, error) {
	return s.tweets.ListByAuthor(ctx, userID)
}
