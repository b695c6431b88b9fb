// Package seed creates demo data through the service layer, so seeded rows obey
// the same validation and uniqueness rules as real traffic. Development use only.
package seed

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"murmur/internal/middleware"
	"murmur/internal/models"
	"murmur/internal/repository"
	"murmur/internal/service"
	"murmur/internal/validation"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const maxFakeContentRunes = 280

// Options controls how much data is generated.
type Options struct {
	Users      int
	Tweets     int
	ReplyRatio float64 // share of tweets posted as replies
	MaxLikes   int     // per tweet
	Password   string  // shared by every seeded account
	MaxDays    int     // spread of tweet timestamps into the past
	Seed       int64   // 0 picks a time-based seed
}

// DefaultOptions returns a small, browsable data set.
func DefaultOptions() Options {
	return Options{
		Users:      10,
		Tweets:     50,
		ReplyRatio: 0.3,
		MaxLikes:   5,
		Password:   "password",
		MaxDays:    14,
	}
}

// Summary reports what a seeding run created.
type Summary struct {
	Users  int
	Tweets int
	Likes  int
}

// Seeder writes demo data into db.
type Seeder struct {
	db       *gorm.DB
	identity *service.IdentityService
	tweets   *service.TweetService
	likes    *service.LikeService
}

func NewSeeder(db *gorm.DB) *Seeder {
	users := repository.NewUserRepository(db)
	return &Seeder{
		db: db,
		// MinCost keeps large seeds fast; these accounts are not real.
		identity: service.NewIdentityService(users, bcrypt.MinCost),
		tweets:   service.NewTweetService(repository.NewTweetRepository(db), users, nil, nil),
		likes:    service.NewLikeService(repository.NewLikeRepository(db)),
	}
}

// ClearAll removes every row from the domain tables.
func (s *Seeder) ClearAll(ctx context.Context) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, table := range []string{"likes", "tweets", "subscriptions", "users"} {
			if err := tx.Exec("DELETE FROM " + table).Error; err != nil {
				return fmt.Errorf("clear %s: %w", table, err)
			}
		}
		return nil
	})
}

// Run creates users, tweets (some of them replies) and likes.
func (s *Seeder) Run(ctx context.Context, opts Options) (*Summary, error) {
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	faker := gofakeit.New(seed)
	r := rand.New(rand.NewSource(seed))

	if opts.Password == "" {
		opts.Password = DefaultOptions().Password
	}
	if opts.MaxDays <= 0 {
		opts.MaxDays = 1
	}

	summary := &Summary{}

	users := make([]*models.User, 0, opts.Users)
	for attempts := 0; len(users) < opts.Users && attempts < opts.Users*5; attempts++ {
		user, err := s.identity.Register(ctx, service.RegisterInput{
			Username: fakeUsername(faker),
			Password: opts.Password,
			Bio:      faker.Sentence(8),
		})
		if models.IsCode(err, models.CodeConflict) {
			continue
		}
		if err != nil {
			return summary, fmt.Errorf("create user: %w", err)
		}
		users = append(users, user)
	}
	summary.Users = len(users)
	if len(users) == 0 {
		return summary, nil
	}

	// Timestamps are generated oldest first so replies never predate their parent.
	start := time.Now().Add(-time.Duration(opts.MaxDays) * 24 * time.Hour)
	step := time.Duration(opts.MaxDays) * 24 * time.Hour / time.Duration(opts.Tweets+1)

	tweetIDs := make([]uint, 0, opts.Tweets)
	for i := 0; i < opts.Tweets; i++ {
		at := start.Add(time.Duration(i+1) * step)
		s.tweets.WithClock(func() time.Time { return at })

		author := users[r.Intn(len(users))]
		in := service.PostTweetInput{
			AuthorID: &author.ID,
			Content:  fakeContent(faker),
		}
		if len(tweetIDs) > 0 && r.Float64() < opts.ReplyRatio {
			parent := tweetIDs[r.Intn(len(tweetIDs))]
			in.ParentID = &parent
		}

		tweet, err := s.tweets.PostTweet(ctx, in)
		if err != nil {
			return summary, fmt.Errorf("create tweet: %w", err)
		}
		tweetIDs = append(tweetIDs, tweet.ID)
		summary.Tweets++

		for _, liker := range r.Perm(len(users))[:r.Intn(min(opts.MaxLikes, len(users))+1)] {
			if _, err := s.likes.ToggleLike(ctx, users[liker].ID, tweet.ID); err != nil {
				return summary, fmt.Errorf("like tweet: %w", err)
			}
			summary.Likes++
		}
	}
	s.tweets.WithClock(time.Now)

	middleware.Logger.InfoContext(ctx, "seed complete",
		"users", summary.Users, "tweets", summary.Tweets, "likes", summary.Likes)
	return summary, nil
}

func fakeUsername(faker *gofakeit.Faker) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			return r
		}
		return -1
	}, faker.Username())
	if name == "" {
		name = "user"
	}
	if len(name) > validation.MaxUsernameLength {
		name = name[:validation.MaxUsernameLength]
	}
	return name
}

func fakeContent(faker *gofakeit.Faker) string {
	content := faker.Sentence(faker.Number(3, 25))
	if runes := []rune(content); len(runes) > maxFakeContentRunes {
		content = string(runes[:maxFakeContentRunes])
	}
	return content
}
