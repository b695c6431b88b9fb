package seed

import (
	"context"
	"testing"

	"murmur/internal/models"
	"murmur/internal/testutil"
	"murmur/internal/validation"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeeder_Run(t *testing.T) {
	db := testutil.NewDB(t)
	s := NewSeeder(db)
	ctx := context.Background()

	summary, err := s.Run(ctx, Options{
		Users:      4,
		Tweets:     12,
		ReplyRatio: 0.5,
		MaxLikes:   3,
		Password:   "pw",
		MaxDays:    2,
		Seed:       42,
	})
	require.NoError(t, err)
	assert.Equal(t, 4, summary.Users)
	assert.Equal(t, 12, summary.Tweets)

	var users, tweets, likes int64
	require.NoError(t, db.Model(&models.User{}).Count(&users).Error)
	require.NoError(t, db.Model(&models.Tweet{}).Count(&tweets).Error)
	require.NoError(t, db.Model(&models.Like{}).Count(&likes).Error)
	assert.Equal(t, int64(4), users)
	assert.Equal(t, int64(12), tweets)
	assert.Equal(t, int64(summary.Likes), likes)

	var orphans int64
	require.NoError(t, db.Model(&models.Tweet{}).
		Where("parent_id IS NOT NULL AND parent_id NOT IN (SELECT id FROM tweets)").
		Count(&orphans).Error)
	assert.Zero(t, orphans)

	require.NoError(t, s.ClearAll(ctx))
	require.NoError(t, db.Model(&models.User{}).Count(&users).Error)
	assert.Zero(t, users)
}

func TestFakeUsername_AlwaysValid(t *testing.T) {
	faker := gofakeit.New(7)
	for i := 0; i < 50; i++ {
		name := fakeUsername(faker)
		assert.NoError(t, validation.ValidateUsername(name), name)
	}
}
