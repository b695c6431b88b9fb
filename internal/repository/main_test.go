package repository

import (
	"testing"
	"time"

	"murmur/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// setupMockDB returns a postgres-dialect GORM handle backed by sqlmock.
func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	return gormDB, mock
}

func createUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{Username: username, Password: "hash"}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createTweet(t *testing.T, db *gorm.DB, authorID *uint, content string, at time.Time) *models.Tweet {
	t.Helper()
	tweet := &models.Tweet{UserID: authorID, Content: content, CreatedAt: at}
	require.NoError(t, db.Create(tweet).Error)
	return tweet
}

func uintPtr(v uint) *uint { return &v }

func strPtr(s string) *string { return &s }
