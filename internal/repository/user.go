package repository

import (
	"context"

	"murmur/internal/models"

	"gorm.io/gorm"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	UpdateProfile(ctx context.Context, id uint, bio, avatar *string) (*models.User, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueViolation(err) {
			return models.NewConflictError("Username already taken")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, mapLookupError(err, "User", id)
	}
	return &user, nil
}

// GetByUsername matches the username exactly; lookups are case-sensitive.
func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, mapLookupError(err, "User", username)
	}
	return &user, nil
}

// UpdateProfile writes only the non-nil fields and returns the fresh row.
func (r *userRepository) UpdateProfile(ctx context.Context, id uint, bio, avatar *string) (*models.User, error) {
	updates := map[string]interface{}{}
	if bio != nil {
		updates["bio"] = *bio
	}
	if avatar != nil {
		updates["avatar"] = *avatar
	}

	if len(updates) > 0 {
		result := r.db.WithContext(ctx).Model(&models.User{ID: id}).Updates(updates)
		if result.Error != nil {
			return nil, models.NewInternalError(result.Error)
		}
		if result.RowsAffected == 0 {
			return nil, models.NewNotFoundError("User", id)
		}
	}

	return r.GetByID(ctx, id)
}
