// Package service implements the application's business rules on top of the repositories.
package service

import (
	"context"
	"strings"
	"sync"

	"murmur/internal/middleware"
	"murmur/internal/models"
	"murmur/internal/repository"
	"murmur/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

const invalidCredentialsMessage = "Invalid username or password"

type IdentityService struct {
	users      repository.UserRepository
	bcryptCost int

	dummyOnce sync.Once
	dummyHash []byte
}

type RegisterInput struct {
	Username string
	Password string
	Bio      string
}

type UpdateProfileInput struct {
	UserID uint
	Bio    *string
	Avatar *string
}

// NewIdentityService creates the identity service. A zero cost uses bcrypt.DefaultCost.
func NewIdentityService(users repository.UserRepository, bcryptCost int) *IdentityService {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &IdentityService{users: users, bcryptCost: bcryptCost}
}

// Register creates an account. Usernames are unique and case-sensitive.
func (s *IdentityService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" || in.Password == "" {
		return nil, models.NewValidationError("Username and password are required")
	}
	if err := validation.ValidateUsername(username); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateBio(in.Bio); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		return nil, models.NewConflictError("Username already taken")
	} else if !models.IsCode(err, models.CodeNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Username: username,
		Password: string(hash),
		Bio:      in.Bio,
	}
	// The unique index still decides when two registrations race past the lookup.
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	middleware.RegistrationsTotal.Inc()
	return user, nil
}

// Authenticate verifies credentials. Unknown users and wrong passwords produce the same
// error, and both paths pay for one bcrypt comparison.
func (s *IdentityService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if !models.IsCode(err, models.CodeNotFound) {
			middleware.LoginsTotal.WithLabelValues("error").Inc()
			return nil, err
		}
		_ = bcrypt.CompareHashAndPassword(s.dummy(), []byte(password))
		middleware.LoginsTotal.WithLabelValues("failure").Inc()
		return nil, models.NewUnauthorizedError(invalidCredentialsMessage)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		middleware.LoginsTotal.WithLabelValues("failure").Inc()
		return nil, models.NewUnauthorizedError(invalidCredentialsMessage)
	}

	middleware.LoginsTotal.WithLabelValues("success").Inc()
	return user, nil
}

func (s *IdentityService) dummy() []byte {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("murmur-timing-equalizer"), s.bcryptCost)
	})
	return s.dummyHash
}

// UpdateProfile applies a partial update. The caller must already have checked
// that in.UserID is the session's own identity.
func (s *IdentityService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	if in.Bio != nil {
		if err := validation.ValidateBio(*in.Bio); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
	}
	return s.users.UpdateProfile(ctx, in.UserID, in.Bio, in.Avatar)
}

func (s *IdentityService) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.users.GetByUsername(ctx, username)
}

func (s *IdentityService) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.users.GetByID(ctx, id)
}
