package service

import (
	"context"

	"murmur/internal/middleware"
	"murmur/internal/models"
	"murmur/internal/repository"
)

type LikeService struct {
	likes repository.LikeRepository
}

// ToggleLikeResult is the like state after a toggle.
type ToggleLikeResult struct {
	LikeCount int64 `json:"like_count"`
	Liked     bool  `json:"liked"`
}

func NewLikeService(likes repository.LikeRepository) *LikeService {
	return &LikeService{likes: likes}
}

// ToggleLike flips userID's like on tweetID. Two consecutive calls restore the
// original state. The tweet itself is not checked for existence.
func (s *LikeService) ToggleLike(ctx context.Context, userID, tweetID uint) (*ToggleLikeResult, error) {
	if userID == 0 {
		return nil, models.NewUnauthorizedError("Authentication required")
	}

	liked, err := s.likes.Exists(ctx, tweetID, userID)
	if err != nil {
		return nil, err
	}

	if liked {
		if err := s.likes.Delete(ctx, tweetID, userID); err != nil {
			return nil, err
		}
	} else if err := s.likes.Create(ctx, tweetID, userID); err != nil {
		// A concurrent toggle inserted the same pair first; the like exists either way.
		if !models.IsCode(err, models.CodeConflict) {
			return nil, err
		}
	}

	count, err := s.likes.Count(ctx, tweetID)
	if err != nil {
		return nil, err
	}

	state := "liked"
	if liked {
		state = "unliked"
	}
	middleware.LikesToggledTotal.WithLabelValues(state).Inc()

	return &ToggleLikeResult{LikeCount: count, Liked: !liked}, nil
}

func (s *LikeService) LikeCount(ctx context.Context, tweetID uint) (int64, error) {
	return s.likes.Count(ctx, tweetID)
}

// Likers returns liker usernames, oldest like first.
func (s *LikeService) Likers(ctx context.Context, tweetID uint) ([]string, error) {
	return s.likes.Likers(ctx, tweetID)
}
