package server

import (
	"murmur/internal/models"
	"murmur/internal/service"

	"github.com/gofiber/fiber/v2"
)

type postTweetRequest struct {
	Content  string `json:"content" form:"content"`
	ParentID *uint  `json:"parent_id" form:"parent_id"`
}

// GetTweets handles GET /api/tweets and returns the whole feed, newest first.
func (s *Server) GetTweets(c *fiber.Ctx) error {
	items, err := s.feed.BuildFeed(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(items)
}

// PostTweet handles POST /api/tweets
func (s *Server) PostTweet(c *fiber.Ctx) error {
	userID, _ := currentUserID(c)

	var req postTweetRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	tweet, err := s.tweets.PostTweet(c.UserContext(), service.PostTweetInput{
		AuthorID: &userID,
		Content:  req.Content,
		ParentID: req.ParentID,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":        tweet.ID,
		"content":   tweet.Content,
		"timestamp": tweet.CreatedAt,
		"parent_id": tweet.ParentID,
	})
}

// DeleteTweet handles DELETE /api/tweets/:id
func (s *Server) DeleteTweet(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	userID, _ := currentUserID(c)

	if err := s.tweets.DeleteTweet(c.UserContext(), userID, id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetLikes handles GET /api/tweets/:tweetId/likes
func (s *Server) GetLikes(c *fiber.Ctx) error {
	id, err := s.parseID(c, "tweetId")
	if err != nil {
		return nil
	}

	likers, err := s.likes.Likers(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(likers)
}

// ToggleLike handles POST /api/tweets/:tweetId/likes
func (s *Server) ToggleLike(c *fiber.Ctx) error {
	id, err := s.parseID(c, "tweetId")
	if err != nil {
		return nil
	}
	userID, _ := currentUserID(c)

	result, err := s.likes.ToggleLike(c.UserContext(), userID, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(result)
}
