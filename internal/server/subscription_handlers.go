package server

import (
	"murmur/internal/models"
	"murmur/internal/service"

	"github.com/gofiber/fiber/v2"
)

type subscribeRequest struct {
	Endpoint string `json:"endpoint"`
	Keys     struct {
		P256dh string `json:"p256dh"`
		Auth   string `json:"auth"`
	} `json:"keys"`
}

// Subscribe handles POST /subscribe with a browser PushSubscription JSON body.
func (s *Server) Subscribe(c *fiber.Ctx) error {
	var req subscribeRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	sub, err := s.subscriptions.Register(c.UserContext(), service.RegisterSubscriptionInput{
		Endpoint: req.Endpoint,
		P256dh:   req.Keys.P256dh,
		Auth:     req.Keys.Auth,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": sub.ID})
}

// PushPublicKey handles GET /api/push/public-key. The key is the VAPID
// application server key the browser needs for PushManager.subscribe.
func (s *Server) PushPublicKey(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"public_key": s.config.VAPIDPublicKey,
		"enabled":    s.config.PushEnabled(),
	})
}
