package server

import (
	"encoding/base64"
	"time"

	"github.com/gofiber/fiber/v2"
)

const (
	flashCookieName = "murmur_flash"
	flashTTL        = 5 * time.Minute
)

// setFlash stores a one-shot message for the next page model read.
func setFlash(c *fiber.Ctx, msg string) {
	c.Cookie(&fiber.Cookie{
		Name:     flashCookieName,
		Value:    base64.RawURLEncoding.EncodeToString([]byte(msg)),
		Path:     "/",
		Expires:  time.Now().Add(flashTTL),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// popFlash returns the pending flash message and clears it.
func popFlash(c *fiber.Ctx) string {
	raw := c.Cookies(flashCookieName)
	if raw == "" {
		return ""
	}
	c.Cookie(&fiber.Cookie{
		Name:     flashCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	msg, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil {
		return ""
	}
	return string(msg)
}

// redirectWithFlash is the post/redirect/get response used by the form endpoints.
func redirectWithFlash(c *fiber.Ctx, location, msg string) error {
	setFlash(c, msg)
	return c.Redirect(location, fiber.StatusSeeOther)
}
