package middleware

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// RequestID attaches a unique ID to every request for log correlation.
// An incoming X-Request-ID is trusted; otherwise one is generated.
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Locals("request_id", id)
		c.Set("X-Request-ID", id)
		return c.Next()
	}
}

// UserLocals peeks at the JSON body for the user_id field and stores it
// in Locals so the per-user rate limiter can key on it before the
// handler parses the body properly.
func UserLocals() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var peek struct {
			UserID string `json:"user_id"`
		}
		if err := json.Unmarshal(c.Body(), &peek); err == nil && peek.UserID != "" {
			c.Locals("user_id", peek.UserID)
		}
		return c.Next()
	}
}
