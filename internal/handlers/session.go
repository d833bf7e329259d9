package handlers

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"moneytalk/internal/convo"
)

// SessionHandler exposes the conversation context for inspection and
// reset. Context is in-memory and expiring; these endpoints are mainly
// for the client's "start over" button and for debugging.
type SessionHandler struct {
	contexts *convo.Store
}

func NewSessionHandler(contexts *convo.Store) *SessionHandler {
	return &SessionHandler{contexts: contexts}
}

// HandleGetSession returns a summary of the user's conversation state.
// GET /api/session/:userId
func (h *SessionHandler) HandleGetSession(c *fiber.Ctx) error {
	userID := c.Params("userId")
	if userID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "userId is required",
		})
	}

	state := h.contexts.Get(userID)
	return c.JSON(fiber.Map{
		"user_id":              userID,
		"message_count":        len(state.History),
		"last_intent":          state.LastIntent,
		"current_flow":         state.CurrentFlow,
		"pending_confirmation": state.Pending != nil,
		"has_continuation":     state.Continuation != nil,
		"updated_at":           state.UpdatedAt,
	})
}

// HandleClearSession wipes the user's conversation context.
// DELETE /api/session/:userId
func (h *SessionHandler) HandleClearSession(c *fiber.Ctx) error {
	userID := c.Params("userId")
	if userID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "userId is required",
		})
	}

	h.contexts.Clear(userID)
	log.Printf("🧹 [SESSION] Cleared context for user %s", userID)

	return c.JSON(fiber.Map{"status": "cleared", "user_id": userID})
}
