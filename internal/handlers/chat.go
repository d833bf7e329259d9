package handlers

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"moneytalk/internal/agent"
	"moneytalk/internal/logging"
)

// Agent is the slice of the message dispatcher the HTTP layer needs.
type Agent interface {
	HandleMessage(ctx context.Context, userID, message string, opts agent.Options) *agent.Response
}

// ChatHandler serves the chat endpoint.
type ChatHandler struct {
	agent Agent
}

func NewChatHandler(a Agent) *ChatHandler {
	return &ChatHandler{agent: a}
}

// message processing budget; the agent may call the completion service
const chatTimeout = 30 * time.Second

type chatRequest struct {
	UserID    string `json:"user_id"`
	Message   string `json:"message"`
	SessionID string `json:"session_id,omitempty"`
	AIMode    bool   `json:"ai_mode,omitempty"`
}

type chatResponse struct {
	Message   string                 `json:"message"`
	Intent    string                 `json:"intent,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	SessionID string                 `json:"session_id"`
}

// HandleChat processes one chat message.
// POST /api/chat
func (h *ChatHandler) HandleChat(c *fiber.Ctx) error {
	var req chatRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	req.UserID = strings.TrimSpace(req.UserID)
	if req.UserID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "user_id is required",
		})
	}
	if req.SessionID == "" {
		req.SessionID = uuid.NewString()
	}

	ctx, cancel := context.WithTimeout(c.Context(), chatTimeout)
	defer cancel()

	response := h.agent.HandleMessage(ctx, req.UserID, req.Message, agent.Options{
		SessionID: req.SessionID,
		AIMode:    req.AIMode,
	})

	requestID, _ := c.Locals("request_id").(string)
	logging.WithRequest(requestID, req.UserID).Info("chat resolved",
		"intent", response.Intent,
		"ai_mode", req.AIMode,
	)

	return c.JSON(chatResponse{
		Message:   response.Message,
		Intent:    response.Intent,
		Metadata:  response.Metadata,
		SessionID: req.SessionID,
	})
}
