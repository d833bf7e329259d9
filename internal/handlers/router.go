package handlers

import (
	"github.com/gofiber/fiber/v2"

	"moneytalk/internal/middleware"
)

// SetupRoutes wires every endpoint onto the app. The global limiter
// guards the whole API surface; the chat limiter additionally keys on
// the user ID.
func SetupRoutes(app *fiber.App, chat *ChatHandler, session *SessionHandler, health *HealthHandler, rateCfg *middleware.RateLimitConfig) {
	app.Get("/health", health.HandleHealth)

	api := app.Group("/api",
		middleware.RequestID(),
		middleware.GlobalAPIRateLimiter(rateCfg),
	)

	api.Post("/chat",
		middleware.UserLocals(),
		middleware.ChatRateLimiter(rateCfg),
		chat.HandleChat,
	)

	api.Get("/capabilities", HandleCapabilities)

	api.Get("/session/:userId", session.HandleGetSession)
	api.Delete("/session/:userId", session.HandleClearSession)
}
