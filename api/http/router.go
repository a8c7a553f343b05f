package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/artem13815/careerassist/api/http/handlers"
)

// Register wires all HTTP routes onto given Fiber app.
// authMW guards the chat endpoints; pass a no-op handler to leave them open.
func Register(app *fiber.App, chat *handlers.ChatHandler, health *handlers.HealthHandler, authMW fiber.Handler) {
	app.Get("/", handlers.Index)

	api := app.Group("/api")

	// Health and readiness endpoints for probes/monitoring
	api.Get("/health", health.Health)
	api.Get("/ready", health.Ready)

	api.Post("/chat", authMW, chat.Chat)
	api.Post("/reset", authMW, chat.Reset)
}
