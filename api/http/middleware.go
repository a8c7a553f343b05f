package http

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/artem13815/careerassist/pkg/logging"
)

// RequestLogger tags each request with an id, puts a request-scoped logger on the
// user context and writes one access log line.
func RequestLogger(logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(fiber.HeaderXRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(fiber.HeaderXRequestID, id)

		ctx, reqLogger := logging.WithRequest(c.UserContext(), logger, id)
		c.SetUserContext(ctx)

		start := time.Now()
		err := c.Next()
		reqLogger.Info("request",
			"method", c.Method(),
			"path", c.Path(),
			"status", c.Response().StatusCode(),
			"duration", time.Since(start),
		)
		return err
	}
}
