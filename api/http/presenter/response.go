package presenter

import "github.com/gofiber/fiber/v2"

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

func JSON(c *fiber.Ctx, status int, v any) error {
	return c.Status(status).JSON(v)
}

// Error echoes the request id set by the request logger so clients can quote it.
func Error(c *fiber.Ctx, status int, message string) error {
	return JSON(c, status, ErrorResponse{
		Message:   message,
		RequestID: string(c.Response().Header.Peek(fiber.HeaderXRequestID)),
	})
}
