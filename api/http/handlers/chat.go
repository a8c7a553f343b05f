package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/artem13815/careerassist/api/http/presenter"
	"github.com/artem13815/careerassist/pkg/chat"
	"github.com/artem13815/careerassist/pkg/logging"
	"github.com/artem13815/careerassist/pkg/security/jwt"
)

type ChatHandler struct {
	uc chat.UseCase
}

func NewChatHandler(uc chat.UseCase) *ChatHandler { return &ChatHandler{uc: uc} }

type chatRequest struct {
	Message  string `json:"message"`
	UserID   string `json:"user_id"`
	Location string `json:"location"`
}

type resetRequest struct {
	UserID string `json:"user_id"`
}

type resetResponse struct {
	Status string `json:"status"`
}

// @Summary     Ask a career question
// @Description Classifies the message, adds live job and salary data when asked for, and replies using the user's conversation history.
// @Tags        chat
// @Accept      json
// @Produce     json
// @Param       input body chatRequest true "Message; user_id defaults to default_user"
// @Security    BearerAuth
// @Success     200 {object} chat.Reply
// @Failure     400 {object} presenter.ErrorResponse
// @Failure     502 {object} presenter.ErrorResponse
// @Failure     504 {object} presenter.ErrorResponse
// @Router      /chat [post]
func (h *ChatHandler) Chat(c *fiber.Ctx) error {
	var req chatRequest
	if err := c.BodyParser(&req); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid JSON")
	}
	if strings.TrimSpace(req.Message) == "" {
		return presenter.Error(c, http.StatusBadRequest, "message is required")
	}

	reply, err := h.uc.HandleMessage(c.UserContext(), userID(c, req.UserID), req.Message, strings.TrimSpace(req.Location))
	if err != nil {
		status := chat.StatusOf(err)
		logging.From(c.UserContext()).Error("chat failed", "status", status, "error", err)
		return presenter.Error(c, status, errorMessage(status, err))
	}
	return presenter.JSON(c, http.StatusOK, reply)
}

// @Summary     Reset a conversation
// @Description Drops the user's history, keeping only the system message.
// @Tags        chat
// @Accept      json
// @Produce     json
// @Param       input body resetRequest false "user_id defaults to default_user"
// @Security    BearerAuth
// @Success     200 {object} resetResponse
// @Failure     400 {object} presenter.ErrorResponse
// @Router      /reset [post]
func (h *ChatHandler) Reset(c *fiber.Ctx) error {
	var req resetRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return presenter.Error(c, http.StatusBadRequest, "invalid JSON")
		}
	}
	if err := h.uc.Reset(c.UserContext(), userID(c, req.UserID)); err != nil {
		logging.From(c.UserContext()).Error("reset failed", "error", err)
		return presenter.Error(c, chat.StatusOf(err), errorMessage(chat.StatusOf(err), err))
	}
	return presenter.JSON(c, http.StatusOK, resetResponse{Status: "conversation reset"})
}

// userID prefers the authenticated subject over the body field.
func userID(c *fiber.Ctx, fromBody string) string {
	if id, ok := c.Locals(jwt.LocalUserID).(string); ok && id != "" {
		return id
	}
	if id := strings.TrimSpace(fromBody); id != "" {
		return id
	}
	return chat.DefaultUserID
}

func errorMessage(status int, err error) string {
	switch status {
	case http.StatusBadRequest:
		return err.Error()
	case http.StatusBadGateway:
		return "language model is unavailable, try again later"
	case http.StatusGatewayTimeout:
		return "language model timed out, try again later"
	default:
		return "internal error"
	}
}
