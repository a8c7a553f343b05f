package jwt

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newApp(secret, issuer string) *fiber.App {
	app := fiber.New()
	app.Get("/me", NewAuthMiddleware(secret, issuer), func(c *fiber.Ctx) error {
		id, _ := c.Locals(LocalUserID).(string)
		return c.SendString(id)
	})
	return app
}

func call(t *testing.T, app *fiber.App, header string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body)
}

func TestMiddlewareAcceptsValidToken(t *testing.T) {
	token, err := NewGenerator("s3cret", "careerassist", time.Hour).Generate(context.Background(), "alice")
	require.NoError(t, err)
	app := newApp("s3cret", "careerassist")

	for _, header := range []string{"Bearer " + token, token} {
		status, body := call(t, app, header)
		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, "alice", body)
	}
}

func TestMiddlewareRejects(t *testing.T) {
	app := newApp("s3cret", "careerassist")
	wrongIssuer, err := NewGenerator("s3cret", "someone-else", time.Hour).Generate(context.Background(), "alice")
	require.NoError(t, err)
	expired, err := NewGenerator("s3cret", "careerassist", -time.Minute).Generate(context.Background(), "alice")
	require.NoError(t, err)
	wrongKey, err := NewGenerator("other", "careerassist", time.Hour).Generate(context.Background(), "alice")
	require.NoError(t, err)

	for name, header := range map[string]string{
		"missing":      "",
		"garbage":      "Bearer not-a-token",
		"wrong issuer": "Bearer " + wrongIssuer,
		"expired":      "Bearer " + expired,
		"wrong key":    "Bearer " + wrongKey,
	} {
		status, _ := call(t, app, header)
		assert.Equal(t, http.StatusUnauthorized, status, name)
	}
}

func TestMiddlewareDisabledWithoutSecret(t *testing.T) {
	status, body := call(t, newApp("", ""), "")
	assert.Equal(t, http.StatusOK, status)
	assert.Empty(t, body)
}

func TestGenerateRequiresSecretAndSubject(t *testing.T) {
	_, err := NewGenerator("", "i", time.Hour).Generate(context.Background(), "alice")
	assert.Error(t, err)
	_, err = NewGenerator("s", "i", time.Hour).Generate(context.Background(), "")
	assert.Error(t, err)
}
