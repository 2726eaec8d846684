package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"craftnexus/internal/config"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupMiddleware_RateLimitedResponseIncludesCORSHeaders(t *testing.T) {
	srv := &Server{
		config: &config.Config{
			AllowedOrigins: "http://localhost:5173",
		},
	}

	app := fiber.New()
	srv.SetupMiddleware(app)
	app.Get("/limited", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	for i := 0; i < 300; i++ {
		req := httptest.NewRequest(http.MethodGet, "/limited", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		_ = resp.Body.Close()
	}

	req := httptest.NewRequest(http.MethodGet, "/limited", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "http://localhost:5173", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestSetupMiddleware_TestEnvSkipsLimiter(t *testing.T) {
	srv := &Server{config: &config.Config{Env: "test"}}

	app := fiber.New()
	srv.SetupMiddleware(app)
	app.Get("/limited", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	for i := 0; i < 310; i++ {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/limited", nil), -1)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		_ = resp.Body.Close()
	}
}

func TestSetupMiddleware_RequestIDAndSecurityHeaders(t *testing.T) {
	srv := &Server{config: &config.Config{Env: "test"}}

	app := fiber.New()
	srv.SetupMiddleware(app)
	app.Get("/ping", func(c *fiber.Ctx) error {
		return c.SendString("pong")
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/ping", nil), -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.NotEmpty(t, resp.Header.Get(fiber.HeaderXRequestID))
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
}

func TestWebsocketRoute_RequiresUpgrade(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.login(t, "alice", false)

	resp := env.do(t, http.MethodGet, "/api/ws?token="+token, "", nil)
	assert.Equal(t, http.StatusUpgradeRequired, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/api/ws", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
