package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureLogger(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := Logger
	Logger = NewLogger(&buf, "production", "debug")
	t.Cleanup(func() { Logger = prev })
	return &buf
}

func TestNewLogger_TagsContextValues(t *testing.T) {
	buf := captureLogger(t)
	uid := uuid.New()

	ctx := context.WithValue(context.Background(), UserIDKey, uid)
	ctx = WithJobID(ctx, "job-42")
	Logger.InfoContext(ctx, "scanning")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, uid.String(), line["user_id"])
	assert.Equal(t, "job-42", line["job_id"])
	assert.NotContains(t, line, "request_id")
}

func TestNewLogger_Level(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "development", "warn")
	logger.Info("hidden")
	logger.Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")

	buf.Reset()
	NewLogger(&buf, "development", "loud").Debug("nope")
	assert.Empty(t, buf.String())
}

func TestRequestLevel(t *testing.T) {
	assert.Equal(t, slog.LevelInfo, requestLevel(200, nil))
	assert.Equal(t, slog.LevelWarn, requestLevel(404, nil))
	assert.Equal(t, slog.LevelError, requestLevel(503, nil))
	assert.Equal(t, slog.LevelError, requestLevel(200, errors.New("write failed")))
}

func TestStructuredLogger_SkipsProbes(t *testing.T) {
	buf := captureLogger(t)

	app := fiber.New()
	app.Use(StructuredLogger())
	app.Get("/health", func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/api/mods", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusTeapot) })

	_, err := app.Test(httptest.NewRequest("GET", "/health", nil))
	require.NoError(t, err)
	assert.Empty(t, buf.String())

	_, err = app.Test(httptest.NewRequest("GET", "/api/mods", nil))
	require.NoError(t, err)
	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "WARN", line["level"])
	assert.Equal(t, "/api/mods", line["path"])
	assert.EqualValues(t, 418, line["status"])
}
