package middleware

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Logger is the process logger. cmd/server installs it as the slog default.
var Logger *slog.Logger

type contextKey string

// Context keys whose values are copied onto every log record.
const (
	RequestIDKey contextKey = "request_id"
	UserIDKey    contextKey = "user_id"
	TraceIDKey   contextKey = "trace_id"
	JobIDKey     contextKey = "job_id"
)

var taggedKeys = []contextKey{RequestIDKey, UserIDKey, TraceIDKey, JobIDKey}

// ctxHandler appends the tagged context values to each record.
type ctxHandler struct {
	slog.Handler
}

func (h *ctxHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, key := range taggedKeys {
		switch v := ctx.Value(key).(type) {
		case string:
			if v != "" {
				r.AddAttrs(slog.String(string(key), v))
			}
		case uuid.UUID:
			if v != uuid.Nil {
				r.AddAttrs(slog.String(string(key), v.String()))
			}
		}
	}
	return h.Handler.Handle(ctx, r)
}

func (h *ctxHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ctxHandler{h.Handler.WithAttrs(attrs)}
}

func (h *ctxHandler) WithGroup(name string) slog.Handler {
	return &ctxHandler{h.Handler.WithGroup(name)}
}

// NewLogger writes JSON in production and text elsewhere. level accepts the
// slog names (debug, info, warn, error); anything else means info.
func NewLogger(w io.Writer, env, level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}

	var base slog.Handler
	if env == "production" {
		base = slog.NewJSONHandler(w, opts)
	} else {
		base = slog.NewTextHandler(w, opts)
	}
	return slog.New(&ctxHandler{base})
}

func init() {
	Logger = NewLogger(os.Stdout, os.Getenv("APP_ENV"), os.Getenv("LOG_LEVEL"))
}

// WithJobID tags ctx so worker log lines carry the analysis job id.
func WithJobID(ctx context.Context, jobID string) context.Context {
	return context.WithValue(ctx, JobIDKey, jobID)
}

// ContextMiddleware copies the request id, caller and trace id from fiber
// locals into the user context the services log with.
func ContextMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()
		if rid, ok := c.Locals("requestid").(string); ok {
			ctx = context.WithValue(ctx, RequestIDKey, rid)
		}
		if uid, ok := c.Locals("userID").(uuid.UUID); ok {
			ctx = context.WithValue(ctx, UserIDKey, uid)
		}
		if tid, ok := c.Locals("traceID").(string); ok {
			ctx = context.WithValue(ctx, TraceIDKey, tid)
		}
		c.SetUserContext(ctx)
		return c.Next()
	}
}

func requestLevel(status int, err error) slog.Level {
	switch {
	case err != nil || status >= fiber.StatusInternalServerError:
		return slog.LevelError
	case status >= fiber.StatusBadRequest:
		return slog.LevelWarn
	}
	return slog.LevelInfo
}

// StructuredLogger logs one line per request. Health probes and metric
// scrapes are not logged.
func StructuredLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if p := c.Path(); strings.HasPrefix(p, "/health") || p == "/metrics" {
			return c.Next()
		}
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		attrs := []slog.Attr{
			slog.Int("status", status),
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.String("ip", c.IP()),
			slog.Duration("latency", time.Since(start)),
		}
		if ua := c.Get(fiber.HeaderUserAgent); ua != "" {
			attrs = append(attrs, slog.String("user_agent", ua))
		}
		if err != nil {
			attrs = append(attrs, slog.String("error", err.Error()))
		}

		// The caller is only known after the auth middleware ran.
		ctx := c.UserContext()
		if uid, ok := c.Locals("userID").(uuid.UUID); ok {
			ctx = context.WithValue(ctx, UserIDKey, uid)
		}
		Logger.LogAttrs(ctx, requestLevel(status, err), "request", attrs...)
		return err
	}
}
