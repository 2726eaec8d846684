package middleware

import (
	"strings"

	"craftnexus/internal/observability"

	"github.com/gofiber/fiber/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// untracedPrefixes are probe and scrape endpoints.
var untracedPrefixes = []string{"/health", "/metrics", "/api/swagger"}

// TracingMiddleware opens a server span per request. Spans are named after the
// matched route ("GET /api/news/:slug") so path parameters do not explode the
// span name space.
func TracingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		for _, p := range untracedPrefixes {
			if strings.HasPrefix(c.Path(), p) {
				return c.Next()
			}
		}

		carrier := propagation.HeaderCarrier{}
		c.Request().Header.VisitAll(func(k, v []byte) {
			carrier.Set(string(k), string(v))
		})
		ctx := otel.GetTextMapPropagator().Extract(c.UserContext(), carrier)

		ctx, span := observability.Tracer.Start(ctx, c.Method()+" "+c.Path(),
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.method", c.Method()),
				attribute.String("http.target", c.OriginalURL()),
				attribute.String("client.address", c.IP()),
			),
		)
		defer span.End()

		traceID := span.SpanContext().TraceID().String()
		c.Locals("traceID", traceID)
		c.Set("X-Trace-ID", traceID)
		c.SetUserContext(ctx)

		err := c.Next()

		route := c.Route().Path
		span.SetName(c.Method() + " " + route)
		span.SetAttributes(
			attribute.String("http.route", route),
			attribute.Int("http.status_code", c.Response().StatusCode()),
		)
		if rid, ok := c.Locals("requestid").(string); ok {
			span.SetAttributes(attribute.String("request.id", rid))
		}
		if uid, ok := c.Locals("userID").(interface{ String() string }); ok {
			span.SetAttributes(attribute.String("user.id", uid.String()))
		}
		if err != nil {
			span.RecordError(err)
		}
		if c.Response().StatusCode() >= fiber.StatusInternalServerError {
			span.SetStatus(codes.Error, "server error")
		}
		return err
	}
}
