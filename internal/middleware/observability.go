package middleware

import (
	"log/slog"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/flicky/storefront-api/internal/logging"
	"github.com/flicky/storefront-api/internal/metrics"
)

const RequestIDHeader = "X-Request-ID"

// Observability extracts W3C trace context, assigns a request id, puts a
// request-scoped logger on the context and records HTTP metrics.
func Observability(base *slog.Logger, m *metrics.Metrics) gin.HandlerFunc {
	prop := otel.GetTextMapPropagator()
	if base == nil {
		base = slog.Default()
	}

	return func(c *gin.Context) {
		ctx := prop.Extract(c.Request.Context(), propagation.HeaderCarrier(c.Request.Header))

		rid := c.GetHeader(RequestIDHeader)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Header(RequestIDHeader, rid)

		log := base.With("request_id", rid)
		if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
			log = log.With("trace_id", sc.TraceID().String(), "span_id", sc.SpanID().String())
		}
		c.Request = c.Request.WithContext(logging.With(ctx, log))

		start := time.Now()
		c.Next()
		elapsed := time.Since(start)

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		if m != nil {
			m.HTTPRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Inc()
			m.HTTPDuration.WithLabelValues(c.Request.Method, route).Observe(elapsed.Seconds())
		}

		level := slog.LevelInfo
		if status >= 500 {
			level = slog.LevelError
		}
		logging.FromContextOr(c.Request.Context(), log).Log(c.Request.Context(), level, "request",
			"method", c.Request.Method,
			"route", route,
			"status", status,
			"duration_ms", elapsed.Milliseconds(),
		)
	}
}
