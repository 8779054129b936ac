// Package middleware provides the gin middleware of the HTTP API.
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stockflow/backend/internal/infrastructure/logger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracingConfig holds configuration for the tracing middleware.
type TracingConfig struct {
	ServiceName string
	Enabled     bool
	// Options are passed through to otelgin (tracer provider, propagators).
	Options []otelgin.Option
}

// Tracing returns otelgin middleware followed by a handler that tags the
// server span with the request ID and marks 4xx/5xx responses as errors.
// The span name follows "HTTP METHOD route" e.g. "GET /api/v1/report/:id".
func Tracing(cfg TracingConfig) gin.HandlersChain {
	if !cfg.Enabled {
		return gin.HandlersChain{func(c *gin.Context) { c.Next() }}
	}
	return gin.HandlersChain{
		otelgin.Middleware(cfg.ServiceName, cfg.Options...),
		spanStatus,
	}
}

// spanStatus runs inside the otelgin span, which ends only after it returns
func spanStatus(c *gin.Context) {
	c.Next()

	span := trace.SpanFromContext(c.Request.Context())
	if span.IsRecording() {
		markSpan(c, span)
	}
}

// TracingAttributeInjector copies identity into the active span. It must run
// after JWTAuth.
func TracingAttributeInjector() gin.HandlerFunc {
	return func(c *gin.Context) {
		span := trace.SpanFromContext(c.Request.Context())
		if span.IsRecording() {
			if userID := c.GetString(UserIDKey); userID != "" {
				span.SetAttributes(attribute.String("user_id", userID))
			}
			if inventoryID := c.GetString(InventoryIDKey); inventoryID != "" {
				span.SetAttributes(attribute.String("inventory_id", inventoryID))
			}
		}
		c.Next()
	}
}

func markSpan(c *gin.Context, span trace.Span) {
	if requestID := c.GetString(logger.GinRequestIDKey); requestID != "" {
		span.SetAttributes(attribute.String("request_id", requestID))
	}

	status := c.Writer.Status()
	if status < http.StatusBadRequest {
		return
	}
	msg := "Client Error"
	switch {
	case status >= http.StatusInternalServerError:
		msg = "Internal Server Error"
	case status == http.StatusConflict:
		msg = "Conflict"
	case status == http.StatusUnprocessableEntity:
		msg = "Invalid Transition"
	}
	span.SetStatus(codes.Error, msg)
	span.SetAttributes(attribute.Int("http.status_code", status))
}
