package httpmw

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/common/logger"
	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/common/tracing"
)

// OtelTracing opens a span per request, named after the matched route. Routes
// listed in skip (the health probe, the WebSocket stream) are not traced.
func OtelTracing(serverName string, skip ...string) gin.HandlerFunc {
	return traceRequests(tracing.Tracer(serverName), skip)
}

func traceRequests(tracer trace.Tracer, skip []string) gin.HandlerFunc {
	skipped := make(map[string]bool, len(skip))
	for _, route := range skip {
		skipped[route] = true
	}
	return func(c *gin.Context) {
		route := c.FullPath()
		if skipped[route] {
			c.Next()
			return
		}
		if route == "" {
			route = "unmatched"
		}

		ctx, span := tracer.Start(c.Request.Context(), c.Request.Method+" "+route,
			trace.WithSpanKind(trace.SpanKindServer))
		defer span.End()
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		status := c.Writer.Status()
		attrs := []attribute.KeyValue{
			semconv.HTTPRequestMethodKey.String(c.Request.Method),
			semconv.HTTPRouteKey.String(route),
			semconv.HTTPResponseStatusCodeKey.Int(status),
		}
		// The session middleware runs after this one, so the user id is only
		// on the request context once the chain has returned.
		reqCtx := c.Request.Context()
		if id, ok := reqCtx.Value(logger.RequestIDKey).(string); ok && id != "" {
			attrs = append(attrs, attribute.String("buildtrack.request_id", id))
		}
		if id, ok := reqCtx.Value(logger.UserIDKey).(string); ok && id != "" {
			attrs = append(attrs, attribute.String("buildtrack.user_id", id))
		}
		span.SetAttributes(attrs...)
		if status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(status))
		}
	}
}
