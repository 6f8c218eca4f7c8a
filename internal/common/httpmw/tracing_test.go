package httpmw

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/common/logger"
)

func tracedRouter(t *testing.T) (*gin.Engine, *tracetest.SpanRecorder) {
	t.Helper()
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID(), traceRequests(tp.Tracer("test"), []string{"/health"}))
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	api := r.Group("/api", func(c *gin.Context) {
		ctx := context.WithValue(c.Request.Context(), logger.UserIDKey, "u1")
		c.Request = c.Request.WithContext(ctx)
	})
	api.GET("/projects/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	api.GET("/boom", func(c *gin.Context) { c.Status(http.StatusBadGateway) })
	return r, rec
}

func spanAttrs(s sdktrace.ReadOnlySpan) map[attribute.Key]attribute.Value {
	out := map[attribute.Key]attribute.Value{}
	for _, kv := range s.Attributes() {
		out[kv.Key] = kv.Value
	}
	return out
}

func TestTracingNamesSpanByRoute(t *testing.T) {
	r, rec := tracedRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/api/projects/p-42", nil)
	req.Header.Set(RequestIDHeader, "req-7")
	r.ServeHTTP(httptest.NewRecorder(), req)

	spans := rec.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "GET /api/projects/:id", spans[0].Name())
	attrs := spanAttrs(spans[0])
	assert.Equal(t, "req-7", attrs["buildtrack.request_id"].AsString())
	assert.Equal(t, "u1", attrs["buildtrack.user_id"].AsString())
	assert.EqualValues(t, http.StatusOK, attrs["http.response.status_code"].AsInt64())
	assert.Equal(t, codes.Unset, spans[0].Status().Code)
}

func TestTracingMarksServerErrors(t *testing.T) {
	r, rec := tracedRouter(t)
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/boom", nil))

	spans := rec.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
}

func TestTracingSkipsListedRoutes(t *testing.T) {
	r, rec := tracedRouter(t)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, rec.Ended())
}
