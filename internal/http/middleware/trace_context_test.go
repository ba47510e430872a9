package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/progress-engine/internal/platform/ctxutil"
)

func traceRouter(t *testing.T, seed func(context.Context) context.Context) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	if seed != nil {
		r.Use(func(c *gin.Context) {
			c.Request = c.Request.WithContext(seed(c.Request.Context()))
			c.Next()
		})
	}
	r.Use(AttachTraceContext())
	r.GET("/t", func(c *gin.Context) {
		td := ctxutil.GetTraceData(c.Request.Context())
		require.NotNil(t, td)
		c.String(http.StatusOK, td.TraceID+"|"+td.RequestID)
	})
	return r
}

func traceCall(r *gin.Engine, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/t", nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestAttachTraceContext_KeepsCleanClientIDs(t *testing.T) {
	rec := traceCall(traceRouter(t, nil), map[string]string{
		HeaderTraceID:   "trace-1",
		HeaderRequestID: "req_1.a",
	})
	assert.Equal(t, "trace-1|req_1.a", rec.Body.String())
	assert.Equal(t, "trace-1", rec.Header().Get(HeaderTraceID))
	assert.Equal(t, "req_1.a", rec.Header().Get(HeaderRequestID))
}

func TestAttachTraceContext_ReplacesUnsafeClientIDs(t *testing.T) {
	rec := traceCall(traceRouter(t, nil), map[string]string{
		HeaderTraceID:   "evil\" injected=1",
		HeaderRequestID: strings.Repeat("x", maxClientIDLen+1),
	})
	reqID := rec.Header().Get(HeaderRequestID)
	assert.NotEmpty(t, reqID)
	assert.NotEqual(t, strings.Repeat("x", maxClientIDLen+1), reqID)
	assert.Equal(t, reqID, rec.Header().Get(HeaderTraceID), "trace id falls back to the request id")
}

func TestAttachTraceContext_PrefersSpanTraceID(t *testing.T) {
	tid, err := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	require.NoError(t, err)
	sid, err := trace.SpanIDFromHex("00f067aa0ba902b7")
	require.NoError(t, err)
	sc := trace.NewSpanContext(trace.SpanContextConfig{TraceID: tid, SpanID: sid, TraceFlags: trace.FlagsSampled})

	r := traceRouter(t, func(ctx context.Context) context.Context {
		return trace.ContextWithSpanContext(ctx, sc)
	})
	rec := traceCall(r, map[string]string{HeaderTraceID: "client-trace"})
	assert.Equal(t, tid.String(), rec.Header().Get(HeaderTraceID))
}
