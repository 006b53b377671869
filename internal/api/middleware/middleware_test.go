package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/eventstock/eventstock/internal/metrics"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// Helper to create test context
func createTestContext() (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/test", nil)
	return c, w
}

func TestClientInfo_ForwardedFor(t *testing.T) {
	c, _ := createTestContext()
	c.Request.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	c.Request.Header.Set("User-Agent", "panel/1.0")

	ClientInfo()(c)

	assert.Equal(t, "203.0.113.7", GetIPAddress(c))
	assert.Equal(t, "panel/1.0", GetUserAgent(c))
}

func TestClientInfo_RealIP(t *testing.T) {
	c, _ := createTestContext()
	c.Request.Header.Set("X-Real-IP", "198.51.100.2")

	ClientInfo()(c)

	assert.Equal(t, "198.51.100.2", GetIPAddress(c))
}

func TestGetIPAddress_NotSet(t *testing.T) {
	c, _ := createTestContext()
	assert.Empty(t, GetIPAddress(c))
}

func TestRequestLogger_Levels(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := zap.New(core)

	r := gin.New()
	r.Use(ClientInfo(), RequestLogger(logger))
	r.GET("/ok", func(c *gin.Context) {
		c.Header(HeaderPersisted, "false")
		c.Status(http.StatusOK)
	})
	r.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })
	r.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	for _, path := range []string{"/ok?q=r%C3%B3%C5%BCa", "/missing", "/boom"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, "q=r%C3%B3%C5%BCa", entries[0].ContextMap()["query"])
	assert.Equal(t, "false", entries[0].ContextMap()["persisted"])
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, zapcore.ErrorLevel, entries[2].Level)
}

func TestMetrics_UsesRouteTemplate(t *testing.T) {
	r := gin.New()
	r.Use(Metrics())
	r.GET("/api/orders/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	counter := metrics.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/api/orders/:id", "200")
	before := testutil.ToFloat64(counter)

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/orders/abc", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/orders/def", nil))

	assert.Equal(t, before+2, testutil.ToFloat64(counter))
}
