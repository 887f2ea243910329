package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
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

func TestClientIP_ForwardedFor(t *testing.T) {
	c, _ := createTestContext()
	c.Request.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")

	if got := clientIP(c); got != "203.0.113.7" {
		t.Errorf("clientIP() = %q", got)
	}
}

func TestClientIP_RealIP(t *testing.T) {
	c, _ := createTestContext()
	c.Request.Header.Set("X-Real-IP", "198.51.100.2")

	if got := clientIP(c); got != "198.51.100.2" {
		t.Errorf("clientIP() = %q", got)
	}
}

func TestGetIPAddress_NotSet(t *testing.T) {
	c, _ := createTestContext()
	if GetIPAddress(c) != "" || GetUserAgent(c) != "" {
		t.Error("expected empty values when RequestContext has not run")
	}
}

func TestRequestLogger_LevelByStatus(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	r := gin.New()
	r.Use(RequestContext(), RequestLogger(logger))
	r.GET("/items/:id", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	req := httptest.NewRequest(http.MethodGet, "/items/42", nil)
	req.Header.Set("User-Agent", "probe/1.0")
	r.ServeHTTP(httptest.NewRecorder(), req)

	line := buf.String()
	for _, want := range []string{"level=WARN", "status=404", "route=/items/:id", "user_agent=probe/1.0"} {
		if !strings.Contains(line, want) {
			t.Errorf("log line missing %q: %s", want, line)
		}
	}
}

func TestNoRoute(t *testing.T) {
	r := gin.New()
	r.NoRoute(NoRoute())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/nowhere", nil))

	if w.Code != http.StatusNotFound || !strings.Contains(w.Body.String(), `"message":"Cannot DELETE /nowhere"`) {
		t.Errorf("NoRoute = %d %s", w.Code, w.Body.String())
	}
}

func TestMetrics_CountsRequests(t *testing.T) {
	r := gin.New()
	r.Use(Metrics())
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ping", nil))

	if got := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodGet, "/ping", "200")); got != 1 {
		t.Errorf("requests counted = %v, want 1", got)
	}
}
