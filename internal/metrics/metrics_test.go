package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCounters(t *testing.T) {
	m := New()

	m.SignIn(ResultSuccess)
	m.SignIn(ResultRejected)
	m.SignIn(ResultRejected)
	m.SignUp(ResultSuccess)
	m.LogOut()

	if got := testutil.ToFloat64(m.signIn.WithLabelValues(ResultRejected)); got != 2 {
		t.Fatalf("rejected sign-ins = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.signUp.WithLabelValues(ResultSuccess)); got != 1 {
		t.Fatalf("successful sign-ups = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.logOut); got != 1 {
		t.Fatalf("log-outs = %v, want 1", got)
	}
}

func TestMiddlewareAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := New()

	router := gin.New()
	router.Use(m.Middleware())
	router.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	router.GET("/metrics", gin.WrapH(m.Handler()))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), `http_request_duration_seconds_count{method="GET",route="/ping",status="200"} 1`) {
		t.Fatalf("metrics output missing request histogram:\n%s", body)
	}
}
