// Package metrics は Prometheus のメトリクスを提供します。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// 認証結果のラベル値
const (
	ResultSuccess  = "success"
	ResultRejected = "rejected"
	ResultInvalid  = "invalid"
	ResultError    = "error"
)

// Metrics はアプリケーションのメトリクスをまとめます。
type Metrics struct {
	registry *prometheus.Registry

	signIn   *prometheus.CounterVec
	signUp   *prometheus.CounterVec
	logOut   prometheus.Counter
	duration *prometheus.HistogramVec
}

// New は専用のレジストリにメトリクスを登録して返します。
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		signIn: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_sign_in_total",
			Help: "Sign-in attempts by result.",
		}, []string{"result"}),
		signUp: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_sign_up_total",
			Help: "Sign-up attempts by result.",
		}, []string{"result"}),
		logOut: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "auth_log_out_total",
			Help: "Completed log-outs.",
		}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}

	reg.MustRegister(
		m.signIn,
		m.signUp,
		m.logOut,
		m.duration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry は登録先のレジストリを返します。
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// SignIn はサインインの結果を記録します。
func (m *Metrics) SignIn(result string) {
	m.signIn.WithLabelValues(result).Inc()
}

// SignUp はサインアップの結果を記録します。
func (m *Metrics) SignUp(result string) {
	m.signUp.WithLabelValues(result).Inc()
}

// LogOut はログアウトを記録します。
func (m *Metrics) LogOut() {
	m.logOut.Inc()
}

// Middleware はリクエストの処理時間を記録するミドルウェアを返します。
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.duration.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}

// Handler は /metrics 用のハンドラーを返します。
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
