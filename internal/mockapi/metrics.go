package mockapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type metrics struct {
	registry *prometheus.Registry
	requests *prometheus.CounterVec
	injected *prometheus.CounterVec
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "menuadmin_mock_requests_total",
			Help: "Requests served by the mock backend.",
		}, []string{"method", "route", "code"}),
		injected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "menuadmin_mock_injected_failures_total",
			Help: "Requests answered with an injected failure.",
		}, []string{"resource", "op"}),
	}
	m.registry.MustRegister(m.requests, m.injected)
	return m
}

func (m *metrics) middleware(ctx *gin.Context) {
	ctx.Next()
	route := ctx.FullPath()
	if route == "" {
		route = "unmatched"
	}
	m.requests.WithLabelValues(ctx.Request.Method, route, strconv.Itoa(ctx.Writer.Status())).Inc()
}

func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
