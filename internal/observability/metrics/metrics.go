package metrics

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTPMetrics holds the request-level prometheus instruments.
type HTTPMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func NewHTTPMetrics() *HTTPMetrics {
	return &HTTPMetrics{
		requests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "analytics_http_requests_total",
			Help: "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		duration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "analytics_http_request_duration_seconds",
			Help:    "HTTP request latency by route and method.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
	}
}

// GinMiddleware records request counts and latency.
func GinMiddleware(m *HTTPMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if strings.TrimSpace(route) == "" {
			route = "unknown"
		}
		m.requests.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		m.duration.WithLabelValues(route, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}

// ReportMetrics counts generated reports and exports per report type.
type ReportMetrics struct {
	reports *prometheus.CounterVec
	exports *prometheus.CounterVec
}

func NewReportMetrics() *ReportMetrics {
	return &ReportMetrics{
		reports: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "analytics_reports_generated_total",
			Help: "Generated reports by report type.",
		}, []string{"report_type"}),
		exports: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "analytics_csv_exports_total",
			Help: "CSV exports by report type.",
		}, []string{"report_type"}),
	}
}

func (m *ReportMetrics) RecordReport(reportType string) {
	if m == nil {
		return
	}
	m.reports.WithLabelValues(strings.TrimSpace(reportType)).Inc()
}

func (m *ReportMetrics) RecordExport(reportType string) {
	if m == nil {
		return
	}
	m.exports.WithLabelValues(strings.TrimSpace(reportType)).Inc()
}
