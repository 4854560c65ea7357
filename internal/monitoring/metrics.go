package monitoring

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	RunsLaunched = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "quizer_runs_launched_total",
		Help: "Number of test runs launched",
	})

	RunsStopped = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "quizer_runs_stopped_total",
		Help: "Number of test runs stopped",
	})

	AttemptsStarted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "quizer_attempts_started_total",
		Help: "Number of attempts started",
	})

	// AttemptsGraded is labelled by outcome: submitted, late, forced or dropped.
	AttemptsGraded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quizer_attempts_graded_total",
			Help: "Number of graded attempts by outcome",
		},
		[]string{"outcome"},
	)

	AttemptScore = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "quizer_attempt_score_ratio",
		Help:    "Share of right answers per graded attempt",
		Buckets: prometheus.LinearBuckets(0, 0.1, 11),
	})
)

var registerOnce sync.Once

func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(RequestCounter)
		prometheus.MustRegister(RequestDuration)
		prometheus.MustRegister(RunsLaunched)
		prometheus.MustRegister(RunsStopped)
		prometheus.MustRegister(AttemptsStarted)
		prometheus.MustRegister(AttemptsGraded)
		prometheus.MustRegister(AttemptScore)
	})
}

// ObserveGraded records a graded attempt
func ObserveGraded(outcome string, score float64) {
	AttemptsGraded.WithLabelValues(outcome).Inc()
	AttemptScore.Observe(score)
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}

		RequestCounter.WithLabelValues(
			c.Request.Method,
			endpoint,
			strconv.Itoa(c.Writer.Status()),
		).Inc()

		RequestDuration.WithLabelValues(
			c.Request.Method,
			endpoint,
		).Observe(time.Since(start).Seconds())
	}
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
