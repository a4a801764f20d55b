package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "onboarding"

// Collector registers on its own registry, never the global default.
type Collector struct {
	registry        *prometheus.Registry
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	rateLimited     prometheus.Counter
	progress        *prometheus.CounterVec
	employees       *prometheus.GaugeVec
	jobRuns         *prometheus.CounterVec
}

func New() *Collector {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	auto := promauto.With(registry)

	return &Collector{
		registry: registry,
		requests: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route, method and status code.",
		}, []string{"route", "method", "status_code"}),
		requestDuration: auto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route and method.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		rateLimited: auto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the rate limiter.",
		}),
		progress: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "progress_computations_total",
			Help:      "Progress computations by resulting status.",
		}, []string{"status"}),
		employees: auto.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "employees_by_progress",
			Help:      "Employees by progress status as of the last sweep.",
		}, []string{"status"}),
		jobRuns: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "job_runs_total",
			Help:      "Background job runs by job type and outcome.",
		}, []string{"job", "outcome"}),
	}
}

func (c *Collector) Record(route, method string, status int, duration time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	c.requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	c.requestDuration.WithLabelValues(route, method).Observe(duration.Seconds())
	if status == http.StatusTooManyRequests {
		c.rateLimited.Inc()
	}
}

func (c *Collector) ObserveProgress(status string) {
	c.progress.WithLabelValues(status).Inc()
}

// SetProgressBreakdown replaces the per-status employee gauges.
func (c *Collector) SetProgressBreakdown(counts map[string]int) {
	c.employees.Reset()
	for status, n := range counts {
		c.employees.WithLabelValues(status).Set(float64(n))
	}
}

func (c *Collector) ObserveJob(jobType string, err error) {
	outcome := "completed"
	if err != nil {
		outcome = "failed"
	}
	c.jobRuns.WithLabelValues(jobType, outcome).Inc()
}

func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}
