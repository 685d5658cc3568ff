package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds the Prometheus metrics of the service. It satisfies
// imitation.Observer.
type Collector struct {
	registry *prometheus.Registry

	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	MessagesIngested *prometheus.CounterVec
	Imitations       *prometheus.CounterVec
	ImitationTokens  prometheus.Histogram
	UserCache        *prometheus.CounterVec
}

func NewCollector(namespace string) *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		MessagesIngested: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_ingested_total",
			Help:      "Messages ingested, by dedup outcome",
		}, []string{"outcome"}),
		Imitations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "imitations_total",
			Help:      "Imitations generated",
		}, []string{"mode"}),
		ImitationTokens: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "imitation_tokens",
			Help:      "Tokens per generated imitation",
			Buckets:   []float64{0, 1, 5, 10, 20, 50, 100},
		}),
		UserCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "user_cache_total",
			Help:      "User id cache lookups",
		}, []string{"result"}),
	}

	c.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		c.HTTPRequests,
		c.HTTPDuration,
		c.MessagesIngested,
		c.Imitations,
		c.ImitationTokens,
		c.UserCache,
	)
	return c
}

func (c *Collector) Registry() *prometheus.Registry { return c.registry }

func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

func (c *Collector) ObserveHTTP(method, route string, status int, d time.Duration) {
	c.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.HTTPDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func (c *Collector) MessageIngested(stored bool) {
	outcome := "duplicate"
	if stored {
		outcome = "stored"
	}
	c.MessagesIngested.WithLabelValues(outcome).Inc()
}

func (c *Collector) ImitationGenerated(mode string, tokens int) {
	c.Imitations.WithLabelValues(mode).Inc()
	c.ImitationTokens.Observe(float64(tokens))
}

func (c *Collector) UserCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	c.UserCache.WithLabelValues(result).Inc()
}
