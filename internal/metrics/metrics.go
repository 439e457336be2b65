package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fantasy",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "route", "status"},
	)

	transfers = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fantasy",
			Name:      "transfers_total",
			Help:      "Transfer attempts by outcome.",
		},
		[]string{"outcome"},
	)

	squadSaves = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fantasy",
			Name:      "squad_saves_total",
			Help:      "Squad save attempts by outcome.",
		},
		[]string{"outcome"},
	)

	recomputes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fantasy",
			Name:      "recomputes_total",
			Help:      "Manager gameweek point recomputes by trigger.",
		},
		[]string{"trigger"},
	)

	recomputeDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "fantasy",
			Name:      "recompute_duration_seconds",
			Help:      "Duration of a single manager gameweek recompute.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
	)

	phaseTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fantasy",
			Name:      "phase_transitions_total",
			Help:      "Gameweek phase transitions by target phase.",
		},
		[]string{"to"},
	)
)

func init() {
	Registry.MustRegister(
		httpRequests,
		transfers,
		squadSaves,
		recomputes,
		recomputeDuration,
		phaseTransitions,
	)
}

// Handler exposes the registry for scraping.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// Middleware counts requests by matched route.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		httpRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
	}
}

// Outcome labels a business operation result.
func Outcome(err error) string {
	if err != nil {
		return "rejected"
	}
	return "ok"
}

func RecordTransfer(err error) {
	transfers.WithLabelValues(Outcome(err)).Inc()
}

func RecordSquadSave(err error) {
	squadSaves.WithLabelValues(Outcome(err)).Inc()
}

func RecordRecompute(trigger string, duration time.Duration) {
	recomputes.WithLabelValues(trigger).Inc()
	recomputeDuration.Observe(duration.Seconds())
}

func RecordPhaseTransition(to string) {
	phaseTransitions.WithLabelValues(to).Inc()
}
