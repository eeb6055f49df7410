package metrics

import (
	"database/sql"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Classification outcomes.
const (
	OutcomeFoodEntry    = "food_entry"
	OutcomeConversation = "conversation"
	OutcomePassthrough  = "passthrough"
	OutcomeError        = "error"
)

var (
	Classifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nutrifolio_classifications_total",
			Help: "Classified chat messages by outcome",
		},
		[]string{"outcome"},
	)

	LLMRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nutrifolio_llm_request_duration_seconds",
			Help:    "Duration of requests to the text generation API",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "status"},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nutrifolio_http_requests_total",
			Help: "HTTP requests by method, route and status code",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nutrifolio_http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	RealtimeConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "nutrifolio_realtime_connections",
			Help: "Open realtime websocket connections",
		},
	)
)

// RegisterDB exports connection pool statistics for db.
func RegisterDB(db *sql.DB, name string) error {
	return prometheus.Register(collectors.NewDBStatsCollector(db, name))
}

func Handler() http.Handler {
	return promhttp.Handler()
}
