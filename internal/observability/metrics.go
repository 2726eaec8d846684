package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "craftnexus_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// CacheLookups counts cache-aside lookups by key family and result (hit or miss).
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "craftnexus_cache_lookups_total",
		Help: "Cache lookups by key family and result",
	}, []string{"family", "result"})

	// AnalysisJobsTotal counts analysis jobs reaching a terminal state, by outcome.
	AnalysisJobsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "craftnexus_analysis_jobs_total",
		Help: "Weapon analysis jobs by terminal outcome",
	}, []string{"outcome"})

	// AnalysisJobsSubmitted counts accepted uploads.
	AnalysisJobsSubmitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "craftnexus_analysis_jobs_submitted_total",
		Help: "Weapon analysis jobs accepted for processing",
	})

	// AnalysisDuration records how long one analysis took from claim to terminal state.
	AnalysisDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "craftnexus_analysis_duration_seconds",
		Help:    "Weapon analysis duration in seconds",
		Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120},
	}, []string{"outcome"})

	// WebSocketConnectionsTotal is the gauge of total WebSocket connections.
	WebSocketConnectionsTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "craftnexus_websocket_connections_total",
		Help: "Total number of active WebSocket connections",
	})

	// WebSocketEventsTotal counts WebSocket events by type.
	WebSocketEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "craftnexus_websocket_events_total",
		Help: "Total WebSocket events by type",
	}, []string{"event_type"})

	// WebSocketBackpressureDrops counts messages dropped due to backpressure by hub and reason.
	WebSocketBackpressureDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "craftnexus_websocket_backpressure_drops_total",
		Help: "Total number of WebSocket messages dropped due to backpressure",
	}, []string{"hub", "reason"})
)

// ObserveAnalysis records the outcome and latency of a finished analysis job.
func ObserveAnalysis(outcome string, started time.Time) {
	AnalysisJobsTotal.WithLabelValues(outcome).Inc()
	if !started.IsZero() {
		AnalysisDuration.WithLabelValues(outcome).Observe(time.Since(started).Seconds())
	}
}
