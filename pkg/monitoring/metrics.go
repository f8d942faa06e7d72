package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal counts total requests.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"service", "method", "path", "status"},
	)

	// RequestDuration measures request duration.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"service", "method", "path"},
	)

	// StoreOperationsTotal counts key-value store operations.
	StoreOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kv_store_operations_total",
			Help: "Total number of key-value store operations",
		},
		[]string{"backend", "operation", "status"}, // status: success/miss/error
	)

	// StoreOperationDuration measures key-value store latency.
	StoreOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kv_store_operation_duration_seconds",
			Help:    "Key-value store operation duration in seconds",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		},
		[]string{"backend", "operation"},
	)

	// ConversationOperations counts conversation store operations.
	ConversationOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "conversation_operations_total",
			Help: "Total number of conversation operations",
		},
		[]string{"operation", "status"},
	)

	// HistoryEntries tracks the current length of the history log.
	HistoryEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "conversation_history_entries",
			Help: "Number of entries in the bounded history log",
		},
	)

	// SummarizerDuration measures summarizer call duration.
	SummarizerDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "conversation_summarizer_duration_seconds",
			Help:    "Summarizer request duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"status"},
	)
)

// ObserveOperation 记录一次业务操作结果
func ObserveOperation(operation string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	ConversationOperations.WithLabelValues(operation, status).Inc()
}
