// Package metrics provides Prometheus metrics for the support-chat-api service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "jan"
	subsystem = "support_chat"
)

var (
	// RequestsTotal counts HTTP requests by route and status.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "requests_total",
			Help:      "Total HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	// RequestDuration tracks HTTP request latency.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"method", "endpoint", "status"},
	)

	// MessagesIngested counts persisted messages by sender and transport.
	MessagesIngested = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "messages_ingested_total",
			Help:      "Messages persisted by the ingestion pipeline",
		},
		[]string{"sender", "transport"},
	)

	// MessagesRejected counts submissions refused before anything was stored.
	MessagesRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "messages_rejected_total",
			Help:      "Submissions rejected by validation",
		},
		[]string{"field", "transport"},
	)

	// CompletionDuration tracks engine latency, including failed calls.
	CompletionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "completion_duration_seconds",
			Help:      "Completion engine call duration in seconds",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"model", "provider", "status"},
	)

	// CompletionFallbacks counts replies replaced with the fallback text.
	CompletionFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "completion_fallbacks_total",
			Help:      "Completion attempts answered with the fallback reply",
		},
		[]string{"provider", "reason"},
	)

	// ActiveRooms tracks conversation rooms with at least one member.
	ActiveRooms = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "active_rooms",
			Help:      "Conversation rooms with at least one live member",
		},
	)

	// RoomMemberships tracks (room, connection) pairs.
	RoomMemberships = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "room_memberships",
			Help:      "Live connection memberships across all rooms",
		},
	)

	// BroadcastFailures counts per-connection send failures during fan-out.
	BroadcastFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "broadcast_failures_total",
			Help:      "Events that could not be queued for a room member",
		},
		[]string{"event"},
	)

	// WebSocketConnections tracks open realtime connections.
	WebSocketConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "websocket_connections",
			Help:      "Currently open realtime connections",
		},
	)

	// LockWaitDuration tracks time spent acquiring per-conversation locks.
	LockWaitDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "lock_wait_seconds",
			Help:      "Time spent waiting for a per-conversation lock",
			Buckets:   []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 30},
		},
		[]string{"backend"},
	)
)

// RecordRequest records an HTTP request.
func RecordRequest(method, endpoint, status string, durationSec float64) {
	RequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	RequestDuration.WithLabelValues(method, endpoint, status).Observe(durationSec)
}

// RecordMessage records a persisted message.
func RecordMessage(sender, transport string) {
	MessagesIngested.WithLabelValues(sender, transport).Inc()
}

// RecordRejection records a submission refused by validation.
func RecordRejection(field, transport string) {
	if field == "" {
		field = "unknown"
	}
	MessagesRejected.WithLabelValues(field, transport).Inc()
}

// RecordCompletion records one engine call.
func RecordCompletion(model, provider, status string, durationSec float64) {
	CompletionDuration.WithLabelValues(model, provider, status).Observe(durationSec)
}

// RecordCompletionFallback records a fallback reply.
func RecordCompletionFallback(provider, reason string) {
	CompletionFallbacks.WithLabelValues(provider, reason).Inc()
}

// SetRoomStats publishes the registry size.
func SetRoomStats(rooms, memberships int) {
	ActiveRooms.Set(float64(rooms))
	RoomMemberships.Set(float64(memberships))
}

// RecordBroadcastFailure records a failed per-connection send.
func RecordBroadcastFailure(event string) {
	BroadcastFailures.WithLabelValues(event).Inc()
}

// RecordLockWait records lock acquisition latency.
func RecordLockWait(backend string, durationSec float64) {
	LockWaitDuration.WithLabelValues(backend).Observe(durationSec)
}
