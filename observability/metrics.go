package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SubmissionsTotal counts accepted submissions by content type.
	SubmissionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "confessions_submissions_total",
		Help: "Total number of submissions accepted for review",
	}, []string{"type"})

	// ThrottledTotal counts refused submissions and questions by reason.
	ThrottledTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "confessions_throttled_total",
		Help: "Total number of refused submissions by reason",
	}, []string{"reason"})

	// DecisionsTotal counts moderator decisions by verb.
	DecisionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "confessions_decisions_total",
		Help: "Total number of moderator decisions",
	}, []string{"decision"})

	// PublishedTotal counts published items by path (direct or queue).
	PublishedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "confessions_published_total",
		Help: "Total number of items published to the public channel",
	}, []string{"path"})

	// DeliveryFailuresTotal counts failed gateway calls by operation.
	DeliveryFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "confessions_delivery_failures_total",
		Help: "Total number of failed gateway calls",
	}, []string{"operation"})

	// QueueDepth is the number of items waiting for publication.
	QueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "confessions_queue_depth",
		Help: "Number of items in the publication queue",
	})

	// SnapshotFailuresTotal counts failed snapshot writes.
	SnapshotFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "confessions_snapshot_failures_total",
		Help: "Total number of failed state snapshots",
	})

	// SnapshotDuration records how long a snapshot write takes.
	SnapshotDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "confessions_snapshot_duration_seconds",
		Help:    "Snapshot write latency in seconds",
		Buckets: prometheus.DefBuckets,
	})
)
