package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// BookkeepingSteps counts post-commit steps by name and result
	// (applied, skipped, failed).
	BookkeepingSteps = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "engagement_bookkeeping_steps_total",
		Help: "Post-commit bookkeeping steps by step and result",
	}, []string{"step", "result"})

	// ConsistencyDrift counts secondary writes that failed after the primary write succeeded.
	ConsistencyDrift = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "engagement_consistency_drift_total",
		Help: "Secondary writes that failed after their primary write succeeded",
	}, []string{"step"})

	NotificationsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "engagement_notifications_created_total",
		Help: "Notifications created by type",
	}, []string{"type"})

	// CommentsDeleted tracks how many comment documents one delete request removed.
	CommentsDeleted = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "engagement_comment_delete_nodes",
		Help:    "Comment documents removed per delete request",
		Buckets: []float64{1, 2, 5, 10, 20, 50, 100},
	})
)
