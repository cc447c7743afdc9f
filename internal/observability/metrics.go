package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gorm.io/gorm"
)

// Feed cache outcomes used as the "result" label.
const (
	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheError = "error"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "yatube_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "yatube_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// FeedCacheRequests counts feed cache lookups by cache name and result.
	FeedCacheRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "yatube_feed_cache_requests_total",
		Help: "Feed cache lookups by result (hit, miss, error)",
	}, []string{"cache", "result"})

	// FeedRenders counts feed pages composed from the database.
	FeedRenders = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "yatube_feed_renders_total",
		Help: "Feed pages composed from the database, by feed kind",
	}, []string{"feed"})

	// FollowChanges counts follow graph writes that changed an edge.
	FollowChanges = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "yatube_follow_changes_total",
		Help: "Follow edges created or removed",
	}, []string{"action"})

	// PostWrites counts post and comment mutations.
	PostWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "yatube_post_writes_total",
		Help: "Post and comment mutations by kind",
	}, []string{"kind"})
)

const queryStartKey = "yatube:query_start"

// DatabaseMetrics is a GORM plugin recording query latency per operation and table.
type DatabaseMetrics struct{}

// NewDatabaseMetrics returns a new DatabaseMetrics instance.
func NewDatabaseMetrics() *DatabaseMetrics {
	return &DatabaseMetrics{}
}

// Name implements gorm.Plugin.
func (*DatabaseMetrics) Name() string {
	return "yatube:metrics"
}

// Initialize implements gorm.Plugin by hooking every callback chain.
func (m *DatabaseMetrics) Initialize(db *gorm.DB) error {
	cb := db.Callback()
	register := []struct {
		op     string
		before func(name string, fn func(*gorm.DB)) error
		after  func(name string, fn func(*gorm.DB)) error
	}{
		{"create", cb.Create().Before("gorm:create").Register, cb.Create().After("gorm:create").Register},
		{"query", cb.Query().Before("gorm:query").Register, cb.Query().After("gorm:query").Register},
		{"update", cb.Update().Before("gorm:update").Register, cb.Update().After("gorm:update").Register},
		{"delete", cb.Delete().Before("gorm:delete").Register, cb.Delete().After("gorm:delete").Register},
		{"row", cb.Row().Before("gorm:row").Register, cb.Row().After("gorm:row").Register},
		{"raw", cb.Raw().Before("gorm:raw").Register, cb.Raw().After("gorm:raw").Register},
	}
	for _, r := range register {
		op := r.op
		if err := r.before("yatube:metrics_before_"+op, startTimer); err != nil {
			return err
		}
		if err := r.after("yatube:metrics_after_"+op, func(tx *gorm.DB) { m.observe(op, tx) }); err != nil {
			return err
		}
	}
	return nil
}

func startTimer(tx *gorm.DB) {
	tx.InstanceSet(queryStartKey, time.Now())
}

func (*DatabaseMetrics) observe(op string, tx *gorm.DB) {
	v, ok := tx.InstanceGet(queryStartKey)
	if !ok {
		return
	}
	start, ok := v.(time.Time)
	if !ok {
		return
	}
	table := tx.Statement.Table
	if table == "" {
		table = "unknown"
	}
	DatabaseQueryLatency.WithLabelValues(op, table).Observe(time.Since(start).Seconds())
}
