package observability

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/yungbote/progress-engine/internal/platform/logger"
)

// Metrics owns the engine's Prometheus collectors. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	apiRequests *prometheus.CounterVec
	apiLatency  *prometheus.HistogramVec
	apiInflight prometheus.Gauge

	ledgerWrites  *prometheus.CounterVec
	pointsAwarded *prometheus.CounterVec
	completions   prometheus.Counter

	aggregateOps      *prometheus.HistogramVec
	aggregateConflict *prometheus.CounterVec

	analyticsLatency *prometheus.HistogramVec
	analyticsPartial *prometheus.CounterVec

	dbStats   *prometheus.GaugeVec
	redisUp   prometheus.Gauge
	redisPing prometheus.Gauge
}

var (
	initOnce sync.Once
	instance *Metrics
)

// Init builds the process-wide metrics set. It returns nil when disabled.
func Init(enabled bool, log *logger.Logger) *Metrics {
	if !enabled {
		return nil
	}
	initOnce.Do(func() {
		instance = New()
		if log != nil {
			log.Info("prometheus metrics enabled")
		}
	})
	return instance
}

// New builds a metrics set on a private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		apiRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "pe_api_requests_total",
			Help: "Total API requests by method/route/status.",
		}, []string{"method", "route", "status"}),
		apiLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pe_api_request_duration_seconds",
			Help:    "API request latency in seconds by method/route/status.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		}, []string{"method", "route", "status"}),
		apiInflight: f.NewGauge(prometheus.GaugeOpts{
			Name: "pe_api_inflight_requests",
			Help: "In-flight API requests.",
		}),
		ledgerWrites: f.NewCounterVec(prometheus.CounterOpts{
			Name: "pe_ledger_writes_total",
			Help: "Ledger writes by activity kind and outcome.",
		}, []string{"kind", "status"}),
		pointsAwarded: f.NewCounterVec(prometheus.CounterOpts{
			Name: "pe_points_awarded_total",
			Help: "Points awarded by source.",
		}, []string{"source"}),
		completions: f.NewCounter(prometheus.CounterOpts{
			Name: "pe_lesson_completions_total",
			Help: "Lesson progress transitions to completed.",
		}),
		aggregateOps: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pe_aggregate_operation_duration_seconds",
			Help:    "Transactional write latency by operation and status.",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2},
		}, []string{"operation", "status"}),
		aggregateConflict: f.NewCounterVec(prometheus.CounterOpts{
			Name: "pe_aggregate_conflicts_total",
			Help: "Transactional writes rejected with a conflict.",
		}, []string{"operation"}),
		analyticsLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pe_analytics_duration_seconds",
			Help:    "Analytics report build latency.",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		}, []string{"report", "status"}),
		analyticsPartial: f.NewCounterVec(prometheus.CounterOpts{
			Name: "pe_analytics_metric_failures_total",
			Help: "Overview sub-metrics that failed and were reported as missing.",
		}, []string{"metric"}),
		dbStats: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "pe_db_pool",
			Help: "database/sql pool statistics.",
		}, []string{"stat"}),
		redisUp: f.NewGauge(prometheus.GaugeOpts{
			Name: "pe_redis_up",
			Help: "1 when the lock store answered the last ping.",
		}),
		redisPing: f.NewGauge(prometheus.GaugeOpts{
			Name: "pe_redis_ping_seconds",
			Help: "Last lock store ping latency.",
		}),
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	if method == "" {
		method = "UNKNOWN"
	}
	if route == "" {
		route = "unknown"
	}
	if status == "" {
		status = "0"
	}
	m.apiRequests.WithLabelValues(method, route, status).Inc()
	m.apiLatency.WithLabelValues(method, route, status).Observe(dur.Seconds())
}

func (m *Metrics) ApiInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.Inc()
}

func (m *Metrics) ApiInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.Dec()
}

func (m *Metrics) IncLedgerWrite(kind, status string) {
	if m == nil {
		return
	}
	m.ledgerWrites.WithLabelValues(strings.TrimSpace(kind), strings.TrimSpace(status)).Inc()
}

func (m *Metrics) AddPoints(source string, points int) {
	if m == nil || points <= 0 {
		return
	}
	m.pointsAwarded.WithLabelValues(strings.TrimSpace(source)).Add(float64(points))
}

func (m *Metrics) IncLessonCompleted() {
	if m == nil {
		return
	}
	m.completions.Inc()
}

func (m *Metrics) ObserveAggregateOperation(op, status string, dur time.Duration) {
	if m == nil {
		return
	}
	m.aggregateOps.WithLabelValues(op, status).Observe(dur.Seconds())
}

func (m *Metrics) IncAggregateConflict(op string) {
	if m == nil {
		return
	}
	m.aggregateConflict.WithLabelValues(op).Inc()
}

func (m *Metrics) ObserveAnalytics(report, status string, dur time.Duration) {
	if m == nil {
		return
	}
	m.analyticsLatency.WithLabelValues(report, status).Observe(dur.Seconds())
}

func (m *Metrics) IncAnalyticsMetricFailure(metric string) {
	if m == nil {
		return
	}
	m.analyticsPartial.WithLabelValues(metric).Inc()
}

// StartDBCollector samples pool stats until ctx is done.
func (m *Metrics) StartDBCollector(ctx context.Context, log *logger.Logger, db *gorm.DB, interval time.Duration) {
	if m == nil || db == nil {
		return
	}
	if interval <= 0 {
		interval = 10 * time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				sqlDB, err := db.DB()
				if err != nil {
					if log != nil {
						log.Warn("metrics: db stats unavailable", "error", err)
					}
					continue
				}
				stats := sqlDB.Stats()
				m.dbStats.WithLabelValues("open_connections").Set(float64(stats.OpenConnections))
				m.dbStats.WithLabelValues("in_use").Set(float64(stats.InUse))
				m.dbStats.WithLabelValues("idle").Set(float64(stats.Idle))
				m.dbStats.WithLabelValues("wait_count").Set(float64(stats.WaitCount))
				m.dbStats.WithLabelValues("wait_duration_seconds").Set(stats.WaitDuration.Seconds())
			}
		}
	}()
}

// StartRedisCollector pings the lock store until ctx is done.
func (m *Metrics) StartRedisCollector(ctx context.Context, log *logger.Logger, rdb redis.UniversalClient, interval time.Duration) {
	if m == nil || rdb == nil {
		return
	}
	if interval <= 0 {
		interval = 10 * time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				start := time.Now()
				if err := rdb.Ping(ctx).Err(); err != nil {
					m.redisUp.Set(0)
					if log != nil {
						log.Warn("metrics: redis ping failed", "error", err)
					}
					continue
				}
				m.redisUp.Set(1)
				m.redisPing.Set(time.Since(start).Seconds())
			}
		}
	}()
}
