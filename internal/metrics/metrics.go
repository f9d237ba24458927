package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	queryRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "oierfinder_query_requests_total",
			Help: "Total number of /query-oier requests by outcome",
		},
		[]string{"outcome"},
	)
	planTerminal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "oierfinder_plan_terminal_total",
			Help: "Planner runs by terminal state",
		},
		[]string{"state"},
	)
	backendCalls = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "oierfinder_backend_call_seconds",
			Help:    "Backend statement latency by planner step kind",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"step"},
	)
	rowsRead = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "oierfinder_backend_rows_read_total",
			Help: "Rows read by backend statements",
		},
	)
	luoguSyncs = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "oierfinder_luogu_sync_total",
			Help: "Luogu prize syncs by outcome",
		},
		[]string{"outcome"},
	)
	statsSyncs = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "oierfinder_stats_sync_total",
			Help: "Cardinality stats recomputations by outcome",
		},
		[]string{"outcome"},
	)
	statsBuckets = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "oierfinder_stats_buckets",
			Help: "Buckets in the active cardinality stats table",
		},
	)
)

// ObserveQuery 记录一次查询请求的结果分类（ok / validation / query_too_broad / ...）
func ObserveQuery(outcome string) {
	queryRequests.WithLabelValues(outcome).Inc()
}

// ObservePlan 记录规划器终态
func ObservePlan(state string) {
	planTerminal.WithLabelValues(state).Inc()
}

// ObserveBackendCall 记录一次后端调用
func ObserveBackendCall(step string, d time.Duration, rows int64) {
	backendCalls.WithLabelValues(step).Observe(d.Seconds())
	rowsRead.Add(float64(rows))
}

// ObserveLuoguSync 记录一次洛谷同步
func ObserveLuoguSync(outcome string) {
	luoguSyncs.WithLabelValues(outcome).Inc()
}

// ObserveStatsSync 记录一次统计重算，成功时更新当前分桶数
func ObserveStatsSync(outcome string, buckets int) {
	statsSyncs.WithLabelValues(outcome).Inc()
	if outcome == "ok" {
		statsBuckets.Set(float64(buckets))
	}
}

// Handler /metrics
func Handler() http.Handler {
	return promhttp.Handler()
}
