package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// SearchRequestsTotal 検索API呼び出し数（結果別）
	SearchRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "poi_collector_search_requests_total",
		Help: "Total keyword search API calls by result",
	}, []string{"result"})
	// SearchRetriesTotal レート制限による再試行回数
	SearchRetriesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "poi_collector_search_retries_total",
		Help: "Total keyword search retries caused by rate limiting",
	})
	SearchDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "poi_collector_search_duration_ms",
		Help:    "Keyword search API call duration in milliseconds",
		Buckets: []float64{10, 50, 100, 200, 500, 1000, 2000, 5000},
	})
	// CellsTotal セルの処理結果（completed/subdivided/skipped/failed/forced）
	CellsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "poi_collector_cells_total",
		Help: "Total grid cells processed by outcome",
	}, []string{"outcome"})
	PlacesSavedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "poi_collector_places_saved_total",
		Help: "Total places newly persisted",
	})
	LedgerCacheTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "poi_collector_ledger_cache_total",
		Help: "Scan ledger cache lookups by result",
	}, []string{"result"})
	CollectionRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "poi_collector_collection_runs_total",
		Help: "Total collection runs by status (running on start, then the final status)",
	}, []string{"status"})
)

func init() {
	prometheus.MustRegister(SearchRequestsTotal)
	prometheus.MustRegister(SearchRetriesTotal)
	prometheus.MustRegister(SearchDurationMs)
	prometheus.MustRegister(CellsTotal)
	prometheus.MustRegister(PlacesSavedTotal)
	prometheus.MustRegister(LedgerCacheTotal)
	prometheus.MustRegister(CollectionRunsTotal)
}

// Handler /metrics 用のハンドラー
func Handler() http.Handler { return promhttp.Handler() }
