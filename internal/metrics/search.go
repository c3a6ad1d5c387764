package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search pipeline Prometheus metrics.
var (
	SearchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "spaseek",
			Name:      "searches_total",
			Help:      "Total number of search pipeline runs",
		},
		[]string{"kind", "mode", "status"},
	)

	SearchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "spaseek",
			Name:      "search_duration_seconds",
			Help:      "Search pipeline duration in seconds, fetch included",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"kind", "mode"},
	)

	CandidatesFetched = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "spaseek",
			Name:      "candidates_fetched",
			Help:      "Candidate collection size per fetch",
			Buckets:   []float64{0, 10, 25, 50, 100, 250, 500, 1000},
		},
		[]string{"kind"},
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers Prometheus search metrics. Must be called once from main.
func RegisterSearchMetrics() {
	if searchMetricsRegistered {
		return
	}
	prometheus.MustRegister(SearchesTotal)
	prometheus.MustRegister(SearchDuration)
	prometheus.MustRegister(CandidatesFetched)
	searchMetricsRegistered = true
}
