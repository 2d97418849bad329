package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search Prometheus metrics.
var (
	// SearchCandidatesTotal counts candidates moving through the search
	// pipeline, labeled by stage ("fetched" from the index, "accepted" by
	// the post-filter).
	SearchCandidatesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "petsearch",
			Name:      "search_candidates_total",
			Help:      "Candidates fetched from the index and accepted by the post-filter",
		},
		[]string{"stage"},
	)

	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "petsearch",
			Name:      "search_requests_total",
			Help:      "Total number of search requests",
		},
		[]string{"status"}, // "success" / "error"
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers Prometheus search metrics. Must be called once from main.
func RegisterSearchMetrics() {
	if searchMetricsRegistered {
		return
	}
	prometheus.MustRegister(SearchCandidatesTotal)
	prometheus.MustRegister(SearchRequestsTotal)
	searchMetricsRegistered = true
}
