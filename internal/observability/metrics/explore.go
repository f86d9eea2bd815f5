package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ExploreQueriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "explore_queries_total",
			Help: "Total number of explore filter queries executed",
		},
	)

	ExploreResultsReturned = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "explore_results_returned",
			Help:    "Number of datasets returned per explore query",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100},
		},
	)

	NotepadOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notepad_operations_total",
			Help: "Total number of notepad operations by kind",
		},
		[]string{"operation"},
	)
)
