package search

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	queriesIssued = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "directory_search_queries_issued_total",
		Help: "Queries issued by search streams, by scope",
	}, []string{"scope"})

	resultsApplied = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "directory_search_results_applied_total",
		Help: "Stream results applied to visible state, by scope and outcome",
	}, []string{"scope", "outcome"})

	resultsDiscarded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "directory_search_results_discarded_total",
		Help: "Stream results dropped because a later query was issued",
	}, []string{"scope"})

	debounceResets = promauto.NewCounter(prometheus.CounterOpts{
		Name: "directory_search_debounce_resets_total",
		Help: "Pending debounced queries replaced by newer input",
	})
)
