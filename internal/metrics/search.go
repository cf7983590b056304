package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	searchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sphindex",
			Name:      "searches_total",
			Help:      "Total number of daemon searches by class scope and outcome",
		},
		[]string{"class", "status"},
	)

	searchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "sphindex",
			Name:      "search_duration_seconds",
			Help:      "End-to-end search duration (daemon query + document resolution)",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"class"},
	)

	idCollisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sphindex",
			Name:      "identifier_collisions_total",
			Help:      "Identifier candidates rejected because the slot was taken",
		},
		[]string{"class"},
	)

	droppedMatchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sphindex",
			Name:      "dropped_matches_total",
			Help:      "Daemon matches dropped during decoding, by reason",
		},
		[]string{"reason"},
	)
)

// RegisterSearchMetrics registers the search and identifier collectors.
// Called once from the composition root (no init()).
func RegisterSearchMetrics() {
	prometheus.MustRegister(searchesTotal)
	prometheus.MustRegister(searchDuration)
	prometheus.MustRegister(idCollisionsTotal)
	prometheus.MustRegister(droppedMatchesTotal)
}

// ObserveSearch records one completed search.
func ObserveSearch(class, status string, seconds float64) {
	searchesTotal.WithLabelValues(class, status).Inc()
	searchDuration.WithLabelValues(class).Observe(seconds)
}

// AddIDCollision records a rejected identifier candidate.
func AddIDCollision(class string) {
	idCollisionsTotal.WithLabelValues(class).Inc()
}

// AddDroppedMatch records a match dropped during result decoding.
func AddDroppedMatch(reason string) {
	droppedMatchesTotal.WithLabelValues(reason).Inc()
}
