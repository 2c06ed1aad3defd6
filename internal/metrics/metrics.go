package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	AssignmentsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "territory_assignments_total",
		Help: "Total assignment runs by strategy and outcome",
	}, []string{"strategy", "outcome"})
	AssignmentDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "territory_assignment_duration_ms",
		Help:    "Assignment run duration in milliseconds",
		Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
	}, []string{"strategy"})
	BalanceScore = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "territory_balance_score",
		Help:    "Balance score of computed assignments",
		Buckets: []float64{0.1, 0.25, 0.5, 0.6, 0.7, 0.8, 0.9, 0.95, 0.99, 1},
	})
	ImprovementSwapsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "territory_improvement_swaps_total",
		Help: "Total boundary swaps applied by the improvement pass",
	})
	UnitsAssignedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "territory_units_assigned_total",
		Help: "Total units placed into territories",
	})
	CacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "territory_cache_hits_total",
		Help: "Total assignment cache hits",
	})
	CacheMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "territory_cache_misses_total",
		Help: "Total assignment cache misses",
	})
	CachedAssignments = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "territory_cached_assignments",
		Help: "Assignment results currently held in the cache",
	})
	ClassificationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "territory_location_classifications_total",
		Help: "Live location classifications by result",
	}, []string{"classification"})
)

func init() {
	prometheus.MustRegister(AssignmentsTotal)
	prometheus.MustRegister(AssignmentDurationMs)
	prometheus.MustRegister(BalanceScore)
	prometheus.MustRegister(ImprovementSwapsTotal)
	prometheus.MustRegister(UnitsAssignedTotal)
	prometheus.MustRegister(CacheHitsTotal)
	prometheus.MustRegister(CacheMissesTotal)
	prometheus.MustRegister(CachedAssignments)
	prometheus.MustRegister(ClassificationsTotal)
}

// Handler exposes the registered metrics for scraping at /metrics
func Handler() http.Handler { return promhttp.Handler() }
