package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Registry struct {
	reg               *prometheus.Registry
	OrdersFetched     prometheus.Counter
	OrdersSkipped     prometheus.Counter
	ItemsExpanded     prometheus.Counter
	MalformedFields   prometheus.Counter
	UnknownCategories prometheus.Counter
	PipelineRuns      prometheus.Counter
	PipelineSec       prometheus.Histogram
	CacheHits         prometheus.Counter
	CacheMisses       prometheus.Counter

	// Intake consumer metrics
	IntakeConsumed prometheus.Counter
	IntakeFailed   prometheus.Counter
}

func NewRegistry() *Registry {
	r := prometheus.NewRegistry()
	fetched := prometheus.NewCounter(prometheus.CounterOpts{Name: "salespipe_orders_fetched_total"})
	skipped := prometheus.NewCounter(prometheus.CounterOpts{Name: "salespipe_orders_skipped_total"})
	expanded := prometheus.NewCounter(prometheus.CounterOpts{Name: "salespipe_items_expanded_total"})
	malformed := prometheus.NewCounter(prometheus.CounterOpts{Name: "salespipe_malformed_fields_total"})
	unknown := prometheus.NewCounter(prometheus.CounterOpts{Name: "salespipe_unknown_categories_total"})
	runs := prometheus.NewCounter(prometheus.CounterOpts{Name: "salespipe_pipeline_runs_total"})
	runSec := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "salespipe_pipeline_run_seconds",
		Buckets: prometheus.DefBuckets,
	})
	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{Name: "salespipe_report_cache_hits_total"})
	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{Name: "salespipe_report_cache_misses_total"})

	intakeConsumed := prometheus.NewCounter(prometheus.CounterOpts{Name: "salespipe_intake_consumed_total"})
	intakeFailed := prometheus.NewCounter(prometheus.CounterOpts{Name: "salespipe_intake_failed_total"})

	r.MustRegister(fetched, skipped, expanded, malformed, unknown, runs, runSec, cacheHits, cacheMisses, intakeConsumed, intakeFailed)
	return &Registry{
		reg:               r,
		OrdersFetched:     fetched,
		OrdersSkipped:     skipped,
		ItemsExpanded:     expanded,
		MalformedFields:   malformed,
		UnknownCategories: unknown,
		PipelineRuns:      runs,
		PipelineSec:       runSec,
		CacheHits:         cacheHits,
		CacheMisses:       cacheMisses,
		IntakeConsumed:    intakeConsumed,
		IntakeFailed:      intakeFailed,
	}
}

func (r *Registry) Handler() http.Handler { return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}) }
