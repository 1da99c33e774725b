package calc

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	operationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "floatlab_operations_total",
		Help: "Operations performed, by operation and precision",
	}, []string{"op", "precision"})

	operationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "floatlab_operation_duration_seconds",
		Help:    "Time spent in core operations",
		Buckets: prometheus.DefBuckets,
	}, []string{"op"})

	roundedResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "floatlab_rounded_results_total",
		Help: "Results that discarded bits and required a rounding decision",
	}, []string{"op"})

	inputFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "floatlab_input_failures_total",
		Help: "Rejected inputs, by kind",
	}, []string{"kind"})

	verifyMismatches = promauto.NewCounter(prometheus.CounterOpts{
		Name: "floatlab_verify_mismatches_total",
		Help: "Host FPU cross-checks that disagreed with the field-level engine",
	})
)

// observe times one operation; use as defer observe(op, p)().
func observe(op string, p string) func() {
	operationsTotal.WithLabelValues(op, p).Inc()
	start := time.Now()
	return func() {
		operationDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	}
}
