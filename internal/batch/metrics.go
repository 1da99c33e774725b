package batch

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	rowsConverted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "floatlab_batch_rows_total",
		Help: "The total number of rows converted through the batch surface",
	})

	rowErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "floatlab_batch_row_errors_total",
		Help: "Rows that failed to parse and carried an error instead",
	})
)
