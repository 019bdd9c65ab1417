// Package metrics exposes Prometheus counters for worker mutations and CSV
// imports, registered on the default registry.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "workerdesk"

// Import outcomes used as the "outcome" label of ImportsTotal.
const (
	OutcomeSuccess     = "success"
	OutcomeNoValidRows = "no_valid_rows"
	OutcomeParseError  = "parse_error"
	OutcomeInsertError = "insert_error"
	OutcomeBusy        = "busy"
	OutcomeError       = "error"
)

var (
	ImportsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "imports_total",
		Help:      "CSV imports by outcome.",
	}, []string{"outcome"})

	ImportRowsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "import_rows_total",
		Help:      "CSV data rows seen by imports, by validation result.",
	}, []string{"result"})

	ImportDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "import_duration_seconds",
		Help:      "Wall time of CSV imports.",
		Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
	})

	MutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "worker_mutations_total",
		Help:      "Single-record worker writes by operation and result.",
	}, []string{"operation", "result"})
)

// ObserveImport records one finished import.
func ObserveImport(outcome string, accepted, rejected int, seconds float64) {
	ImportsTotal.WithLabelValues(outcome).Inc()
	ImportRowsTotal.WithLabelValues("accepted").Add(float64(accepted))
	ImportRowsTotal.WithLabelValues("rejected").Add(float64(rejected))
	ImportDuration.Observe(seconds)
}

// ObserveMutation records an add, edit or delete.
func ObserveMutation(operation string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	MutationsTotal.WithLabelValues(operation, result).Inc()
}

// Handler serves the default registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.Handler()
}
