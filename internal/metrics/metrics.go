// Package metrics holds the Prometheus collectors for the ledger.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	TransactionsRecorded *prometheus.CounterVec
	ItemsCreated         prometheus.Counter
	IntegrityViolations  prometheus.Counter
	DuplicateRequests    prometheus.Counter
}

// New registers the ledger collectors plus the Go and process collectors on
// a private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		TransactionsRecorded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "inventory",
			Name:      "transactions_recorded_total",
			Help:      "Ledger transactions appended, by kind.",
		}, []string{"kind"}),
		ItemsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "inventory",
			Name:      "items_created_total",
			Help:      "Catalog items created.",
		}),
		IntegrityViolations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "inventory",
			Name:      "integrity_violations_total",
			Help:      "Inventory reads that found a negative derived quantity.",
		}),
		DuplicateRequests: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "inventory",
			Name:      "duplicate_requests_total",
			Help:      "Transaction requests rejected by an idempotency key.",
		}),
	}
	reg.MustRegister(
		m.TransactionsRecorded,
		m.ItemsCreated,
		m.IntegrityViolations,
		m.DuplicateRequests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
