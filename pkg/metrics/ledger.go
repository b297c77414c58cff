package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// LedgerMetrics records event outcomes and run results for ledger batches.
type LedgerMetrics struct {
	events   *prometheus.CounterVec
	duration prometheus.Histogram
	success  prometheus.Counter
	failure  prometheus.Counter
	accounts *prometheus.GaugeVec
}

// NewLedgerMetrics registers the ledger metrics on the provided registerer.
func NewLedgerMetrics(reg prometheus.Registerer) *LedgerMetrics {
	if reg == nil {
		return &LedgerMetrics{}
	}
	events := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_events_total",
		Help: "Ledger events processed, by event type and outcome.",
	}, []string{"type", "outcome"})
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "ledger_run_duration_seconds",
		Help:    "Duration of ledger batch runs in seconds.",
		Buckets: prometheus.DefBuckets,
	})
	success := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ledger_run_success_total",
		Help: "Ledger batch runs that produced a report.",
	})
	failure := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ledger_run_failure_total",
		Help: "Ledger batch runs aborted by an error.",
	})
	accounts := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "ledger_accounts",
		Help: "Client accounts in the last report, by state.",
	}, []string{"state"})
	reg.MustRegister(events, duration, success, failure, accounts)
	return &LedgerMetrics{
		events:   events,
		duration: duration,
		success:  success,
		failure:  failure,
		accounts: accounts,
	}
}

// ObserveEvent counts one applied or ignored event.
func (m *LedgerMetrics) ObserveEvent(eventType, outcome string) {
	if m == nil || m.events == nil {
		return
	}
	m.events.WithLabelValues(normalizeLabel(eventType), normalizeLabel(outcome)).Inc()
}

// ObserveRun records the duration and result of one batch run.
func (m *LedgerMetrics) ObserveRun(duration time.Duration, err error) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.Observe(duration.Seconds())
	if err != nil {
		m.failure.Inc()
		return
	}
	m.success.Inc()
}

// SetAccounts publishes the account counts of the last report.
func (m *LedgerMetrics) SetAccounts(active, locked int) {
	if m == nil || m.accounts == nil {
		return
	}
	m.accounts.WithLabelValues("active").Set(float64(active))
	m.accounts.WithLabelValues("locked").Set(float64(locked))
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
