// Package metrics exposes live Prometheus gauges and counters for a
// fastpasta run in progress (SPEC_FULL.md §3).
//
// All metrics use the fastpasta_ prefix. Every method is safe to call on
// a nil *Metrics, so callers that construct it only when metrics.enabled
// is set in the configuration don't need to guard every call site.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics tracks the counters and gauges exported while a run is in
// progress.
type Metrics struct {
	RdhsSeen         prometheus.Counter
	PayloadBytes     prometheus.Counter
	CDPsDispatched   *prometheus.CounterVec
	ErrorsTotal      *prometheus.CounterVec
	FatalTotal       prometheus.Counter
	ActiveValidators prometheus.Gauge
	DispatchQueue    prometheus.Gauge
}

// New creates fastpasta metrics and registers them against reg.
// Panics if registration fails, which can only happen during
// initialization (duplicate registration is a programming error).
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RdhsSeen: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fastpasta_rdhs_seen_total",
			Help: "Total RDH headers read from the input stream.",
		}),
		PayloadBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fastpasta_payload_bytes_total",
			Help: "Total payload bytes read from the input stream.",
		}),
		CDPsDispatched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fastpasta_cdps_dispatched_total",
			Help: "Total CDPs handed to a per-link/fee validator goroutine.",
		}, []string{"key_kind"}),
		ErrorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fastpasta_errors_total",
			Help: "Total recoverable errors emitted by the validator pipeline, by code.",
		}, []string{"code"}),
		FatalTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fastpasta_fatal_total",
			Help: "Total fatal errors that latched and stopped the pipeline.",
		}),
		ActiveValidators: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "fastpasta_active_validators",
			Help: "Number of currently-running per-link/fee validator goroutines.",
		}),
		DispatchQueue: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "fastpasta_dispatch_queue_depth",
			Help: "Combined length of all validator input channels.",
		}),
	}

	reg.MustRegister(
		m.RdhsSeen,
		m.PayloadBytes,
		m.CDPsDispatched,
		m.ErrorsTotal,
		m.FatalTotal,
		m.ActiveValidators,
		m.DispatchQueue,
	)

	return m
}

// Null returns nil, which acts as a no-op metrics collector: every
// method below handles a nil receiver gracefully.
func Null() *Metrics {
	return nil
}

func (m *Metrics) AddRDHsSeen(n int) {
	if m == nil {
		return
	}
	m.RdhsSeen.Add(float64(n))
}

func (m *Metrics) AddPayloadBytes(n int) {
	if m == nil {
		return
	}
	m.PayloadBytes.Add(float64(n))
}

func (m *Metrics) IncCDPsDispatched(keyKind string) {
	if m == nil {
		return
	}
	m.CDPsDispatched.WithLabelValues(keyKind).Inc()
}

func (m *Metrics) IncError(code string) {
	if m == nil {
		return
	}
	m.ErrorsTotal.WithLabelValues(code).Inc()
}

func (m *Metrics) IncFatal() {
	if m == nil {
		return
	}
	m.FatalTotal.Inc()
}

func (m *Metrics) SetActiveValidators(n int) {
	if m == nil {
		return
	}
	m.ActiveValidators.Set(float64(n))
}

func (m *Metrics) SetDispatchQueueDepth(n int) {
	if m == nil {
		return
	}
	m.DispatchQueue.Set(float64(n))
}
