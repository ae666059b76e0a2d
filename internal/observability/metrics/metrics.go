package metrics

import "github.com/prometheus/client_golang/prometheus"

// IntakeMetrics exposes counters/histograms for the lead intake pipeline.
type IntakeMetrics struct {
	submissionsTotal *prometheus.CounterVec
	pipelineLatency  prometheus.Histogram
}

func NewIntakeMetrics(reg prometheus.Registerer) *IntakeMetrics {
	m := &IntakeMetrics{
		submissionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leadintake",
			Subsystem: "pipeline",
			Name:      "submissions_total",
			Help:      "Total lead submissions by outcome",
		}, []string{"outcome"}),
		pipelineLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "leadintake",
			Subsystem: "pipeline",
			Name:      "latency_seconds",
			Help:      "Latency of lead submission processing",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.submissionsTotal, m.pipelineLatency)
	return m
}

// ObserveSubmission records one pipeline run by outcome
// (accepted, honeypot, rate_limited, challenge_failed, invalid, storage_error).
func (m *IntakeMetrics) ObserveSubmission(outcome string) {
	if m == nil {
		return
	}
	m.submissionsTotal.WithLabelValues(outcome).Inc()
}

// ObserveLatency records pipeline processing time.
func (m *IntakeMetrics) ObserveLatency(seconds float64) {
	if m == nil {
		return
	}
	m.pipelineLatency.Observe(seconds)
}

// AddressMetrics exposes counters for the address lookup endpoints.
type AddressMetrics struct {
	suggestTotal *prometheus.CounterVec
	detailTotal  *prometheus.CounterVec
}

func NewAddressMetrics(reg prometheus.Registerer) *AddressMetrics {
	m := &AddressMetrics{
		suggestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leadintake",
			Subsystem: "address",
			Name:      "suggest_total",
			Help:      "Total postcode suggestion lookups",
		}, []string{"status"}),
		detailTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leadintake",
			Subsystem: "address",
			Name:      "detail_total",
			Help:      "Total address detail fetches",
		}, []string{"status"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.suggestTotal, m.detailTotal)
	return m
}

func (m *AddressMetrics) ObserveSuggest(status string) {
	if m == nil {
		return
	}
	m.suggestTotal.WithLabelValues(status).Inc()
}

func (m *AddressMetrics) ObserveDetail(status string) {
	if m == nil {
		return
	}
	m.detailTotal.WithLabelValues(status).Inc()
}
