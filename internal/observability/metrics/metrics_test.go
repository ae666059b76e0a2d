package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestIntakeMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewIntakeMetrics(reg)
	m.ObserveSubmission("accepted")
	m.ObserveSubmission("rate_limited")
	m.ObserveLatency(0.25)
}

func TestIntakeMetricsNilSafe(t *testing.T) {
	var m *IntakeMetrics
	m.ObserveSubmission("accepted")
	m.ObserveLatency(0.1)
}

func TestAddressMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewAddressMetrics(reg)
	m.ObserveSuggest("ok")
	m.ObserveDetail("error")
}

func TestAddressMetricsNilSafe(t *testing.T) {
	var m *AddressMetrics
	m.ObserveSuggest("ok")
	m.ObserveDetail("ok")
}
