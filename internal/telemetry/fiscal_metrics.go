package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// FiscalMetrics holds Prometheus metrics for device fiscalization.
type FiscalMetrics struct {
	Submissions      *prometheus.CounterVec
	DeviceLatency    *prometheus.HistogramVec
	DroppedLineItems *prometheus.CounterVec
	ProbeResults     *prometheus.CounterVec
	GateDecisions    *prometheus.CounterVec
}

// NewFiscalMetrics registers the fiscal metrics with reg. Pass
// prometheus.DefaultRegisterer in production.
func NewFiscalMetrics(reg prometheus.Registerer) *FiscalMetrics {
	factory := promauto.With(reg)
	return &FiscalMetrics{
		Submissions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tims_submissions_total",
				Help: "Fiscalization attempts by outcome",
			},
			[]string{"outcome", "sale_type"},
		),
		DeviceLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tims_device_request_duration_seconds",
				Help:    "Round-trip time of PostTims requests",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"result"},
		),
		DroppedLineItems: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tims_dropped_line_items_total",
				Help: "Line items whose tax band descriptor matched no VAT band",
			},
			[]string{"band_label"},
		),
		ProbeResults: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tims_device_probes_total",
				Help: "Device reachability probes by resulting status",
			},
			[]string{"status"},
		),
		GateDecisions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tims_gate_decisions_total",
				Help: "Eligibility decisions taken on invoice submit",
			},
			[]string{"decision"},
		),
	}
}
