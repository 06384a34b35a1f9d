package telemetry

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFiscalMetrics_Registers(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewFiscalMetrics(reg)

	m.Submissions.WithLabelValues("acknowledged", "sale").Inc()
	m.DeviceLatency.WithLabelValues("ok").Observe(0.3)
	m.DroppedLineItems.WithLabelValues("VAT 14%").Inc()
	m.ProbeResults.WithLabelValues("Active").Inc()
	m.GateDecisions.WithLabelValues("submitted").Inc()

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.ElementsMatch(t, []string{
		"tims_submissions_total",
		"tims_device_request_duration_seconds",
		"tims_dropped_line_items_total",
		"tims_device_probes_total",
		"tims_gate_decisions_total",
	}, names)
}

func TestNewFiscalMetrics_DuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewFiscalMetrics(reg)
	assert.Panics(t, func() { NewFiscalMetrics(reg) })
}
