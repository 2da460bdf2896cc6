package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func TestNewRegistersAndRecords(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.AddRDHsSeen(3)
	m.AddPayloadBytes(1024)
	m.IncCDPsDispatched("link_id")
	m.IncError("E10")
	m.IncFatal()
	m.SetActiveValidators(4)
	m.SetDispatchQueueDepth(7)

	mf, err := reg.Gather()
	require.NoError(t, err)
	require.NotEmpty(t, mf)
}

func TestNilMetricsIsNoOp(t *testing.T) {
	var m *Metrics
	require.NotPanics(t, func() {
		m.AddRDHsSeen(1)
		m.AddPayloadBytes(1)
		m.IncCDPsDispatched("fee_id")
		m.IncError("E10")
		m.IncFatal()
		m.SetActiveValidators(1)
		m.SetDispatchQueueDepth(1)
	})
}

func TestNullReturnsNil(t *testing.T) {
	require.Nil(t, Null())
}
