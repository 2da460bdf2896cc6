package telemetry

import (
	"context"
	"testing"

	"github.com/grafana/pyroscope-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitProfilingDisabled(t *testing.T) {
	shutdown, err := InitProfiling(ProfilingConfig{Enabled: false})
	require.NoError(t, err)
	require.NotNil(t, shutdown)

	assert.False(t, IsProfilingEnabled())
	assert.NoError(t, shutdown())
}

func TestTagGoroutineNoOpWhenDisabled(t *testing.T) {
	profilingEnabled = false
	ctx := context.Background()

	var ran bool
	require.NotPanics(t, func() {
		TagGoroutine(ctx, func() { ran = true }, "fee_id", "20519")
	})
	assert.True(t, ran)
}

func TestParseProfileTypeKnownAndUnknown(t *testing.T) {
	pt, err := parseProfileType("cpu")
	require.NoError(t, err)
	assert.Equal(t, pyroscope.ProfileCPU, pt)

	_, err = parseProfileType("bogus")
	require.Error(t, err)
}
