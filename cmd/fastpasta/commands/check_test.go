package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/fastpasta/internal/cli/output"
	"github.com/marmos91/fastpasta/internal/stats"
	"github.com/marmos91/fastpasta/pkg/config"
)

func TestWriteStatsFile(t *testing.T) {
	cfg := config.GetDefaultConfig()
	cfg.Stats.StatsOutputMode = "file"
	cfg.Stats.StatsOutputFormat = "json"
	cfg.Stats.OutputPath = filepath.Join(t.TempDir(), "stats.json")

	collector := stats.NewCollector(0, false)
	collector.Finalize()

	require.NoError(t, writeStats(cfg, collector, output.FormatTable))

	data, err := os.ReadFile(cfg.Stats.OutputPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "rdh_stats")
}

func TestWriteStatsCompare(t *testing.T) {
	cfg := config.GetDefaultConfig()
	cfg.Stats.StatsOutputFormat = "json"

	baseline := stats.NewCollector(0, false)
	baseline.Finalize()
	snapshot, err := baseline.MarshalJSON()
	require.NoError(t, err)

	comparePath := filepath.Join(t.TempDir(), "baseline.json")
	require.NoError(t, os.WriteFile(comparePath, snapshot, 0644))
	cfg.Stats.CompareInputPath = comparePath

	current := stats.NewCollector(0, false)
	current.Finalize()

	var buf bytes.Buffer
	oldStdout := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w
	err = writeStats(cfg, current, output.FormatTable)
	w.Close()
	os.Stdout = oldStdout
	require.NoError(t, err)
	_, _ = buf.ReadFrom(r)

	assert.Contains(t, buf.String(), "RDHs seen")
}
