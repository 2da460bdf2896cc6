package statsstore

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/fastpasta/internal/cli/output"
)

func TestRunTable(t *testing.T) {
	recs := runTable{
		{ID: 1, StartedAt: time.Unix(1700000000, 0).UTC(), InputPath: "run1.raw", RDHSeen: 10, ErrorCount: 2},
	}

	assert.Equal(t, []string{"ID", "Started", "Input", "RDHs", "Errors", "Fatal"}, recs.Headers())
	require.Len(t, recs.Rows(), 1)
	row := recs.Rows()[0]
	assert.Equal(t, "1", row[0])
	assert.Equal(t, "run1.raw", row[2])
	assert.Equal(t, "10", row[3])
	assert.Equal(t, "2", row[4])
	assert.Equal(t, "false", row[5])
}

func TestPrintRecent(t *testing.T) {
	recs := []RunRecord{
		{ID: 1, StartedAt: time.Unix(1700000000, 0).UTC(), InputPath: "run1.raw", RDHSeen: 10},
	}

	var buf bytes.Buffer
	printer := output.NewPrinter(&buf, output.FormatTable, false)
	require.NoError(t, PrintRecent(printer, recs))
	assert.Contains(t, strings.ToUpper(buf.String()), "RUN1.RAW")
}
