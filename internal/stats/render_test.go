package stats

import (
	"bytes"
	"testing"

	"github.com/marmos91/fastpasta/internal/cli/output"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatTable(t *testing.T) {
	rows := statTable{
		{Statistic: "RDHs seen", Value: "10"},
		{Statistic: "Errors", Value: "0", Notes: "none detected"},
	}

	assert.Equal(t, []string{"Statistic", "Value", "Notes"}, rows.Headers())
	require.Len(t, rows.Rows(), 2)
	assert.Equal(t, []string{"RDHs seen", "10", ""}, rows.Rows()[0])
	assert.Equal(t, []string{"Errors", "0", "none detected"}, rows.Rows()[1])
}

func TestPrintReport_Table(t *testing.T) {
	c := NewCollector(0, false)
	c.Finalize()

	var buf bytes.Buffer
	err := c.PrintReport(&buf, output.FormatTable)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "RDHs seen")
}

func TestPrintReport_JSON(t *testing.T) {
	c := NewCollector(0, false)
	c.Finalize()

	var buf bytes.Buffer
	err := c.PrintReport(&buf, output.FormatJSON)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"Statistic"`)
}

func TestPrintReport_YAML(t *testing.T) {
	c := NewCollector(0, false)
	c.Finalize()

	var buf bytes.Buffer
	err := c.PrintReport(&buf, output.FormatYAML)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "statistic:")
}
