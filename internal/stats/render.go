package stats

import (
	"io"

	"github.com/marmos91/fastpasta/internal/cli/output"
)

// statTable adapts a []StatSummary to output.TableRenderer so the
// report can go through the same table/JSON/YAML printer the CLI uses
// for every other structured result.
type statTable []StatSummary

func (t statTable) Headers() []string {
	return []string{"Statistic", "Value", "Notes"}
}

func (t statTable) Rows() [][]string {
	rows := make([][]string, len(t))
	for i, s := range t {
		rows[i] = []string{s.Statistic, s.Value, s.Notes}
	}
	return rows
}

// PrintReport renders the collector's report rows (spec §4.6) through
// an output.Printer, honoring whatever format (table, JSON, YAML) the
// caller configured it with.
func (c *Collector) PrintReport(w io.Writer, format output.Format) error {
	printer := output.NewPrinter(w, format, false)
	return printer.Print(statTable(c.BuildReport()))
}
