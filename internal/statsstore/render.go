package statsstore

import (
	"fmt"
	"time"

	"github.com/marmos91/fastpasta/internal/cli/output"
	"github.com/marmos91/fastpasta/internal/cli/timeutil"
)

// runTable adapts a []RunRecord to output.TableRenderer so `fastpasta
// history` can go through the same table/JSON/YAML printer the report
// command uses.
type runTable []RunRecord

func (t runTable) Headers() []string {
	return []string{"ID", "Started", "Input", "RDHs", "Errors", "Fatal"}
}

func (t runTable) Rows() [][]string {
	rows := make([][]string, len(t))
	for i, r := range t {
		rows[i] = []string{
			fmt.Sprintf("%d", r.ID),
			timeutil.FormatTime(r.StartedAt.Format(time.RFC3339)),
			r.InputPath,
			fmt.Sprintf("%d", r.RDHSeen),
			fmt.Sprintf("%d", r.ErrorCount),
			fmt.Sprintf("%v", r.HasFatal),
		}
	}
	return rows
}

// PrintRecent renders records (as returned by ListRecent) through an
// output.Printer, honoring whatever format the caller configured.
func PrintRecent(p *output.Printer, records []RunRecord) error {
	return p.Print(runTable(records))
}
