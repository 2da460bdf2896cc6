package stats

import (
	"fmt"

	"github.com/marmos91/fastpasta/internal/bytesize"
)

// StatSummary is one row of the tabular report (spec §4.6); rendering
// is delegated to the table external collaborator (internal/cli/output).
type StatSummary struct {
	Statistic string
	Value     string
	Notes     string
}

// BuildReport assembles the StatSummary rows covering totals, link
// list, FEE list, data size, optional filter breakdown, optional
// ALPIDE table, and detected attributes (spec §4.6). Must be called
// after Finalize.
func (c *Collector) BuildReport() []StatSummary {
	c.mu.Lock()
	defer c.mu.Unlock()

	rows := []StatSummary{
		{Statistic: "RDHs seen", Value: fmt.Sprintf("%d", c.Rdh.RDHSeen)},
		{Statistic: "RDHs filtered", Value: fmt.Sprintf("%d", c.Rdh.RDHFiltered)},
		{Statistic: "Payload bytes", Value: bytesize.ByteSize(c.Rdh.PayloadBytes).String(), Notes: fmt.Sprintf("%d bytes", c.Rdh.PayloadBytes)},
		{Statistic: "Links observed", Value: fmt.Sprintf("%v", c.Rdh.Links)},
		{Statistic: "FEE ids observed", Value: fmt.Sprintf("%v", c.Rdh.FeeIDs)},
		{Statistic: "RDH version", Value: fmt.Sprintf("%d", c.Rdh.RdhVersion), Notes: "detected attribute"},
		{Statistic: "Data format", Value: fmt.Sprintf("%d", c.Rdh.DataFormat), Notes: "detected attribute"},
		{Statistic: "System ID", Value: fmt.Sprintf("0x%X", c.Rdh.SystemID), Notes: "detected attribute"},
		{Statistic: "Errors", Value: fmt.Sprintf("%d", len(c.Err.Messages))},
	}
	if c.Err.FatalMessage != "" {
		rows = append(rows, StatSummary{Statistic: "Fatal", Value: c.Err.FatalMessage})
	}
	if len(c.Err.UniqueCodes) > 0 {
		rows = append(rows, StatSummary{Statistic: "Error codes seen", Value: fmt.Sprintf("%v", c.Err.UniqueCodes)})
	}
	if len(c.Err.StavesWithErrors) > 0 {
		rows = append(rows, StatSummary{Statistic: "Staves with errors", Value: fmt.Sprintf("%v", c.Err.StavesWithErrors)})
	}
	if c.Alpide.ChipTrailersSeen > 0 {
		rows = append(rows,
			StatSummary{Statistic: "ALPIDE chip trailers seen", Value: fmt.Sprintf("%d", c.Alpide.ChipTrailersSeen)},
			StatSummary{Statistic: "ALPIDE busy violations", Value: fmt.Sprintf("%d", c.Alpide.BusyViolations)},
			StatSummary{Statistic: "ALPIDE data overrun", Value: fmt.Sprintf("%d", c.Alpide.DataOverrun)},
			StatSummary{Statistic: "ALPIDE flushed incomplete", Value: fmt.Sprintf("%d", c.Alpide.FlushedIncomplete)},
			StatSummary{Statistic: "ALPIDE strobe extended", Value: fmt.Sprintf("%d", c.Alpide.StrobeExtended)},
			StatSummary{Statistic: "ALPIDE busy transitions", Value: fmt.Sprintf("%d", c.Alpide.BusyTransitions)},
		)
	}
	for bit, count := range c.Rdh.TriggerBitCounts {
		if count > 0 {
			rows = append(rows, StatSummary{
				Statistic: fmt.Sprintf("Trigger bit %d", bit),
				Value:     fmt.Sprintf("%d", count),
			})
		}
	}
	return rows
}
