package stats

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/marmos91/fastpasta/internal/rdh"
	"github.com/marmos91/fastpasta/internal/validate/sanity"
)

func TestCollectorAggregatesBasicEvents(t *testing.T) {
	c := NewCollector(0, false)
	ch := make(chan Event, 16)
	ch <- RDHSeen(5)
	ch <- RDHFiltered(2)
	ch <- PayloadSize(1024)
	ch <- Event{Kind: EventLinkObserved, LinkID: 3}
	ch <- Event{Kind: EventLinkObserved, LinkID: 3}
	close(ch)

	c.Run(ch)
	require.Equal(t, uint64(5), c.Rdh.RDHSeen)
	require.Equal(t, uint64(2), c.Rdh.RDHFiltered)
	require.Equal(t, uint64(1024), c.Rdh.PayloadBytes)
	require.Equal(t, []uint8{3}, c.Rdh.Links)
	require.True(t, c.IsFinalized)
}

func TestCollectorFatalLatchesOnlyOnce(t *testing.T) {
	c := NewCollector(0, false)
	ch := make(chan Event, 4)
	ch <- Event{Kind: EventFatal, Message: "first fatal"}
	ch <- Event{Kind: EventFatal, Message: "second fatal"}
	close(ch)
	c.Run(ch)
	require.Equal(t, "first fatal", c.Err.FatalMessage)
	require.True(t, c.StopRequested())
}

func TestCollectorErrorBudgetStopsPipeline(t *testing.T) {
	c := NewCollector(2, false)
	ch := make(chan Event, 4)
	ch <- Event{Kind: EventError, Message: FormatError(CodeRdhSanity, 0x10, "x")}
	require.False(t, c.StopRequested())
	ch <- Event{Kind: EventError, Message: FormatError(CodeRdhSanity, 0x20, "y")}
	close(ch)
	c.Run(ch)
	require.True(t, c.StopRequested())
}

func TestFinalizeSortsByOffsetAndExtractsCodes(t *testing.T) {
	c := NewCollector(0, false)
	ch := make(chan Event, 4)
	ch <- Event{Kind: EventError, Message: FormatError(CodeRdhRunning, 0x200, "b")}
	ch <- Event{Kind: EventError, Message: FormatError(CodeRdhSanity, 0x10, "a")}
	close(ch)
	c.Run(ch)

	require.Equal(t, []string{"E10", "E11"}, c.Err.UniqueCodes)
	require.True(t, strings.Contains(c.Err.Messages[0], "0x10:"))
	require.True(t, strings.Contains(c.Err.Messages[1], "0x200:"))
}

func TestFinalizeMapsFeeIDsToStavesForPixelSensor(t *testing.T) {
	c := NewCollector(0, true)
	ch := make(chan Event, 2)
	ch <- Event{Kind: EventError, Message: FormatError(CodeRdhSanity, 0x10, "FEE ID:20519")}
	close(ch)
	c.Run(ch)
	require.NotEmpty(t, c.Err.StavesWithErrors)
}

// TestFinalizeReachesFeeIDFromRealSanityValidator proves the "FEE ID:<n>"
// contract the finalize step relies on is actually emitted by a real
// validator, not only by the synthetic literal above.
func TestFinalizeReachesFeeIDFromRealSanityValidator(t *testing.T) {
	v := sanity.New(false)
	r, _ := rdh.ParseRDHFromRDH0(rdh.RDH0{
		HeaderID:   7,
		HeaderSize: 0x40,
		FeeID:      0x8000,
	}, make([]byte, 56))
	r.OffsetToNext = 0x40
	r.MemorySize = 0x40
	r.RDH2.TriggerType = 0x6A03

	err := v.Check(r)
	require.Error(t, err)

	c := NewCollector(0, true)
	ch := make(chan Event, 2)
	ch <- Event{Kind: EventError, Message: FormatError(CodeRdhSanity, 0x10, err.Error())}
	close(ch)
	c.Run(ch)

	require.NotEmpty(t, c.Err.StavesWithErrors)
	require.Equal(t, []uint8{rdh.FeeStave(0x8000)}, c.Err.StavesWithErrors)
}

func TestJSONRoundTrip(t *testing.T) {
	c := NewCollector(0, false)
	ch := make(chan Event, 2)
	ch <- RDHSeen(7)
	close(ch)
	c.Run(ch)

	data, err := c.MarshalJSON()
	require.NoError(t, err)
	loaded, err := LoadJSON(data)
	require.NoError(t, err)
	require.Equal(t, uint64(7), loaded.Rdh.RDHSeen)
	require.Empty(t, c.Compare(loaded))
}

func TestTOMLRoundTrip(t *testing.T) {
	c := NewCollector(0, false)
	ch := make(chan Event, 2)
	ch <- RDHSeen(3)
	close(ch)
	c.Run(ch)

	data, err := c.MarshalTOML()
	require.NoError(t, err)
	loaded, err := LoadTOML(data)
	require.NoError(t, err)
	require.Equal(t, uint64(3), loaded.Rdh.RDHSeen)
}

func TestCustomChecksCDPMismatch(t *testing.T) {
	c := NewCollector(0, false)
	ch := make(chan Event, 2)
	ch <- RDHSeen(10)
	close(ch)
	c.Run(ch)

	expected := uint32(5)
	mismatches := c.ValidateCustomChecks(CustomChecks{CDPs: &expected})
	require.Len(t, mismatches, 1)
	require.Contains(t, mismatches[0], "E40")
}

func TestPrintErrorsHonorsMuteAndFilter(t *testing.T) {
	c := NewCollector(0, false)
	ch := make(chan Event, 2)
	ch <- Event{Kind: EventError, Message: FormatError(CodeRdhSanity, 1, "x")}
	ch <- Event{Kind: EventError, Message: FormatError(CodeRdhRunning, 2, "y")}
	close(ch)
	c.Run(ch)

	var buf bytes.Buffer
	c.PrintErrors(&buf, false, []string{"10"})
	require.Contains(t, buf.String(), "E10")
	require.NotContains(t, buf.String(), "E11")

	buf.Reset()
	c.PrintErrors(&buf, true, nil)
	require.Empty(t, buf.String())
}
