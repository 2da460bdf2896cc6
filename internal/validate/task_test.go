package validate

import (
	"testing"

	"github.com/marmos91/fastpasta/internal/cdp"
	"github.com/marmos91/fastpasta/internal/rdh"
	"github.com/marmos91/fastpasta/internal/stats"
	"github.com/stretchr/testify/require"
)

func wordWithID(id byte) [10]byte {
	var w [10]byte
	w[9] = id
	return w
}

func baseRDH() rdh.RDH {
	var r rdh.RDH
	r.RDH0.HeaderID = 7
	r.RDH0.HeaderSize = 0x40
	r.RDH0.FeeID = 0x0000 // layer 0 => inner
	r.RDH0.SystemID = 0x20
	r.RDH2.TriggerType = 0x6A03
	r.RDH2.StopBit = 0
	return r
}

func buildPayload(words [][10]byte) []byte {
	var out []byte
	for _, w := range words {
		out = append(out, w[:]...)
	}
	return out
}

func TestTaskProcessesFullFrame(t *testing.T) {
	ch := make(chan stats.Event, 64)
	task := NewTask(Config{PixelSensor: true, AlpideEnabled: true}, ch)

	ihw := wordWithID(0xE0)
	tdh := wordWithID(0xE8) // no_data = 0 -> DATA
	tdh[0] = 0x10           // nonzero trigger_type, so bytes 10..15 do not read as format-0 padding

	dataWord := wordWithID(0x40) // legal data-word id (first OB connector range)
	dataWord[9] = 0x40           // on an inner-layer CDP the lane is id & 0x1F = 0

	tdt := wordWithID(0xF0)
	tdt[8] = 0x01 // packet_done = 1

	payload := buildPayload([][10]byte{ihw, tdh, dataWord, tdt})

	c := cdp.CDP{RDH: baseRDH(), Payload: payload, Offset: 0}
	task.Process(c)

	close(ch)
	var sawAlpideStats bool
	for ev := range ch {
		if ev.Kind == stats.EventAlpideStats {
			sawAlpideStats = true
		}
		require.NotEqual(t, stats.EventFatal, ev.Kind)
	}
	require.True(t, sawAlpideStats)
}

func TestTaskReportsAlpideChipCountMismatchWithDistinctCode(t *testing.T) {
	ch := make(chan stats.Event, 64)
	task := NewTask(Config{AlpideEnabled: true}, ch)

	r := baseRDH()
	r.RDH0.FeeID = 0x5000      // layer 5 => outer barrel, expects 7 chips per lane
	r.OffsetToNext = 0x40 + 40 // RDH plus four 10-byte words, so the sanity check passes
	r.MemorySize = 0x40 + 40

	ihw := wordWithID(0xE0)
	tdh := wordWithID(0xE8) // no_data = 0 -> DATA
	tdh[0] = 0x10           // nonzero trigger_type, so bytes 10..15 do not read as format-0 padding

	// One chip header/bunch-counter/trailer, followed by zero bytes that
	// the lane decoder skips as padding: a single chip where the outer
	// layer's default expects 7.
	dataWord := [10]byte{0xA0, 5, 0xB0, 0, 0, 0, 0, 0, 0, 0x40}

	tdt := wordWithID(0xF0)
	tdt[8] = 0x01 // packet_done = 1

	payload := buildPayload([][10]byte{ihw, tdh, dataWord, tdt})
	task.Process(cdp.CDP{RDH: r, Payload: payload, Offset: 0})

	close(ch)
	var sawCountCode bool
	for ev := range ch {
		if ev.Kind == stats.EventError {
			require.Contains(t, ev.Message, "E9004")
			require.NotContains(t, ev.Message, "E9003")
			require.NotContains(t, ev.Message, "E9005")
			sawCountCode = true
		}
	}
	require.True(t, sawCountCode)
}

func TestTaskReportsSanityError(t *testing.T) {
	ch := make(chan stats.Event, 64)
	task := NewTask(Config{}, ch)

	r := baseRDH()
	r.RDH0.HeaderSize = 0x20 // violates sanity
	task.Process(cdp.CDP{RDH: r, Offset: 0x100})

	close(ch)
	found := false
	for ev := range ch {
		if ev.Kind == stats.EventError {
			require.Contains(t, ev.Message, "E10")
			found = true
		}
	}
	require.True(t, found)
}
