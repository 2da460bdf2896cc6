package view

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/marmos91/fastpasta/internal/cdp"
	"github.com/marmos91/fastpasta/internal/rdh"
)

func wordWithID(id byte) [10]byte {
	var w [10]byte
	w[9] = id
	return w
}

func buildPayload(words [][10]byte) []byte {
	var out []byte
	for _, w := range words {
		out = append(out, w[:]...)
	}
	return out
}

func baseRDH() rdh.RDH {
	return rdh.RDH{
		RDH0:   rdh.RDH0{HeaderID: 7, HeaderSize: 64, SystemID: 0x20},
		LinkID: 3,
		RDH2:   rdh.RDH2{TriggerType: 0x10, StopBit: 1},
	}
}

func TestHBFViewPrintsHeaderRDHAndWordLines(t *testing.T) {
	ihw := wordWithID(0xE0)
	tdh := wordWithID(0xE8)
	tdh[1] = 0b0010_0000 // no_data

	batch := cdp.NewBatch()
	batch.Add(cdp.CDP{RDH: baseRDH(), Offset: 0x100, Payload: buildPayload([][10]byte{ihw, tdh})})

	var buf bytes.Buffer
	err := HBFView(&buf, batch, nil)
	require.NoError(t, err)

	out := buf.String()
	require.Contains(t, out, "RDH v7")
	require.Contains(t, out, "IHW ")
	require.Contains(t, out, "TDH ")
}

func TestHBFViewSuppressesDataWordAndCDWLines(t *testing.T) {
	ihw := wordWithID(0xE0)
	tdh := wordWithID(0xE8)
	tdh[0] = 0x10 // nonzero trigger_type, so bytes 10..15 do not read as format-0 padding
	data := wordWithID(0x20)
	cdw := wordWithID(0xF8)

	batch := cdp.NewBatch()
	batch.Add(cdp.CDP{RDH: baseRDH(), Offset: 0, Payload: buildPayload([][10]byte{ihw, tdh, data, cdw})})

	var buf bytes.Buffer
	require.NoError(t, HBFView(&buf, batch, nil))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	// two header lines, a blank line, then RDH, IHW and TDH only
	require.Len(t, lines, 6)
	for _, l := range lines {
		require.NotContains(t, l, "CDW")
	}
}

func TestHBFViewReportsAmbiguousWordsAsWarnings(t *testing.T) {
	ihw := wordWithID(0xE0)
	tdh := wordWithID(0xE8)
	tdh[0] = 0x10                 // nonzero trigger_type, so bytes 10..15 do not read as format-0 padding
	ambiguous := wordWithID(0x00) // not a legal data-word, TDT or CDW id in DATA

	batch := cdp.NewBatch()
	batch.Add(cdp.CDP{RDH: baseRDH(), Offset: 0, Payload: buildPayload([][10]byte{ihw, tdh, ambiguous})})

	var warnings []string
	var buf bytes.Buffer
	err := HBFView(&buf, batch, func(msg string) { warnings = append(warnings, msg) })
	require.NoError(t, err)
	require.NotEmpty(t, warnings)
}
