// Package view implements the human-readable HBF/ALPIDE-readout-frame
// listing mode: a line-per-word dump of RDHs and protocol words as they
// are decoded, without running the validation layers (spec §6's
// "view" mode, SPEC_FULL.md §4).
package view

import (
	"fmt"
	"io"

	"github.com/marmos91/fastpasta/internal/cdp"
	"github.com/marmos91/fastpasta/internal/validate/payload"
	"github.com/marmos91/fastpasta/internal/words"
)

// HBFView renders every CDP in batch as a header line, note the order
// of the original hbf_view: every word within the payload is then
// chunked and fed through its own FSM instance, with ambiguous words
// best-guessed and shown anyway (grounded on
// analyze/view/hbf_view.rs).
func HBFView(w io.Writer, batch *cdp.Batch, onWarning func(string)) error {
	if err := printHeader(w); err != nil {
		return err
	}
	fsm := payload.NewFSM()
	for _, c := range batch.CDPs {
		if err := printRDHLine(w, c); err != nil {
			return err
		}

		words, _, err := payload.Chunk(c.Payload)
		if err != nil {
			if onWarning != nil {
				onWarning(err.Error())
			}
			fsm.ResetFSM()
			continue
		}

		for i, wb := range words {
			kind, ferr := fsm.Advance(wb)
			if ferr != nil && onWarning != nil {
				onWarning(ferr.Error())
			}
			pos := c.Offset + 64 + uint64(i*payload.WordSize)
			if err := printWordLine(w, kind, wb, pos); err != nil {
				return err
			}
		}
	}
	return nil
}

func printHeader(w io.Writer) error {
	_, err := fmt.Fprintf(w, "\n%-10s%-6s%37s%12s%12s%12s%12s\n%-10s%-6s%36s %12s%12s%12s%12s\n\n",
		"Memory", "Word", "Trig.", "Packet", "Expect", "Link", "Lane  ",
		"Position", "type", "type", "status", "Data? ", "ID  ", "faults")
	return err
}

func printRDHLine(w io.Writer, c cdp.CDP) error {
	_, err := fmt.Fprintf(w, "%8X: RDH v%d       trigger=0x%08X                                #%-18d\n",
		c.Offset, c.RDH.RDH0.HeaderID, c.RDH.RDH2.TriggerType, c.RDH.LinkID)
	return err
}

func formatWordSlice(raw [10]byte) string {
	s := ""
	for _, b := range raw {
		s += fmt.Sprintf("%02X ", b)
	}
	return s
}

func printWordLine(w io.Writer, kind payload.WordKind, raw [10]byte, pos uint64) error {
	slice := formatWordSlice(raw)
	posStr := fmt.Sprintf("%8X:", pos)

	switch kind {
	case payload.WordIHW, payload.WordIHWContinuation:
		_, err := fmt.Fprintf(w, "%s IHW %s\n", posStr, slice)
		return err
	case payload.WordTDH, payload.WordTDHAfterPacketDone:
		tdh := words.ParseTDH(words.Word{Raw: raw})
		_, err := fmt.Fprintf(w, "%s TDH %s trigger=0x%03X continuation=%v no_data=%v\n",
			posStr, slice, tdh.TriggerType(), tdh.Continuation(), tdh.NoData())
		return err
	case payload.WordTDHContinuation:
		tdh := words.ParseTDH(words.Word{Raw: raw})
		_, err := fmt.Fprintf(w, "%s TDH %s trigger=0x%03X continuation=%v\n",
			posStr, slice, tdh.TriggerType(), tdh.Continuation())
		return err
	case payload.WordTDT:
		tdt := words.ParseTDT(words.Word{Raw: raw})
		_, err := fmt.Fprintf(w, "%s TDT %s packet_done=%v lane_status=0x%X\n",
			posStr, slice, tdt.PacketDone(), tdt.LaneStatus())
		return err
	case payload.WordDDW0:
		ddw0 := words.ParseDDW0(words.Word{Raw: raw})
		_, err := fmt.Fprintf(w, "%s DDW %s lane_status=0x%X\n", posStr, slice, ddw0.LaneStatus())
		return err
	default:
		return nil // CDW and DataWord are not displayed, matching the original.
	}
}
