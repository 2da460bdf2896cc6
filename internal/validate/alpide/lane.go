package alpide

import (
	"fmt"
	"sort"
	"strings"

	"github.com/marmos91/fastpasta/internal/stats"
	"github.com/marmos91/fastpasta/internal/words"
)

// Default chip counts per spec §4.5.5, overridable via custom checks.
const (
	InnerLayerChipCount = 1
	OuterLayerChipCount = 7
)

// DefaultChipOrdersOB are the two legal outer-barrel chip-id sequences
// when no custom ordering is configured.
var DefaultChipOrdersOB = [2][]uint8{
	{0, 1, 2, 3, 4, 5, 6},
	{8, 9, 10, 11, 12, 13, 14},
}

type chipData struct {
	chipID        uint8
	bunchCounter  *uint8
	duplicateErrs []string
}

// LaneConfig parameterizes a LaneAnalyzer's post-decode checks.
type LaneConfig struct {
	Layer words.Layer
	// ChipCountOB overrides OuterLayerChipCount when nonzero.
	ChipCountOB uint8
	// ChipOrdersOB overrides DefaultChipOrdersOB when both entries are
	// non-empty.
	ChipOrdersOB [2][]uint8
}

// LaneAnalyzer decodes and checks a single lane's worth of ALPIDE bytes
// within one readout frame (spec §4.5.5).
type LaneAnalyzer struct {
	cfg        LaneConfig
	laneNumber uint8

	headerSeen bool
	lastChipID uint8
	skipBytes  int
	nextIsBC   bool
	fatalStop  bool

	chips  []*chipData
	delta  stats.AlpideDelta
}

// NewLaneAnalyzer creates an analyzer for the lane identified by
// laneNumber (already translated from the raw lane_id via
// words.IBDataWordIDToLane / words.OBDataWordIDToLane).
func NewLaneAnalyzer(laneNumber uint8, cfg LaneConfig) *LaneAnalyzer {
	return &LaneAnalyzer{cfg: cfg, laneNumber: laneNumber}
}

// Decode processes one ALPIDE byte, updating internal decode state and
// readout-flag tallies. It never returns an error directly; duplicate
// bunch counters are recorded for Finish to surface, and unknown bytes
// are ignored.
func (a *LaneAnalyzer) Decode(b byte) {
	if a.fatalStop {
		return
	}
	if a.skipBytes > 0 {
		a.skipBytes--
		return
	}
	if a.nextIsBC {
		a.storeBunchCounter(b)
		a.nextIsBC = false
		return
	}
	if !a.headerSeen && b == 0x00 {
		return // padding byte before any chip header
	}

	kind, ape := classify(b)
	switch kind {
	case WordChipHeader:
		a.headerSeen = true
		a.lastChipID = b & 0b1111
		a.nextIsBC = true
	case WordChipEmptyFrame:
		a.headerSeen = false
		a.lastChipID = b & 0b1111
		a.nextIsBC = true
	case WordChipTrailer:
		a.headerSeen = false
		a.delta.ChipTrailersSeen++
		a.tallyReadoutFlags(b & 0b1111)
	case WordRegionHeader:
		a.headerSeen = true
	case WordDataShort:
		a.skipBytes = 1
	case WordDataLong:
		a.skipBytes = 2
	case WordBusyOn, WordBusyOff:
		a.delta.BusyTransitions++
	case WordAPE:
		if ape.Severity() == SeverityFatal {
			a.fatalStop = true
			a.delta.TransmissionInFatal++
		}
	case WordUnknown:
		// Logged at the caller's discretion; not itself an error.
	}
}

// tallyReadoutFlags OR-tallies the 4 readout-flag bits of a ChipTrailer
// into the frame's ALPIDE stats (spec §4.5.5: "OR-tallied ... into the
// AlpideStats counters").
func (a *LaneAnalyzer) tallyReadoutFlags(flags byte) {
	if flags&0b0001 != 0 {
		a.delta.BusyViolations++
	}
	if flags&0b0010 != 0 {
		a.delta.DataOverrun++
	}
	if flags&0b0100 != 0 {
		a.delta.FlushedIncomplete++
	}
	if flags&0b1000 != 0 {
		a.delta.StrobeExtended++
	}
}

func (a *LaneAnalyzer) storeBunchCounter(bc uint8) {
	for _, cd := range a.chips {
		if cd.chipID == a.lastChipID {
			if cd.bunchCounter != nil {
				cd.duplicateErrs = append(cd.duplicateErrs, fmt.Sprintf(
					"bunch counter already set for chip %d, is %d, tried to set to %d",
					cd.chipID, *cd.bunchCounter, bc))
				return
			}
			v := bc
			cd.bunchCounter = &v
			return
		}
	}
	v := bc
	a.chips = append(a.chips, &chipData{chipID: a.lastChipID, bunchCounter: &v})
}

// LaneIssues categorizes the messages a lane's Finish check produced by
// which of the three distinct ALPIDE checks failed (spec §4.5.5/§7:
// bunch-counter mismatch, chip-count mismatch, chip-order mismatch), so
// the caller can tag each with its own error code instead of one
// catch-all code for every ALPIDE failure.
type LaneIssues struct {
	Bunch []string
	Count []string
	Order []string
}

func (li LaneIssues) empty() bool {
	return len(li.Bunch) == 0 && len(li.Count) == 0 && len(li.Order) == 0
}

// Finish runs the post-decode checks (bunch-counter agreement, chip
// count, chip order) and returns the accumulated ALPIDE stats delta plus
// the messages of every check that failed, categorized by which check
// produced them.
func (a *LaneAnalyzer) Finish() (stats.AlpideDelta, LaneIssues) {
	var issues LaneIssues
	if msg := a.checkBunchCounters(); msg != "" {
		issues.Bunch = append(issues.Bunch, fmt.Sprintf("lane %d: Chip bunch counter mismatch:%s", a.laneNumber, msg))
	}
	if msg := a.checkChipCount(); msg != "" {
		issues.Count = append(issues.Count, fmt.Sprintf("lane %d: Chip ID count mismatch:%s", a.laneNumber, msg))
	} else if msg := a.checkChipOrder(); msg != "" {
		issues.Order = append(issues.Order, fmt.Sprintf("lane %d: Chip ID order mismatch:%s", a.laneNumber, msg))
	}
	for _, cd := range a.chips {
		for _, d := range cd.duplicateErrs {
			issues.Bunch = append(issues.Bunch, fmt.Sprintf("lane %d: %s", a.laneNumber, d))
		}
	}
	return a.delta, issues
}

func (a *LaneAnalyzer) checkBunchCounters() string {
	bcToChips := map[uint8][]uint8{}
	for _, cd := range a.chips {
		if cd.bunchCounter == nil {
			continue
		}
		bcToChips[*cd.bunchCounter] = append(bcToChips[*cd.bunchCounter], cd.chipID)
	}
	if len(bcToChips) <= 1 {
		return ""
	}
	keys := make([]uint8, 0, len(bcToChips))
	for bc := range bcToChips {
		keys = append(keys, bc)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	var b strings.Builder
	for _, bc := range keys {
		fmt.Fprintf(&b, " bunch counter %d: chips %v;", bc, bcToChips[bc])
	}
	return b.String()
}

func (a *LaneAnalyzer) chipIDs() []uint8 {
	ids := make([]uint8, len(a.chips))
	for i, cd := range a.chips {
		ids[i] = cd.chipID
	}
	return ids
}

func (a *LaneAnalyzer) expectedChipCountOB() uint8 {
	if a.cfg.ChipCountOB != 0 {
		return a.cfg.ChipCountOB
	}
	return OuterLayerChipCount
}

func (a *LaneAnalyzer) checkChipCount() string {
	if a.cfg.Layer == words.LayerInner {
		if len(a.chips) != InnerLayerChipCount {
			return fmt.Sprintf(" expected %d chip id in IB but found %d: %v", InnerLayerChipCount, len(a.chips), a.chipIDs())
		}
		return ""
	}
	want := a.expectedChipCountOB()
	if len(a.chips) != int(want) {
		return fmt.Sprintf(" expected %d chip id(s) in OB but found %d: %v", want, len(a.chips), a.chipIDs())
	}
	return ""
}

func (a *LaneAnalyzer) chipOrdersOB() [2][]uint8 {
	if len(a.cfg.ChipOrdersOB[0]) > 0 && len(a.cfg.ChipOrdersOB[1]) > 0 {
		return a.cfg.ChipOrdersOB
	}
	return DefaultChipOrdersOB
}

func (a *LaneAnalyzer) checkChipOrder() string {
	ids := a.chipIDs()
	if a.cfg.Layer == words.LayerInner {
		if len(ids) > 0 && ids[0] != a.laneNumber {
			return fmt.Sprintf(" expected chip id %d in IB but found %d", a.laneNumber, ids[0])
		}
		return ""
	}
	orders := a.chipOrdersOB()
	if equalIDs(ids, orders[0]) || equalIDs(ids, orders[1]) {
		return ""
	}
	return fmt.Sprintf(" expected %v or %v but found %v", orders[0], orders[1], ids)
}

func equalIDs(a, b []uint8) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
