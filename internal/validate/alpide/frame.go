package alpide

import (
	"fmt"
	"sort"
	"strings"

	"github.com/marmos91/fastpasta/internal/stats"
	"github.com/marmos91/fastpasta/internal/words"
)

// LaneData is one lane's raw ALPIDE payload bytes within a closed
// readout frame, keyed by the raw data-word lane id byte (before
// IB/OB translation).
type LaneData struct {
	LaneID uint8
	Bytes  []byte
}

// innerLaneGroups are the three expected inner-barrel lane groupings
// (spec §4.5.5): 3 chips from each of {0,1,2}, {3,4,5}, {6,7,8}.
var innerLaneGroups = [][]uint8{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
}

// FrameConfig parameterizes FrameAnalyzer (spec §4.5.5's custom-check
// overrides).
type FrameConfig struct {
	Layer        words.Layer
	ChipCountOB  uint8
	ChipOrdersOB [2][]uint8
	// FatalLanes are lane numbers excluded from the expected inner-layer
	// grouping because a prior fatal APE disabled their checks.
	FatalLanes map[uint8]bool
}

// FrameIssues categorizes every ALPIDE check failure observed across a
// frame's lanes by which of the three distinct checks (spec §4.5.5/§7)
// produced it: bunch-counter mismatch, chip-count mismatch, chip-order
// mismatch. The inner-layer lane-grouping check (missing chips from an
// expected group) is a chip-count failure.
type FrameIssues struct {
	Bunch []string
	Count []string
	Order []string
}

func (fi FrameIssues) empty() bool {
	return len(fi.Bunch) == 0 && len(fi.Count) == 0 && len(fi.Order) == 0
}

// Error concatenates every category into one string, for callers that
// only want a human-readable summary (e.g. logging) rather than the
// per-category breakdown.
func (fi FrameIssues) Error() string {
	var all []string
	all = append(all, fi.Bunch...)
	all = append(all, fi.Count...)
	all = append(all, fi.Order...)
	return strings.Join(all, "; ")
}

// AnalyzeFrame decodes every lane in a closed readout frame and runs the
// per-lane and frame-level checks of spec §4.5.5, returning the combined
// ALPIDE stats delta and every check failure categorized by which of the
// three distinct checks produced it.
func AnalyzeFrame(lanes []LaneData, cfg FrameConfig) (stats.AlpideDelta, FrameIssues) {
	var total stats.AlpideDelta
	var issues FrameIssues

	observedLanes := make([]uint8, 0, len(lanes))
	for _, ld := range lanes {
		var laneNumber uint8
		if cfg.Layer == words.LayerInner {
			laneNumber = words.IBDataWordIDToLane(ld.LaneID)
		} else {
			laneNumber = words.OBDataWordIDToLane(ld.LaneID)
		}
		observedLanes = append(observedLanes, laneNumber)

		la := NewLaneAnalyzer(laneNumber, LaneConfig{
			Layer:        cfg.Layer,
			ChipCountOB:  cfg.ChipCountOB,
			ChipOrdersOB: cfg.ChipOrdersOB,
		})
		for _, b := range ld.Bytes {
			la.Decode(b)
		}
		delta, li := la.Finish()
		total = addDeltas(total, delta)
		issues.Bunch = append(issues.Bunch, li.Bunch...)
		issues.Count = append(issues.Count, li.Count...)
		issues.Order = append(issues.Order, li.Order...)
	}

	if cfg.Layer == words.LayerInner {
		if msg := checkInnerLaneGrouping(observedLanes, cfg.FatalLanes); msg != "" {
			issues.Count = append(issues.Count, msg)
		}
	}

	return total, issues
}

func checkInnerLaneGrouping(observed []uint8, fatalLanes map[uint8]bool) string {
	seen := make(map[uint8]bool, len(observed))
	for _, l := range observed {
		seen[l] = true
	}

	var missingGroups []string
	for _, group := range innerLaneGroups {
		allFatal := true
		var missing []uint8
		for _, lane := range group {
			if fatalLanes[lane] {
				continue
			}
			allFatal = false
			if !seen[lane] {
				missing = append(missing, lane)
			}
		}
		if allFatal || len(missing) == 0 {
			continue
		}
		sort.Slice(missing, func(i, j int) bool { return missing[i] < missing[j] })
		missingGroups = append(missingGroups, fmt.Sprintf("group %v missing lanes %v", group, missing))
	}
	if len(missingGroups) == 0 {
		return ""
	}
	return "inner-layer lane grouping incomplete: " + strings.Join(missingGroups, "; ")
}

func addDeltas(a, b stats.AlpideDelta) stats.AlpideDelta {
	return stats.AlpideDelta{
		ChipTrailersSeen:    a.ChipTrailersSeen + b.ChipTrailersSeen,
		BusyViolations:      a.BusyViolations + b.BusyViolations,
		DataOverrun:         a.DataOverrun + b.DataOverrun,
		TransmissionInFatal: a.TransmissionInFatal + b.TransmissionInFatal,
		FlushedIncomplete:   a.FlushedIncomplete + b.FlushedIncomplete,
		StrobeExtended:      a.StrobeExtended + b.StrobeExtended,
		BusyTransitions:     a.BusyTransitions + b.BusyTransitions,
	}
}
