package stats

import (
	"regexp"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/marmos91/fastpasta/internal/metrics"
	"github.com/marmos91/fastpasta/internal/rdh"
)

// offsetRE extracts the absolute byte offset embedded in every
// recoverable error message (spec §4.6's finalize step, §6's contract
// that every error carries a "0xHEX:" token).
var offsetRE = regexp.MustCompile(`0x([0-9a-fA-F]+):`)

// codeRE extracts the [Ennnn] error code token.
var codeRE = regexp.MustCompile(`\[(E\d+)\]`)

// feeIDRE extracts the FEE id named in a sanity/running error message
// (spec §4.6: "FEE(?:.| )ID:(\d+)").
var feeIDRE = regexp.MustCompile(`FEE(?:.| )ID:(\d+)`)

// ErrorStats accumulates every error/fatal observed by the controller.
type ErrorStats struct {
	FatalMessage string `json:"fatal_message,omitempty" toml:"fatal_message,omitempty"`
	Messages     []string `json:"messages" toml:"messages"`
	// StavesWithErrors is populated during Finalize for the pixel-sensor
	// subsystem: every stave number whose FEE id appears in at least one
	// error message.
	StavesWithErrors []uint8 `json:"staves_with_errors,omitempty" toml:"staves_with_errors,omitempty"`
	// UniqueCodes is populated during Finalize: the set of distinct
	// [Ennnn] codes seen, sorted.
	UniqueCodes []string `json:"unique_codes,omitempty" toml:"unique_codes,omitempty"`
}

// RdhStats accumulates RDH/scanner-level counters.
type RdhStats struct {
	RDHSeen      uint64 `json:"rdh_seen" toml:"rdh_seen"`
	RDHFiltered  uint64 `json:"rdh_filtered" toml:"rdh_filtered"`
	PayloadBytes uint64 `json:"payload_bytes" toml:"payload_bytes"`

	Links      []uint8  `json:"links" toml:"links"`
	FeeIDs     []uint16 `json:"fee_ids" toml:"fee_ids"`
	LayerStave map[uint8][]uint8 `json:"layer_stave,omitempty" toml:"layer_stave,omitempty"`

	RdhVersion      uint8  `json:"rdh_version" toml:"rdh_version"`
	DataFormat      uint8  `json:"data_format" toml:"data_format"`
	SystemID        uint8  `json:"system_id" toml:"system_id"`
	RunTriggerType  uint32 `json:"run_trigger_type" toml:"run_trigger_type"`
	RunTriggerLabel string `json:"run_trigger_label" toml:"run_trigger_label"`

	// TriggerBitCounts fans each observed trigger_type out into a
	// per-bit counter (spec §4.6).
	TriggerBitCounts [32]uint64 `json:"trigger_bit_counts" toml:"trigger_bit_counts"`

	linkSet map[uint8]bool
	feeSet  map[uint16]bool
}

// TriggerPhysicsBit is the bit index of the physics (PhT) trigger in
// RDH2's trigger_type field, used by the custom "triggers_pht" check.
const TriggerPhysicsBit = 4

// AlpideStats accumulates the per-lane readout-flag tallies forwarded
// by every closed readout frame (spec §4.5.5).
type AlpideStats struct {
	ChipTrailersSeen    uint64 `json:"chip_trailers_seen" toml:"chip_trailers_seen"`
	BusyViolations      uint64 `json:"busy_violations" toml:"busy_violations"`
	DataOverrun         uint64 `json:"data_overrun" toml:"data_overrun"`
	TransmissionInFatal uint64 `json:"transmission_in_fatal" toml:"transmission_in_fatal"`
	FlushedIncomplete   uint64 `json:"flushed_incomplete" toml:"flushed_incomplete"`
	StrobeExtended      uint64 `json:"strobe_extended" toml:"strobe_extended"`
	BusyTransitions     uint64 `json:"busy_transitions" toml:"busy_transitions"`
}

func (a *AlpideStats) add(d AlpideDelta) {
	a.ChipTrailersSeen += d.ChipTrailersSeen
	a.BusyViolations += d.BusyViolations
	a.DataOverrun += d.DataOverrun
	a.TransmissionInFatal += d.TransmissionInFatal
	a.FlushedIncomplete += d.FlushedIncomplete
	a.StrobeExtended += d.StrobeExtended
	a.BusyTransitions += d.BusyTransitions
}

// Collector is the single-consumer stats controller of spec §4.6: it
// owns the receive half of the stats channel, aggregates every event,
// and latches the first Fatal.
type Collector struct {
	MaxTolerateErrors int
	PixelSensor       bool

	mu          sync.Mutex
	Err         ErrorStats
	Rdh         RdhStats
	Alpide      AlpideStats
	IsFinalized bool

	stopFlag atomic.Bool
	metrics  *metrics.Metrics
}

// NewCollector creates a Collector. maxTolerateErrors <= 0 disables the
// error-budget stop condition.
func NewCollector(maxTolerateErrors int, pixelSensor bool) *Collector {
	c := &Collector{MaxTolerateErrors: maxTolerateErrors, PixelSensor: pixelSensor}
	c.Rdh.linkSet = make(map[uint8]bool)
	c.Rdh.feeSet = make(map[uint16]bool)
	c.Rdh.LayerStave = make(map[uint8][]uint8)
	return c
}

// WithMetrics attaches a live metrics recorder; m may be nil.
func (c *Collector) WithMetrics(m *metrics.Metrics) *Collector {
	c.metrics = m
	return c
}

// StopRequested reports whether the global stop flag has been set (by a
// Fatal or by the error budget being exhausted). Read by the reader
// between batches (spec §5).
func (c *Collector) StopRequested() bool { return c.stopFlag.Load() }

// Run drains recv until it is closed, applying every event to the
// collector's state, then finalizes (spec §5: "Stats: owns the stats
// channel's receive half; exits when all sender halves are dropped;
// then finalizes").
func (c *Collector) Run(recv <-chan Event) {
	for ev := range recv {
		c.apply(ev)
	}
	c.Finalize()
}

func (c *Collector) apply(ev Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch ev.Kind {
	case EventFatal:
		if c.Err.FatalMessage == "" {
			c.Err.FatalMessage = ev.Message
			c.stopFlag.Store(true)
		}
		c.metrics.IncFatal()
	case EventError:
		c.Err.Messages = append(c.Err.Messages, ev.Message)
		if c.MaxTolerateErrors > 0 && len(c.Err.Messages) >= c.MaxTolerateErrors {
			c.stopFlag.Store(true)
		}
		if m := codeRE.FindStringSubmatch(ev.Message); m != nil {
			c.metrics.IncError(m[1])
		}
	case EventRDHSeen:
		c.Rdh.RDHSeen += ev.Count
		c.metrics.AddRDHsSeen(int(ev.Count))
	case EventRDHFiltered:
		c.Rdh.RDHFiltered += ev.Count
	case EventPayloadSize:
		c.Rdh.PayloadBytes += ev.Count
		c.metrics.AddPayloadBytes(int(ev.Count))
	case EventLinkObserved:
		if !c.Rdh.linkSet[ev.LinkID] {
			c.Rdh.linkSet[ev.LinkID] = true
			c.Rdh.Links = append(c.Rdh.Links, ev.LinkID)
		}
	case EventFeeID:
		if !c.Rdh.feeSet[ev.FeeID] {
			c.Rdh.feeSet[ev.FeeID] = true
			c.Rdh.FeeIDs = append(c.Rdh.FeeIDs, ev.FeeID)
		}
	case EventLayerStaveSeen:
		staves := c.Rdh.LayerStave[ev.Layer]
		for _, s := range staves {
			if s == ev.Stave {
				return
			}
		}
		c.Rdh.LayerStave[ev.Layer] = append(staves, ev.Stave)
	case EventRdhVersion:
		c.Rdh.RdhVersion = ev.RdhVersion
	case EventDataFormat:
		c.Rdh.DataFormat = ev.DataFormat
	case EventSystemID:
		c.Rdh.SystemID = ev.SystemID
	case EventRunTriggerType:
		c.Rdh.RunTriggerType = ev.RunTrigger
		c.Rdh.RunTriggerLabel = ev.RunTriggerLabel
	case EventTriggerType:
		for bit := 0; bit < 32; bit++ {
			if ev.TriggerType&(1<<uint(bit)) != 0 {
				c.Rdh.TriggerBitCounts[bit]++
			}
		}
	case EventAlpideStats:
		c.Alpide.add(ev.Alpide)
	}
}

// Finalize performs the post-drain steps of spec §4.6: sorting error
// messages by embedded offset, extracting the unique code set, and (for
// the pixel-sensor subsystem) mapping FEE ids named in error messages
// back to staves.
func (c *Collector) Finalize() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.IsFinalized {
		return
	}
	c.IsFinalized = true

	sort.SliceStable(c.Err.Messages, func(i, j int) bool {
		return offsetOf(c.Err.Messages[i]) < offsetOf(c.Err.Messages[j])
	})

	seen := map[string]bool{}
	var codes []string
	for _, msg := range c.Err.Messages {
		if m := codeRE.FindStringSubmatch(msg); m != nil && !seen[m[1]] {
			seen[m[1]] = true
			codes = append(codes, m[1])
		}
	}
	sort.Strings(codes)
	c.Err.UniqueCodes = codes

	if c.PixelSensor {
		staveSeen := map[uint8]bool{}
		var staves []uint8
		for _, msg := range c.Err.Messages {
			m := feeIDRE.FindStringSubmatch(msg)
			if m == nil {
				continue
			}
			feeID, err := strconv.ParseUint(m[1], 10, 16)
			if err != nil {
				continue
			}
			stave := rdh.FeeStave(uint16(feeID))
			if !staveSeen[stave] {
				staveSeen[stave] = true
				staves = append(staves, stave)
			}
		}
		sort.Slice(staves, func(i, j int) bool { return staves[i] < staves[j] })
		c.Err.StavesWithErrors = staves
	}
}

func offsetOf(msg string) uint64 {
	m := offsetRE.FindStringSubmatch(msg)
	if m == nil {
		return ^uint64(0)
	}
	v, err := strconv.ParseUint(m[1], 16, 64)
	if err != nil {
		return ^uint64(0)
	}
	return v
}

// HasFatal reports whether a Fatal was ever latched.
func (c *Collector) HasFatal() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Err.FatalMessage != ""
}

// HasErrors reports whether any error (fatal or recoverable) was seen.
func (c *Collector) HasErrors() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Err.FatalMessage != "" || len(c.Err.Messages) > 0
}
