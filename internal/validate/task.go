// Package validate wires the four validation layers (§4.5.1-4.5.5) into
// a single per-dispatch-id task that consumes CDPs in order.
package validate

import (
	"github.com/marmos91/fastpasta/internal/cdp"
	"github.com/marmos91/fastpasta/internal/rdh"
	"github.com/marmos91/fastpasta/internal/stats"
	"github.com/marmos91/fastpasta/internal/validate/alpide"
	"github.com/marmos91/fastpasta/internal/validate/payload"
	"github.com/marmos91/fastpasta/internal/validate/running"
	"github.com/marmos91/fastpasta/internal/validate/sanity"
	"github.com/marmos91/fastpasta/internal/words"
)

// Config parameterizes a Task: which checks run and with what
// thresholds (spec §4.5, §6's opaque Config capability).
type Config struct {
	PixelSensor   bool
	AlpideEnabled bool
	AlpideFrame   alpide.FrameConfig
}

// laneFrame accumulates one lane's data-word bytes for the readout
// frame currently open between a TDH and its closing TDT.
type laneFrame struct {
	laneID uint8
	bytes  []byte
}

// Task is the per-link/per-FEE validator described by spec §4.5: one
// instance per dispatch id, consuming its CDPs strictly in order.
type Task struct {
	cfg Config

	sanity  *sanity.Validator
	running *running.Validator
	fsm     *payload.FSM

	frameOpen  bool
	frameStart uint64
	lanes      map[uint8]*laneFrame
	layer      words.Layer

	sink stats.Sink
}

// NewTask creates a validator task for one dispatch id.
func NewTask(cfg Config, sink stats.Sink) *Task {
	return &Task{
		cfg:     cfg,
		sanity:  sanity.New(cfg.PixelSensor),
		running: running.New(),
		fsm:     payload.NewFSM(),
		lanes:   make(map[uint8]*laneFrame),
		sink:    sink,
	}
}

func (t *Task) emit(e stats.Event) {
	if t.sink != nil {
		t.sink <- e
	}
}

func (t *Task) emitError(code string, offset uint64, detail string) {
	err := stats.NewRecoverableError(code, offset, detail)
	t.emit(stats.Event{Kind: stats.EventError, Message: err.Error()})
}

// Process runs one CDP through the sanity, running, preprocessor, FSM,
// and (when enabled) ALPIDE layers, in the order spec §4.5 prescribes.
// Errors at any layer are reported to the stats sink and do not stop
// processing of the remaining CDPs, matching the Recoverable-error
// policy of spec §7.
func (t *Task) Process(c cdp.CDP) {
	t.layer = words.LayerFromNumber(rdh.FeeLayer(c.RDH.RDH0.FeeID))

	if err := t.sanity.Check(c.RDH); err != nil {
		t.emitError(stats.CodeRdhSanity, c.Offset, err.Error())
	}
	if err := t.running.Check(c.RDH); err != nil {
		t.emitError(stats.CodeRdhRunning, c.Offset, err.Error())
	}

	if len(c.Payload) == 0 {
		return
	}
	wordBytes, _, err := payload.Chunk(c.Payload)
	if err != nil {
		t.emitError(stats.CodePayloadPadding, c.Offset, err.Error())
		t.fsm.ResetFSM()
		return
	}

	for i, wb := range wordBytes {
		wordOffset := c.Offset + rdh.Size + uint64(i*payload.WordSize)
		kind, ferr := t.fsm.Advance(wb)
		if ferr != nil {
			t.emitError(stats.CodeFsmAmbiguous, wordOffset, ferr.Error())
		}
		t.handleWord(kind, wb, wordOffset)
	}
}

func (t *Task) handleWord(kind payload.WordKind, raw [10]byte, offset uint64) {
	switch kind {
	case payload.WordTDH, payload.WordTDHContinuation, payload.WordTDHAfterPacketDone:
		if !t.frameOpen {
			t.frameOpen = true
			t.frameStart = offset
			t.lanes = make(map[uint8]*laneFrame)
		}
	case payload.WordDataWord:
		dw := words.ParseDataWord(words.Word{Raw: raw})
		lf, ok := t.lanes[dw.LaneID()]
		if !ok {
			lf = &laneFrame{laneID: dw.LaneID()}
			t.lanes[dw.LaneID()] = lf
		}
		lf.bytes = append(lf.bytes, dw.Data()...)
	case payload.WordTDT:
		tdt := words.ParseTDT(words.Word{Raw: raw})
		if tdt.PacketDone() {
			t.closeFrame(offset)
		}
	case payload.WordDDW0:
		ddw0 := words.ParseDDW0(words.Word{Raw: raw})
		if !ddw0.IsReservedZero() {
			t.emitError(stats.CodeRdhSanity, offset, "DDW0 reserved bits nonzero")
		}
	}
}

func (t *Task) closeFrame(offset uint64) {
	if !t.frameOpen {
		return
	}
	t.frameOpen = false

	if !t.cfg.AlpideEnabled {
		t.lanes = make(map[uint8]*laneFrame)
		return
	}

	lanes := make([]alpide.LaneData, 0, len(t.lanes))
	for _, lf := range t.lanes {
		lanes = append(lanes, alpide.LaneData{LaneID: lf.laneID, Bytes: lf.bytes})
	}
	cfg := t.cfg.AlpideFrame
	cfg.Layer = t.layer
	delta, issues := alpide.AnalyzeFrame(lanes, cfg)
	t.emit(stats.Event{Kind: stats.EventAlpideStats, Alpide: delta})
	for _, msg := range issues.Bunch {
		t.emitError(stats.CodeAlpideBunch, t.frameStart, msg)
	}
	for _, msg := range issues.Count {
		t.emitError(stats.CodeAlpideCount, t.frameStart, msg)
	}
	for _, msg := range issues.Order {
		t.emitError(stats.CodeAlpideOrder, t.frameStart, msg)
	}
	t.lanes = make(map[uint8]*laneFrame)
}
