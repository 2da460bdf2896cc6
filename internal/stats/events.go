// Package stats implements the single-consumer stats controller: it
// aggregates errors and counters from many concurrent validators and the
// scanner, and finalizes them into a report (spec §4.6).
package stats

import "fmt"

// EventKind discriminates the StatType event variants the controller
// consumes (spec §4.6).
type EventKind int

const (
	EventFatal EventKind = iota
	EventError
	EventRDHSeen
	EventRDHFiltered
	EventPayloadSize
	EventLinkObserved
	EventRdhVersion
	EventDataFormat
	EventHBFSeen
	EventLayerStaveSeen
	EventFeeID
	EventTriggerType
	EventRunTriggerType
	EventSystemID
	EventAlpideStats
)

// Event is a single update sent on the stats channel. Only the fields
// relevant to Kind are populated; this mirrors the Rust source's enum of
// event variants collapsed into one Go struct for channel simplicity.
type Event struct {
	Kind EventKind

	Message string // Fatal / Error text
	Count   uint64 // RDHSeen / RDHFiltered / PayloadSize counts

	LinkID uint8
	FeeID  uint16
	Layer  uint8
	Stave  uint8

	RdhVersion  uint8
	DataFormat  uint8
	SystemID    uint8
	TriggerType uint32
	RunTrigger  uint32
	RunTriggerLabel string

	Alpide AlpideDelta
}

// AlpideDelta carries a batch of ALPIDE readout-flag counter increments,
// forwarded once per closed readout frame.
type AlpideDelta struct {
	ChipTrailersSeen    uint64
	BusyViolations      uint64
	DataOverrun         uint64
	TransmissionInFatal uint64
	FlushedIncomplete   uint64
	StrobeExtended      uint64
	BusyTransitions     uint64
}

// Fatal builds a Fatal event.
func Fatal(format string, args ...any) Event {
	return Event{Kind: EventFatal, Message: fmt.Sprintf(format, args...)}
}

// RDHSeen builds an RDHSeen(count) event.
func RDHSeen(n uint64) Event { return Event{Kind: EventRDHSeen, Count: n} }

// RDHFiltered builds an RDHFiltered(count) event.
func RDHFiltered(n uint64) Event { return Event{Kind: EventRDHFiltered, Count: n} }

// PayloadSize builds a PayloadSize(bytes) event.
func PayloadSize(n uint64) Event { return Event{Kind: EventPayloadSize, Count: n} }

// Sink is the producer-facing half of the stats channel: a bounded,
// multi-producer send handle every scanner and validator task holds.
type Sink chan<- Event
