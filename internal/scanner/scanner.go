// Package scanner reads a buffered byte stream and produces a sequence of
// CDPs, applying link/FEE/stave filtering and position tracking (spec §4.3).
package scanner

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/marmos91/fastpasta/internal/cdp"
	"github.com/marmos91/fastpasta/internal/pos"
	"github.com/marmos91/fastpasta/internal/rdh"
	"github.com/marmos91/fastpasta/internal/stats"
)

// FilterKind selects what a FilterTarget matches on.
type FilterKind int

const (
	FilterNone FilterKind = iota
	FilterLink
	FilterFee
	FilterItsLayerStave
)

// FilterTarget is the scanner's filter configuration (spec §4.3).
type FilterTarget struct {
	Kind FilterKind
	// Link holds the link id when Kind == FilterLink.
	Link uint8
	// Fee holds the fee id when Kind == FilterFee, or the fee id with the
	// link bits masked off when Kind == FilterItsLayerStave.
	Fee uint16
}

// Matches reports whether an RDH satisfies the filter.
func (f FilterTarget) Matches(r rdh.RDH) bool {
	switch f.Kind {
	case FilterNone:
		return true
	case FilterLink:
		return r.LinkID == f.Link
	case FilterFee:
		return r.RDH0.FeeID == f.Fee
	case FilterItsLayerStave:
		// Layer/stave match masks link bits of fee_id: compare everything
		// except the fiber/link-carrying bits [9:8].
		const layerStaveMask = 0b0111_0000_0011_1111
		return r.RDH0.FeeID&layerStaveMask == f.Fee&layerStaveMask
	default:
		return true
	}
}

// Options configures a Scanner (spec §4.3's "capability set").
type Options struct {
	Filter      FilterTarget
	SkipPayload bool
	Sink        stats.Sink
}

// Scanner reads RDH/payload tuples from a buffered byte source, in order,
// applying Options.Filter and reporting structural stats.
type Scanner struct {
	r       *bufio.Reader
	opts    Options
	tracker *pos.Tracker

	firstRDHSeen bool
}

// New wraps a buffered reader in a Scanner.
func New(r *bufio.Reader, opts Options) *Scanner {
	return &Scanner{r: r, opts: opts, tracker: pos.New()}
}

// Tracker exposes the position tracker. After LoadRDH returns, its
// Current offset is where the next RDH is expected: the tracker has
// already advanced past the RDH just loaded by its offset_to_next.
func (s *Scanner) Tracker() *pos.Tracker { return s.tracker }

func (s *Scanner) emit(e stats.Event) {
	if s.opts.Sink != nil {
		s.opts.Sink <- e
	}
}

// LoadRDH reads the next 64-byte RDH matching the configured filter. On
// mismatch it seeks forward (by reading and discarding the payload) to the
// next RDH and retries. Returns io.EOF when the stream is exhausted.
func (s *Scanner) LoadRDH() (rdh.RDH, error) {
	for {
		offset := s.tracker.Current()
		buf := make([]byte, rdh.Size)
		if _, err := io.ReadFull(s.r, buf); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return rdh.RDH{}, io.EOF
			}
			return rdh.RDH{}, fmt.Errorf("read rdh: %w", err)
		}

		r, err := rdh.ParseRDH(buf)
		if err != nil {
			s.emit(stats.Fatal("malformed RDH at 0x%X: %v", offset, err))
			return rdh.RDH{}, io.ErrUnexpectedEOF
		}

		if d := int(r.OffsetToNext) - rdh.Size; d < 0 || d > 10_000 {
			s.emit(stats.Fatal("RDH at 0x%X has invalid offset_to_next=%d (offset_to_next-64 must be in [0,10000])", offset, r.OffsetToNext))
			return rdh.RDH{}, errInvalidOffset
		}

		s.tracker.Advance(r.OffsetToNext)
		s.emit(stats.RDHSeen(1))
		s.observeFirst(r)
		s.emit(stats.Event{Kind: stats.EventLinkObserved, LinkID: r.LinkID})
		s.emit(stats.Event{Kind: stats.EventFeeID, FeeID: r.RDH0.FeeID})
		s.emit(stats.Event{
			Kind:  stats.EventLayerStaveSeen,
			Layer: rdh.FeeLayer(r.RDH0.FeeID),
			Stave: rdh.FeeStave(r.RDH0.FeeID),
		})

		if s.opts.Filter.Matches(r) {
			return r, nil
		}

		s.emit(stats.RDHFiltered(1))
		payloadSize := int(r.PayloadSize())
		if payloadSize > 0 {
			if _, err := s.r.Discard(payloadSize); err != nil {
				return rdh.RDH{}, fmt.Errorf("seek past filtered payload: %w", err)
			}
		}
	}
}

func (s *Scanner) observeFirst(r rdh.RDH) {
	if s.firstRDHSeen {
		return
	}
	s.firstRDHSeen = true
	s.emit(stats.Event{Kind: stats.EventRdhVersion, RdhVersion: r.RDH0.HeaderID})
	s.emit(stats.Event{Kind: stats.EventDataFormat, DataFormat: r.DataformatReserved0.DataFormat()})
	s.emit(stats.Event{Kind: stats.EventSystemID, SystemID: r.RDH0.SystemID})
	s.emit(stats.Event{Kind: stats.EventRunTriggerType, RunTrigger: r.RDH2.TriggerType})
}

// errInvalidOffset is returned by LoadRDH/LoadCDP when offset_to_next fails
// the sanity bound; spec §4.3 calls for a Fatal plus io.InvalidData-class
// return.
var errInvalidOffset = errors.New("invalid offset_to_next")

// ErrInvalidOffset exposes errInvalidOffset for callers that need to branch
// on it specifically.
func ErrInvalidOffset() error { return errInvalidOffset }

// LoadPayload reads exactly payloadSize bytes of payload. Returns
// io.ErrUnexpectedEOF on a short read.
func (s *Scanner) LoadPayload(payloadSize int) ([]byte, error) {
	if payloadSize == 0 {
		return nil, nil
	}
	buf := make([]byte, payloadSize)
	if _, err := io.ReadFull(s.r, buf); err != nil {
		return nil, fmt.Errorf("read payload: %w", io.ErrUnexpectedEOF)
	}
	s.emit(stats.PayloadSize(uint64(payloadSize)))
	return buf, nil
}

// LoadCDP composes LoadRDH and LoadPayload into one CDP, honoring
// SkipPayload (emit an empty payload and seek past it).
func (s *Scanner) LoadCDP() (cdp.CDP, error) {
	r, err := s.LoadRDH()
	if err != nil {
		return cdp.CDP{}, err
	}
	// LoadRDH may have skipped filtered RDHs and has advanced the tracker
	// past the returned one, so step back to that RDH's own offset.
	offset := s.tracker.Current() - uint64(r.OffsetToNext)
	payloadSize := int(r.PayloadSize())
	if s.opts.SkipPayload {
		if payloadSize > 0 {
			if _, err := s.r.Discard(payloadSize); err != nil {
				return cdp.CDP{}, fmt.Errorf("seek past skipped payload: %w", err)
			}
		}
		return cdp.CDP{RDH: r, Payload: nil, Offset: offset}, nil
	}
	payload, err := s.LoadPayload(payloadSize)
	if err != nil {
		return cdp.CDP{}, err
	}
	return cdp.CDP{RDH: r, Payload: payload, Offset: offset}, nil
}

// NextBatch fills a batch with up to cdp.Chunk CDPs, stopping early (a short
// batch) on EOF or error. The error returned alongside a short batch tells
// the caller whether this was a clean EOF, a Fatal already reported to the
// stats sink, or something else.
func (s *Scanner) NextBatch() (*cdp.Batch, error) {
	b := cdp.NewBatch()
	for !b.Full() {
		c, err := s.LoadCDP()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return b, io.EOF
			}
			return b, err
		}
		b.Add(c)
	}
	return b, nil
}
