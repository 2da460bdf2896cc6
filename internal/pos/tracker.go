// Package pos tracks the absolute byte offset of the RDH currently being
// processed, local to a single scanner instance.
package pos

// Tracker is a monotonic counter of bytes consumed from the start of the
// input. It never seeks; callers ask it how far to seek past the payload to
// reach the next RDH.
type Tracker struct {
	offset uint64
}

// New creates a tracker starting at offset 0.
func New() *Tracker {
	return &Tracker{}
}

// Current returns the absolute offset of the RDH currently being processed.
func (t *Tracker) Current() uint64 {
	return t.offset
}

// Advance moves the tracker forward by offsetToNext bytes (the RDH's
// offset_to_next field), the distance to the next RDH.
func (t *Tracker) Advance(offsetToNext uint16) {
	t.offset += uint64(offsetToNext)
}
