// Package cdp defines the Calibration Data Packet tuple and the batches
// that shuttle CDPs from the reader to the dispatcher.
package cdp

import "github.com/marmos91/fastpasta/internal/rdh"

// CDP is one RDH plus its payload bytes, tagged with the absolute byte
// offset of the RDH in the input stream.
type CDP struct {
	RDH     rdh.RDH
	Payload []byte
	Offset  uint64
}

// Chunk is the soft cap on CDPs per batch used for backpressure between the
// reader and the dispatcher (spec §4.4).
const Chunk = 100

// Batch is an ordered sequence of CDPs. A batch shorter than Chunk signals
// scanner-level end of input to the dispatcher (natural EOF, fatal, or a
// malformed stream).
type Batch struct {
	CDPs []CDP
}

// NewBatch allocates a batch with capacity for Chunk CDPs.
func NewBatch() *Batch {
	return &Batch{CDPs: make([]CDP, 0, Chunk)}
}

// Add appends a CDP to the batch.
func (b *Batch) Add(c CDP) {
	b.CDPs = append(b.CDPs, c)
}

// Full reports whether the batch has reached its soft cap.
func (b *Batch) Full() bool {
	return len(b.CDPs) >= Chunk
}

// Len returns the number of CDPs currently in the batch.
func (b *Batch) Len() int {
	return len(b.CDPs)
}
