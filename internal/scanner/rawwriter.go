package scanner

import (
	"bufio"
	"io"

	"github.com/marmos91/fastpasta/internal/cdp"
	"github.com/marmos91/fastpasta/internal/rdh"
)

// RawWriter writes the concatenation of (RDH bytes, payload bytes) of every
// CDP handed to it, preserving order (spec §6's raw filter-mode output).
type RawWriter struct {
	w *bufio.Writer
}

// NewRawWriter wraps w in a buffered RawWriter.
func NewRawWriter(w io.Writer) *RawWriter {
	return &RawWriter{w: bufio.NewWriter(w)}
}

// WriteCDP appends one CDP's bytes.
func (rw *RawWriter) WriteCDP(c cdp.CDP) error {
	b := rdh.RDHToBytes(c.RDH)
	if _, err := rw.w.Write(b[:]); err != nil {
		return err
	}
	if len(c.Payload) > 0 {
		if _, err := rw.w.Write(c.Payload); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes any buffered bytes to the underlying writer.
func (rw *RawWriter) Flush() error {
	return rw.w.Flush()
}
