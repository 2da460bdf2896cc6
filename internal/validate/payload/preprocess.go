// Package payload implements the payload preprocessor (spec §4.5.3) and
// the continuous-mode protocol FSM (spec §4.5.4).
package payload

import "fmt"

// MaxTrailingPadding is the largest number of trailing 0xFF bytes tolerated
// before a payload is rejected outright (spec §4.5.3 step 1).
const MaxTrailingPadding = 15

// WordSize is the width of every protocol/status word once chunked.
const WordSize = 10

// PaddingExcess is returned when a payload's trailing 0xFF run exceeds
// MaxTrailingPadding; the CDP carrying it must be skipped.
type PaddingExcess struct {
	Count int
}

func (e *PaddingExcess) Error() string {
	return fmt.Sprintf("PayloadPaddingExcess: %d trailing 0xFF bytes (max %d)", e.Count, MaxTrailingPadding)
}

// DataFormat identifies the payload's word stride, detected from the
// content of the payload itself (spec §4.5.3 step 2).
type DataFormat int

const (
	FormatUnknown DataFormat = iota
	Format0 // 16-byte stride, 6 bytes of zero padding per word
	Format2 // 10-byte stride, no inter-word padding
)

func trailingPaddingCount(b []byte) int {
	n := 0
	for i := len(b) - 1; i >= 0 && b[i] == 0xFF; i-- {
		n++
	}
	return n
}

func detectFormat(b []byte) DataFormat {
	if len(b) < 16 {
		return Format2
	}
	for i := 10; i < 16; i++ {
		if b[i] != 0x00 {
			return Format2
		}
	}
	return Format0
}

// Chunk splits a raw payload into an ordered slice of 10-byte words,
// applying the trailing-padding and stride rules of spec §4.5.3. It
// returns a *PaddingExcess when the trailing 0xFF run exceeds
// MaxTrailingPadding.
func Chunk(raw []byte) ([][WordSize]byte, DataFormat, error) {
	pad := trailingPaddingCount(raw)
	if pad > MaxTrailingPadding {
		return nil, FormatUnknown, &PaddingExcess{Count: pad}
	}

	format := detectFormat(raw)
	body := raw
	if format == Format2 {
		body = raw[:len(raw)-pad]
	}

	var words [][WordSize]byte
	switch format {
	case Format0:
		for i := 0; i+16 <= len(body); i += 16 {
			var w [WordSize]byte
			copy(w[:], body[i:i+WordSize])
			words = append(words, w)
		}
	default: // Format2
		for i := 0; i+WordSize <= len(body); i += WordSize {
			var w [WordSize]byte
			copy(w[:], body[i:i+WordSize])
			words = append(words, w)
		}
	}
	return words, format, nil
}
