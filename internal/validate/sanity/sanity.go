// Package sanity implements the RDH sanity validator: a field-by-field
// bounds check against a single RDH, stateful only in pinning the first
// observed header_id (spec §4.5.1).
package sanity

import (
	"fmt"
	"strings"

	"github.com/marmos91/fastpasta/internal/rdh"
)

// PixelSensorSystemID is the system_id value for the ITS-like pixel-sensor
// subsystem (spec §3); the specialization below pins this value and the
// fee_id layer/stave bounds when enabled.
const PixelSensorSystemID = 0x20

// Validator performs per-RDH sanity checks. It is stateful only in that it
// captures the first observed header_id to enforce version stability.
type Validator struct {
	// PixelSensor enables the pixel-sensor specialization: system_id must
	// be 0x20, and fee_id layer/stave must fall in 0..6 / 0..47.
	PixelSensor bool

	haveFirstHeaderID bool
	firstHeaderID     uint8
}

// New creates a Validator. pixelSensor enables the ITS-pixel-sensor
// specialization described in spec §4.5.1.
func New(pixelSensor bool) *Validator {
	return &Validator{PixelSensor: pixelSensor}
}

// Check runs every sanity invariant from spec §3 against r, concatenating
// violations into a single error (or nil if r is sane).
func (v *Validator) Check(r rdh.RDH) error {
	var violations []string
	add := func(format string, args ...any) {
		violations = append(violations, fmt.Sprintf(format, args...))
	}

	if !v.haveFirstHeaderID {
		v.haveFirstHeaderID = true
		v.firstHeaderID = r.RDH0.HeaderID
	} else if r.RDH0.HeaderID != v.firstHeaderID {
		add("header_id changed from %d to %d (must be constant across a stream)", v.firstHeaderID, r.RDH0.HeaderID)
	}
	if r.RDH0.HeaderID != 6 && r.RDH0.HeaderID != 7 {
		add("header_id=%d, expected 6 or 7", r.RDH0.HeaderID)
	}
	if r.RDH0.HeaderSize != 0x40 {
		add("header_size=0x%X, expected 0x40", r.RDH0.HeaderSize)
	}
	// fee_id reserved bits are everything outside [5:0] stave, [9:8] fiber,
	// [14:12] layer.
	if feeReserved := r.RDH0.FeeID &^ 0b0111_0011_0011_1111; feeReserved != 0 {
		add("fee_id=0x%X (FEE ID:%d) has nonzero reserved bits (0x%X)", r.RDH0.FeeID, r.RDH0.FeeID, feeReserved)
	}
	if r.RDH0.PriorityBit != 0 {
		add("priority_bit=%d, expected 0", r.RDH0.PriorityBit)
	}
	if r.RDH0.Reserved0 != 0 {
		add("rdh0 reserved0=0x%X, expected 0", r.RDH0.Reserved0)
	}
	if d := int(r.OffsetToNext) - rdh.Size; d < 0 || d > 10_000 {
		add("offset_to_next=%d out of bounds (64..=10064)", r.OffsetToNext)
	}
	if r.MemorySize < rdh.Size {
		add("memory_size=%d smaller than RDH size (64)", r.MemorySize)
	}
	if r.LinkID > 15 {
		add("link_id=%d out of bounds (0..15)", r.LinkID)
	} else if r.LinkID > 11 && r.LinkID != 15 {
		add("link_id=%d not a legal value (0..11 or 15)", r.LinkID)
	}
	if r.RDH1.Bc() > 0xDEB {
		add("rdh1 bc=0x%X exceeds 0xDEB", r.RDH1.Bc())
	}
	if r.RDH1.Reserved() != 0 {
		add("rdh1 reserved=0x%X, expected 0", r.RDH1.Reserved())
	}
	df := r.DataformatReserved0.DataFormat()
	if df != 0 && df != 2 {
		add("data_format=%d, expected 0 or 2", df)
	}
	if r.DataformatReserved0.Reserved0() != 0 {
		add("dataformat_reserved0 reserved=0x%X, expected 0", r.DataformatReserved0.Reserved0())
	}
	if r.RDH2.TriggerType == 0 {
		add("trigger_type=0, expected nonzero")
	}
	if r.RDH2.StopBit != 0 && r.RDH2.StopBit != 1 {
		add("stop_bit=%d, expected 0 or 1", r.RDH2.StopBit)
	}
	if r.RDH2.Reserved != 0 {
		add("rdh2 reserved=0x%X, expected 0", r.RDH2.Reserved)
	}
	if r.Reserved1 != 0 {
		add("reserved1=0x%X, expected 0", r.Reserved1)
	}
	// detector_field bits [23:12] reserved; bits [5:4] are deliberately
	// unchecked user-configurable state (spec §9 open question).
	if df3 := (r.RDH3.DetectorField >> 12) & 0xFFF; df3 != 0 {
		add("detector_field reserved bits [23:12]=0x%X, expected 0", df3)
	}
	if r.RDH3.Reserved != 0 {
		add("rdh3 reserved=0x%X, expected 0", r.RDH3.Reserved)
	}
	if r.Reserved2 != 0 {
		add("reserved2=0x%X, expected 0", r.Reserved2)
	}

	if v.PixelSensor {
		if r.RDH0.SystemID != PixelSensorSystemID {
			add("system_id=0x%X, expected 0x%X (pixel-sensor subsystem)", r.RDH0.SystemID, PixelSensorSystemID)
		}
		layer := rdh.FeeLayer(r.RDH0.FeeID)
		stave := rdh.FeeStave(r.RDH0.FeeID)
		if layer > 6 {
			add("fee_id layer=%d out of bounds (0..6) (FEE ID:%d)", layer, r.RDH0.FeeID)
		}
		if stave > 47 {
			add("fee_id stave=%d out of bounds (0..47) (FEE ID:%d)", stave, r.RDH0.FeeID)
		}
	}

	if len(violations) == 0 {
		return nil
	}
	return fmt.Errorf("RDH sanity check failed: %s", strings.Join(violations, "; "))
}
