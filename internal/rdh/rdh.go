// Package rdh deserializes and serializes the 64-byte Raw Data Header (RDH)
// that prefixes every Calibration Data Packet (CDP) in the readout stream.
//
// The layout is bit-packed little-endian; fields are parsed by explicit
// shifts and masks rather than a reinterpret-cast, since Go has no portable
// equivalent of a packed-struct pointer cast.
package rdh

import (
	"encoding/binary"
	"fmt"
)

// Version distinguishes the two RDH generations this reader understands.
// The source models this as a phantom type parameter; here it is a plain
// tag set once at parse time from header_id.
type Version uint8

const (
	VersionUnknown Version = 0
	VersionV6      Version = 6
	VersionV7      Version = 7
)

// Size is the fixed wire size of an RDH-CRU, in bytes.
const Size = 64

// RDH is the deserialized Raw Data Header (RDH-CRU), covering both
// supported versions. See spec §3 for the field table.
type RDH struct {
	Version Version

	RDH0 RDH0
	// OffsetToNext is the byte distance from this RDH to the next one.
	OffsetToNext uint16
	MemorySize   uint16
	LinkID       uint8
	PacketCounter uint8
	CruidDw      CruidDw

	RDH1 RDH1

	DataformatReserved0 DataformatReserved0

	RDH2 RDH2

	Reserved1 uint64

	RDH3 RDH3

	Reserved2 uint64
}

// RDH0 is the first 8-byte subword: header_id, header_size, fee_id,
// priority_bit, system_id, reserved0.
type RDH0 struct {
	HeaderID    uint8
	HeaderSize  uint8
	FeeID       uint16
	PriorityBit uint8
	SystemID    uint8
	Reserved0   uint16
}

// CruidDw packs cru_id (12 bits) and dw (4 bits) into one u16.
type CruidDw uint16

func (c CruidDw) CruID() uint16 { return uint16(c) & 0x0FFF }
func (c CruidDw) DW() uint8     { return uint8((uint16(c) >> 12) & 0xF) }

// RDH1 holds bunch counter (12 bits), reserved (20 bits), and orbit (32 bits).
type RDH1 struct {
	BcReserved uint32 // bits [11:0]=bc, [31:12]=reserved
	Orbit      uint32
}

func (r RDH1) Bc() uint16       { return uint16(r.BcReserved & 0x0FFF) }
func (r RDH1) Reserved() uint32 { return (r.BcReserved >> 12) & 0xFFFFF }

// DataformatReserved0 packs data_format (8 bits) and reserved0 (56 bits)
// into one u64.
type DataformatReserved0 uint64

func (d DataformatReserved0) DataFormat() uint8 { return uint8(d & 0xFF) }
func (d DataformatReserved0) Reserved0() uint64 { return uint64(d) >> 8 }

// RDH2 holds trigger_type (32 bits), pages_counter (16 bits), stop_bit
// (8 bits), reserved (8 bits).
type RDH2 struct {
	TriggerType   uint32
	PagesCounter  uint16
	StopBit       uint8
	Reserved      uint8
}

// RDH3 holds detector_field (32 bits), par_bit (16 bits), reserved (16 bits).
type RDH3 struct {
	DetectorField uint32
	ParBit        uint16
	Reserved      uint16
}

// MalformedRdh is returned when a subword cannot be parsed from its bytes
// (always caused by an undersized buffer here, since the buffers handed in
// by the scanner are already length-checked).
type MalformedRdh struct {
	Subword string
	Reason  string
}

func (e *MalformedRdh) Error() string {
	return fmt.Sprintf("malformed RDH subword %s: %s", e.Subword, e.Reason)
}

// ParseRDH deserializes a full 64-byte RDH-CRU.
func ParseRDH(b []byte) (RDH, error) {
	if len(b) < Size {
		return RDH{}, &MalformedRdh{Subword: "rdh_cru", Reason: "buffer shorter than 64 bytes"}
	}
	rdh0, err := ParseRDH0(b[0:8])
	if err != nil {
		return RDH{}, err
	}
	return ParseRDHFromRDH0(rdh0, b[8:64])
}

// ParseRDH0 deserializes just the first 8-byte subword. The scanner peeks
// this alone to learn the header_id (and hence Version) before deciding how
// to parse the rest.
func ParseRDH0(b []byte) (RDH0, error) {
	if len(b) < 8 {
		return RDH0{}, &MalformedRdh{Subword: "rdh0", Reason: "buffer shorter than 8 bytes"}
	}
	return RDH0{
		HeaderID:    b[0],
		HeaderSize:  b[1],
		FeeID:       binary.LittleEndian.Uint16(b[2:4]),
		PriorityBit: b[4],
		SystemID:    b[5],
		Reserved0:   binary.LittleEndian.Uint16(b[6:8]),
	}, nil
}

// ParseRDHFromRDH0 finishes deserializing an RDH given an already-parsed
// RDH0 and the remaining 56 bytes.
func ParseRDHFromRDH0(rdh0 RDH0, rest []byte) (RDH, error) {
	if len(rest) < 56 {
		return RDH{}, &MalformedRdh{Subword: "rdh_cru", Reason: "buffer shorter than 56 remaining bytes"}
	}
	ver := VersionUnknown
	switch rdh0.HeaderID {
	case 6:
		ver = VersionV6
	case 7:
		ver = VersionV7
	}

	r := RDH{
		Version:       ver,
		RDH0:          rdh0,
		OffsetToNext:  binary.LittleEndian.Uint16(rest[0:2]),
		MemorySize:    binary.LittleEndian.Uint16(rest[2:4]),
		LinkID:        rest[4],
		PacketCounter: rest[5],
		CruidDw:       CruidDw(binary.LittleEndian.Uint16(rest[6:8])),
		RDH1: RDH1{
			BcReserved: binary.LittleEndian.Uint32(rest[8:12]),
			Orbit:      binary.LittleEndian.Uint32(rest[12:16]),
		},
		DataformatReserved0: DataformatReserved0(binary.LittleEndian.Uint64(rest[16:24])),
		RDH2: RDH2{
			TriggerType:  binary.LittleEndian.Uint32(rest[24:28]),
			PagesCounter: binary.LittleEndian.Uint16(rest[28:30]),
			StopBit:      rest[30],
			Reserved:     rest[31],
		},
		Reserved1: binary.LittleEndian.Uint64(rest[32:40]),
		RDH3: RDH3{
			DetectorField: binary.LittleEndian.Uint32(rest[40:44]),
			ParBit:        binary.LittleEndian.Uint16(rest[44:46]),
			Reserved:      binary.LittleEndian.Uint16(rest[46:48]),
		},
		Reserved2: binary.LittleEndian.Uint64(rest[48:56]),
	}
	return r, nil
}

// RDHToBytes serializes an RDH back to its 64-byte wire form, composing the
// buffer field-by-field (no unsafe casts).
func RDHToBytes(r RDH) [Size]byte {
	var b [Size]byte
	b[0] = r.RDH0.HeaderID
	b[1] = r.RDH0.HeaderSize
	binary.LittleEndian.PutUint16(b[2:4], r.RDH0.FeeID)
	b[4] = r.RDH0.PriorityBit
	b[5] = r.RDH0.SystemID
	binary.LittleEndian.PutUint16(b[6:8], r.RDH0.Reserved0)

	binary.LittleEndian.PutUint16(b[8:10], r.OffsetToNext)
	binary.LittleEndian.PutUint16(b[10:12], r.MemorySize)
	b[12] = r.LinkID
	b[13] = r.PacketCounter
	binary.LittleEndian.PutUint16(b[14:16], uint16(r.CruidDw))

	binary.LittleEndian.PutUint32(b[16:20], r.RDH1.BcReserved)
	binary.LittleEndian.PutUint32(b[20:24], r.RDH1.Orbit)

	binary.LittleEndian.PutUint64(b[24:32], uint64(r.DataformatReserved0))

	binary.LittleEndian.PutUint32(b[32:36], r.RDH2.TriggerType)
	binary.LittleEndian.PutUint16(b[36:38], r.RDH2.PagesCounter)
	b[38] = r.RDH2.StopBit
	b[39] = r.RDH2.Reserved

	binary.LittleEndian.PutUint64(b[40:48], r.Reserved1)

	binary.LittleEndian.PutUint32(b[48:52], r.RDH3.DetectorField)
	binary.LittleEndian.PutUint16(b[52:54], r.RDH3.ParBit)
	binary.LittleEndian.PutUint16(b[54:56], r.RDH3.Reserved)

	binary.LittleEndian.PutUint64(b[56:64], r.Reserved2)
	return b
}

// PayloadSize returns memory_size - 64, the number of payload bytes that
// follow this RDH.
func (r RDH) PayloadSize() uint16 {
	if r.MemorySize < Size {
		return 0
	}
	return r.MemorySize - Size
}

// FeeLayer extracts the layer number from fee_id bits [14:12].
func FeeLayer(feeID uint16) uint8 {
	return uint8((feeID >> 12) & 0b0111)
}

// FeeStave extracts the stave number from fee_id bits [5:0].
func FeeStave(feeID uint16) uint8 {
	return uint8(feeID & 0b11_1111)
}

// FeeFiber extracts the fiber number from fee_id bits [9:8].
func FeeFiber(feeID uint16) uint8 {
	return uint8((feeID >> 8) & 0b11)
}
