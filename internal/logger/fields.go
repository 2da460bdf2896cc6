package logger

import "log/slog"

// Standard field keys for structured logging across the scanner,
// dispatcher, and validator pipeline. Use these keys consistently so
// log lines can be grepped/aggregated the same way regardless of which
// package emitted them.
const (
	// ========================================================================
	// Distributed Tracing
	// ========================================================================
	KeyTraceID = "trace_id" // OpenTelemetry trace ID for request correlation
	KeySpanID  = "span_id"  // OpenTelemetry span ID for operation tracking

	// ========================================================================
	// RDH / dispatch identity
	// ========================================================================
	KeyLinkID = "link_id" // RDH link_id
	KeyFeeID  = "fee_id"  // RDH fee_id
	KeyLayer  = "layer"   // ALPIDE barrel layer (IL, ML, OL)
	KeyStave  = "stave"   // Stave number derived from fee_id

	// ========================================================================
	// Stream position & protocol
	// ========================================================================
	KeyOffset      = "offset"      // Absolute byte offset in the input stream
	KeyRdhVersion  = "rdh_version" // Detected RDH header_id
	KeyDataFormat  = "data_format" // Detected payload data_format
	KeyTriggerType = "trigger_type"
	KeyWordKind    = "word_kind" // Decoded protocol word kind (TDH, TDT, ...)

	// ========================================================================
	// ALPIDE
	// ========================================================================
	KeyChipID = "chip_id"
	KeyLaneID = "lane_id"
	KeyAPE    = "ape_code"

	// ========================================================================
	// Error / operation metadata
	// ========================================================================
	KeyErrorCode  = "error_code" // [Ennnn] recoverable-error code
	KeyDurationMs = "duration_ms"
	KeyError      = "error"
	KeyCount      = "count"
)

// TraceID returns a slog.Attr for OpenTelemetry trace ID
func TraceID(id string) slog.Attr { return slog.String(KeyTraceID, id) }

// SpanID returns a slog.Attr for OpenTelemetry span ID
func SpanID(id string) slog.Attr { return slog.String(KeySpanID, id) }

// LinkID returns a slog.Attr for an RDH link_id
func LinkID(id uint8) slog.Attr { return slog.Any(KeyLinkID, id) }

// FeeID returns a slog.Attr for an RDH fee_id
func FeeID(id uint16) slog.Attr { return slog.Any(KeyFeeID, id) }

// Layer returns a slog.Attr for a barrel layer tag
func Layer(tag string) slog.Attr { return slog.String(KeyLayer, tag) }

// Stave returns a slog.Attr for a stave number
func Stave(n uint8) slog.Attr { return slog.Any(KeyStave, n) }

// Offset returns a slog.Attr for an absolute byte offset
func Offset(off uint64) slog.Attr { return slog.Uint64(KeyOffset, off) }

// RdhVersion returns a slog.Attr for the detected RDH header_id
func RdhVersion(v uint8) slog.Attr { return slog.Any(KeyRdhVersion, v) }

// DataFormat returns a slog.Attr for the detected payload data_format
func DataFormat(v uint8) slog.Attr { return slog.Any(KeyDataFormat, v) }

// TriggerType returns a slog.Attr for an RDH trigger_type bitmask
func TriggerType(t uint32) slog.Attr { return slog.Any(KeyTriggerType, t) }

// WordKind returns a slog.Attr naming a decoded protocol word kind
func WordKind(kind string) slog.Attr { return slog.String(KeyWordKind, kind) }

// ChipID returns a slog.Attr for an ALPIDE chip id
func ChipID(id uint8) slog.Attr { return slog.Any(KeyChipID, id) }

// LaneIDAttr returns a slog.Attr for an ALPIDE lane number
func LaneIDAttr(id uint8) slog.Attr { return slog.Any(KeyLaneID, id) }

// APECode returns a slog.Attr for an ALPIDE protocol-error code
func APECode(code uint8) slog.Attr { return slog.Any(KeyAPE, code) }

// ErrorCode returns a slog.Attr for a recoverable-error [Ennnn] code
func ErrorCode(code string) slog.Attr { return slog.String(KeyErrorCode, code) }

// DurationMs returns a slog.Attr for duration in milliseconds
func DurationMs(ms float64) slog.Attr { return slog.Float64(KeyDurationMs, ms) }

// Err returns a slog.Attr for an error
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

// Count returns a slog.Attr for a generic count
func Count(n int) slog.Attr { return slog.Int(KeyCount, n) }
