package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Common attribute keys for decoder operations.
// These follow OpenTelemetry semantic conventions where applicable.
const (
	// ========================================================================
	// Readout identity attributes (RDH-derived)
	// ========================================================================
	AttrLinkID  = "rdh.link_id"
	AttrFeeID   = "rdh.fee_id"
	AttrLayer   = "its.layer"
	AttrStave   = "its.stave"
	AttrOffset  = "stream.offset"
	AttrCount   = "stream.word_count"
	AttrSize    = "stream.byte_size"
	AttrPageCnt = "rdh.page_count"

	// ========================================================================
	// Validation attributes
	// ========================================================================
	AttrCheckLayer = "check.layer" // sanity, running, payload, alpide
	AttrErrorCode  = "check.error_code"
	AttrSeverity   = "check.severity" // recoverable, fatal
	AttrLaneID     = "alpide.lane_id"
	AttrChipID     = "alpide.chip_id"

	// ========================================================================
	// Dispatcher / pipeline attributes
	// ========================================================================
	AttrDispatchKey  = "dispatch.key_kind" // link, fee
	AttrDispatchID   = "dispatch.id"
	AttrChannelCap   = "dispatch.channel_capacity"
	AttrTasksRunning = "dispatch.tasks_running"

	// ========================================================================
	// Stats / reporting attributes
	// ========================================================================
	AttrStatEventKind  = "stats.event_kind"
	AttrStatOutputMode = "stats.output_mode"
	AttrReportPath     = "stats.report_path"
)

// Span names for operations.
// Format: <component>.<operation>
const (
	// ========================================================================
	// Scanner / stream spans
	// ========================================================================
	SpanScannerRead    = "scanner.read"
	SpanScannerSeek    = "scanner.seek"
	SpanScannerNextCDP = "scanner.next_cdp"

	// ========================================================================
	// Dispatcher spans
	// ========================================================================
	SpanDispatchRoute = "dispatch.route"
	SpanDispatchSpawn = "dispatch.spawn_task"
	SpanDispatchDrain = "dispatch.drain"

	// ========================================================================
	// Validation layer spans
	// ========================================================================
	SpanValidateSanity  = "validate.sanity"
	SpanValidateRunning = "validate.running"
	SpanValidatePayload = "validate.payload"
	SpanValidateAlpide  = "validate.alpide"
	SpanValidateProcess = "validate.process_cdp"

	// ========================================================================
	// Stats controller spans
	// ========================================================================
	SpanStatsAggregate = "stats.aggregate"
	SpanStatsFlush     = "stats.flush"
	SpanStatsCompare   = "stats.compare"

	// ========================================================================
	// Index / history spans
	// ========================================================================
	SpanSeekIndexBuild  = "seekidx.build"
	SpanSeekIndexLookup = "seekidx.lookup"
	SpanHistoryStore    = "statsstore.store"
)

// LinkID returns an attribute for the RDH link id.
func LinkID(id uint8) attribute.KeyValue {
	return attribute.Int64(AttrLinkID, int64(id))
}

// FeeID returns an attribute for the RDH FEE id.
func FeeID(id uint16) attribute.KeyValue {
	return attribute.Int64(AttrFeeID, int64(id))
}

// Layer returns an attribute for the ITS layer derived from a FEE id.
func Layer(layer uint8) attribute.KeyValue {
	return attribute.Int64(AttrLayer, int64(layer))
}

// Stave returns an attribute for the ITS stave derived from a FEE id.
func Stave(stave uint8) attribute.KeyValue {
	return attribute.Int64(AttrStave, int64(stave))
}

// StreamOffset returns an attribute for a byte offset into the input stream.
func StreamOffset(offset uint64) attribute.KeyValue {
	return attribute.Int64(AttrOffset, int64(offset))
}

// WordCount returns an attribute for a count of 10-byte words processed.
func WordCount(count int) attribute.KeyValue {
	return attribute.Int(AttrCount, count)
}

// ByteSize returns an attribute for a byte size (payload, CDP, file).
func ByteSize(size uint64) attribute.KeyValue {
	return attribute.Int64(AttrSize, int64(size))
}

// PageCount returns an attribute for an RDH's page count field.
func PageCount(pages uint16) attribute.KeyValue {
	return attribute.Int64(AttrPageCnt, int64(pages))
}

// CheckLayer returns an attribute naming which validation layer ran
// (sanity, running, payload, alpide).
func CheckLayer(layer string) attribute.KeyValue {
	return attribute.String(AttrCheckLayer, layer)
}

// ErrorCode returns an attribute for a validation error code.
func ErrorCode(code string) attribute.KeyValue {
	return attribute.String(AttrErrorCode, code)
}

// Severity returns an attribute for an error's severity class.
func Severity(severity string) attribute.KeyValue {
	return attribute.String(AttrSeverity, severity)
}

// LaneID returns an attribute for an ALPIDE lane id.
func LaneID(id uint8) attribute.KeyValue {
	return attribute.Int64(AttrLaneID, int64(id))
}

// ChipID returns an attribute for an ALPIDE chip id.
func ChipID(id uint8) attribute.KeyValue {
	return attribute.Int64(AttrChipID, int64(id))
}

// DispatchKey returns an attribute naming the dispatcher's routing key kind.
func DispatchKey(kind string) attribute.KeyValue {
	return attribute.String(AttrDispatchKey, kind)
}

// DispatchID returns an attribute for a dispatcher routing id (link or FEE).
func DispatchID(id uint32) attribute.KeyValue {
	return attribute.Int64(AttrDispatchID, int64(id))
}

// ChannelCapacity returns an attribute for a validator channel's current capacity.
func ChannelCapacity(capacity int) attribute.KeyValue {
	return attribute.Int(AttrChannelCap, capacity)
}

// TasksRunning returns an attribute for the number of live validator tasks.
func TasksRunning(n int) attribute.KeyValue {
	return attribute.Int(AttrTasksRunning, n)
}

// StatEventKind returns an attribute naming a stats event's kind.
func StatEventKind(kind string) attribute.KeyValue {
	return attribute.String(AttrStatEventKind, kind)
}

// StatOutputMode returns an attribute naming the stats report's output mode.
func StatOutputMode(mode string) attribute.KeyValue {
	return attribute.String(AttrStatOutputMode, mode)
}

// ReportPath returns an attribute for a stats report's output path.
func ReportPath(path string) attribute.KeyValue {
	return attribute.String(AttrReportPath, path)
}

// rdhAttrs builds the common set of attributes identifying a CDP by
// its RDH: link id, FEE id, byte offset.
func rdhAttrs(link uint8, fee uint16, offset uint64) []attribute.KeyValue {
	return []attribute.KeyValue{LinkID(link), FeeID(fee), StreamOffset(offset)}
}

// StartValidateSpan starts a span for one validation layer's check on a CDP.
func StartValidateSpan(ctx context.Context, layer string, link uint8, fee uint16, offset uint64, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := append(rdhAttrs(link, fee, offset), CheckLayer(layer))
	allAttrs = append(allAttrs, attrs...)

	spanName := fmt.Sprintf("validate.%s", layer)
	return StartSpan(ctx, spanName, trace.WithAttributes(allAttrs...))
}

// StartDispatchSpan starts a span for a dispatcher routing operation.
func StartDispatchSpan(ctx context.Context, operation string, keyKind string, id uint32, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := []attribute.KeyValue{DispatchKey(keyKind), DispatchID(id)}
	allAttrs = append(allAttrs, attrs...)

	return StartSpan(ctx, "dispatch."+operation, trace.WithAttributes(allAttrs...))
}

// StartScannerSpan starts a span for a scanner stream operation.
func StartScannerSpan(ctx context.Context, operation string, offset uint64, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := []attribute.KeyValue{StreamOffset(offset)}
	allAttrs = append(allAttrs, attrs...)

	return StartSpan(ctx, "scanner."+operation, trace.WithAttributes(allAttrs...))
}

// StartStatsSpan starts a span for a stats controller operation.
func StartStatsSpan(ctx context.Context, operation string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return StartSpan(ctx, "stats."+operation, trace.WithAttributes(attrs...))
}
