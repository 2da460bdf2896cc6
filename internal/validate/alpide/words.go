// Package alpide implements the per-lane ALPIDE chip-frame decoder and
// its post-decode consistency checks (spec §4.5.5).
package alpide

// WordKind classifies a single ALPIDE byte once any multi-byte word it
// starts has been recognized.
type WordKind int

const (
	WordPadding WordKind = iota
	WordChipHeader
	WordChipEmptyFrame
	WordChipTrailer
	WordRegionHeader
	WordDataShort
	WordDataLong
	WordBusyOn
	WordBusyOff
	WordAPE
	WordUnknown
)

// APECode is an ALPIDE Protocol Extension byte (spec §4.5.5).
type APECode byte

const (
	ApeStripStart               APECode = 0xF2
	ApeDetTimeout                APECode = 0xF4
	ApeOutOfTable                APECode = 0xF5
	ApeProtocolError              APECode = 0xF6
	ApeLaneFifoOverflow           APECode = 0xF7
	ApeFsmError                   APECode = 0xF8
	ApePendingDetectorEventLimit  APECode = 0xF9
	ApePendingLaneEventLimit      APECode = 0xFA
	ApeO2NError                   APECode = 0xFB
	ApeRateMissingTrigger         APECode = 0xFC
	ApePeDataMissing              APECode = 0xFD
	ApeOotDataMissing             APECode = 0xFE
)

// Severity is how an APE code affects lane-level processing.
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityFatal
)

// Severity reports whether code is a warning (logged, processing
// continues) or fatal (disables further checks for the lane).
func (c APECode) Severity() Severity {
	switch c {
	case ApeStripStart, ApePeDataMissing, ApeOotDataMissing:
		return SeverityWarning
	default:
		return SeverityFatal
	}
}

func (c APECode) String() string {
	switch c {
	case ApeStripStart:
		return "APE_STRIP_START"
	case ApeDetTimeout:
		return "APE_DET_TIMEOUT"
	case ApeOutOfTable:
		return "APE_OOT"
	case ApeProtocolError:
		return "APE_PROTOCOL_ERROR"
	case ApeLaneFifoOverflow:
		return "APE_LANE_FIFO_OVERFLOW_ERROR"
	case ApeFsmError:
		return "APE_FSM_ERROR"
	case ApePendingDetectorEventLimit:
		return "APE_PENDING_DETECTOR_EVENT_LIMIT"
	case ApePendingLaneEventLimit:
		return "APE_PENDING_LANE_EVENT_LIMIT"
	case ApeO2NError:
		return "APE_O2N_ERROR"
	case ApeRateMissingTrigger:
		return "APE_RATE_MISSING_TRG_ERROR"
	case ApePeDataMissing:
		return "APE_PE_DATA_MISSING"
	case ApeOotDataMissing:
		return "APE_OOT_DATA_MISSING"
	default:
		return "APE_UNKNOWN"
	}
}

// classify identifies the word kind a single byte starts, and (for
// WordAPE) which APE code it is.
func classify(b byte) (WordKind, APECode) {
	switch {
	case b >= 0x40 && b <= 0x7F:
		return WordDataShort, 0
	case b <= 0x3F:
		return WordDataLong, 0
	case b >= 0xC0 && b <= 0xDF:
		return WordRegionHeader, 0
	case b >= 0xE0 && b <= 0xEF:
		return WordChipEmptyFrame, 0
	case b >= 0xA0 && b <= 0xAF:
		return WordChipHeader, 0
	case b >= 0xB0 && b <= 0xBF:
		return WordChipTrailer, 0
	case b == 0xF0:
		return WordBusyOn, 0
	case b == 0xF1:
		return WordBusyOff, 0
	default:
		switch APECode(b) {
		case ApeStripStart, ApeDetTimeout, ApeOutOfTable, ApeProtocolError,
			ApeLaneFifoOverflow, ApeFsmError, ApePendingDetectorEventLimit,
			ApePendingLaneEventLimit, ApeO2NError, ApeRateMissingTrigger,
			ApePeDataMissing, ApeOotDataMissing:
			return WordAPE, APECode(b)
		default:
			return WordUnknown, 0
		}
	}
}
