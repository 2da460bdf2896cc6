package payload

import (
	"fmt"

	"github.com/marmos91/fastpasta/internal/words"
)

// state names the continuous-mode protocol FSM's internal state (spec
// §4.5.4).
type state int

const (
	stateIHW state = iota
	stateTDH
	stateDDW0orTDH
	stateDDW0orTDHorIHW
	stateDATA
	stateCIHW
	stateCTDH
	stateCDATA
	stateDDW0
)

// WordKind is the decoded type of a 10-byte protocol word, as classified
// by the FSM.
type WordKind int

const (
	WordIHW WordKind = iota
	WordIHWContinuation
	WordTDH
	WordTDHContinuation
	WordTDHAfterPacketDone
	WordTDT
	WordCDW
	WordDataWord
	WordDDW0
)

// AmbiguousKind names the three shapes of ID ambiguity the FSM can
// recover from by best-guessing a word kind and continuing.
type AmbiguousKind int

const (
	AmbiguousTDHOrDDW0 AmbiguousKind = iota
	AmbiguousDWOrTDTCDW
	AmbiguousDDW0OrTDHIHW
)

func (k AmbiguousKind) String() string {
	switch k {
	case AmbiguousTDHOrDDW0:
		return "TDH_or_DDW0"
	case AmbiguousDWOrTDTCDW:
		return "DW_or_TDT_CDW"
	case AmbiguousDDW0OrTDHIHW:
		return "DDW0_or_TDH_IHW"
	default:
		return "unknown"
	}
}

// AmbiguousError is returned by Advance when a word's id byte doesn't
// match any id legal in the current state; the FSM still advances on its
// best guess so decoding can continue (spec §4.5.4).
type AmbiguousError struct {
	Kind AmbiguousKind
	ID   byte
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("ambiguous word id 0x%X (%s)", e.ID, e.Kind)
}

// FSM is the continuous-mode payload protocol state machine.
type FSM struct {
	state state
}

// NewFSM creates an FSM in its initial IHW state.
func NewFSM() *FSM {
	return &FSM{state: stateIHW}
}

// ResetFSM returns the machine to its initial IHW state (spec §4.5.4,
// invoked after a preprocessor failure).
func (f *FSM) ResetFSM() {
	f.state = stateIHW
}

func isLegalDataWordID(id byte) bool {
	switch {
	case id >= 0x20 && id <= 0x28:
		return true
	case id >= 0x40 && id <= 0x46:
		return true
	case id >= 0x48 && id <= 0x4E:
		return true
	case id >= 0x50 && id <= 0x56:
		return true
	case id >= 0x58 && id <= 0x5E:
		return true
	default:
		return false
	}
}

// Advance feeds one 10-byte GBT word through the machine, returning its
// classified kind or an AmbiguousError carrying the best-guess kind the
// machine advanced on.
func (f *FSM) Advance(raw [10]byte) (WordKind, error) {
	id := raw[9]

	switch f.state {
	case stateIHW:
		f.state = stateTDH
		return WordIHW, nil

	case stateTDH:
		tdh := words.TDH{Raw: raw}
		if tdh.NoData() {
			f.state = stateDDW0orTDH
		} else {
			f.state = stateDATA
		}
		return WordTDH, nil

	case stateDDW0orTDH:
		switch id {
		case words.IDTdh:
			f.state = stateDATA
			return WordTDH, nil
		case words.IDDdw0:
			f.state = stateDDW0
			return WordDDW0, nil
		default:
			f.state = stateDATA
			return WordTDH, &AmbiguousError{Kind: AmbiguousTDHOrDDW0, ID: id}
		}

	case stateDATA:
		return f.advanceData(raw, stateCIHW)

	case stateCIHW:
		f.state = stateCTDH
		return WordIHWContinuation, nil

	case stateCTDH:
		f.state = stateCDATA
		return WordTDHContinuation, nil

	case stateCDATA:
		return f.advanceData(raw, stateCIHW)

	case stateDDW0orTDHorIHW:
		switch id {
		case words.IDTdh:
			tdh := words.TDH{Raw: raw}
			if tdh.NoData() {
				f.state = stateDDW0orTDH
			} else {
				f.state = stateDATA
			}
			return WordTDHAfterPacketDone, nil
		case words.IDDdw0:
			f.state = stateDDW0
			return WordDDW0, nil
		case words.IDIhw:
			f.state = stateTDH
			return WordIHW, nil
		default:
			f.state = stateDDW0
			return WordDDW0, &AmbiguousError{Kind: AmbiguousDDW0OrTDHIHW, ID: id}
		}

	case stateDDW0:
		f.state = stateTDH
		return WordIHW, nil

	default:
		panic("payload: unreachable FSM state")
	}
}

// advanceData handles the id-dispatch shared by DATA and c_DATA: TDT,
// CDW, legal data-word ranges, or a best-guess DataWord on ambiguity.
// onPacketDoneFalse is the state entered when a TDT clears packet_done
// (continuation across an RDH boundary); packet_done=1 always goes to
// DDW0_or_TDH_or_IHW.
func (f *FSM) advanceData(raw [10]byte, onPacketDoneFalse state) (WordKind, error) {
	id := raw[9]
	switch {
	case id == words.IDTdt:
		tdt := words.TDT{Raw: raw}
		if tdt.PacketDone() {
			f.state = stateDDW0orTDHorIHW
		} else {
			f.state = onPacketDoneFalse
		}
		return WordTDT, nil
	case id == words.IDCdw:
		return WordCDW, nil
	case isLegalDataWordID(id):
		return WordDataWord, nil
	default:
		return WordDataWord, &AmbiguousError{Kind: AmbiguousDWOrTDTCDW, ID: id}
	}
}
