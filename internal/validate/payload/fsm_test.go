package payload

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func wordWithID(id byte) [10]byte {
	var w [10]byte
	w[9] = id
	return w
}

func TestFSMHappyPathOneEventPage(t *testing.T) {
	f := NewFSM()

	kind, err := f.Advance(wordWithID(0xE0)) // IHW
	require.NoError(t, err)
	require.Equal(t, WordIHW, kind)

	tdh := wordWithID(0xE8)
	tdh[8] = 0b0000_0000 // no_data = 0 -> DATA
	kind, err = f.Advance(tdh)
	require.NoError(t, err)
	require.Equal(t, WordTDH, kind)

	kind, err = f.Advance(wordWithID(0x40)) // DataWord
	require.NoError(t, err)
	require.Equal(t, WordDataWord, kind)

	tdt := wordWithID(0xF0)
	tdt[8] = 0b0000_0001 // packet_done = 1
	kind, err = f.Advance(tdt)
	require.NoError(t, err)
	require.Equal(t, WordTDT, kind)

	kind, err = f.Advance(wordWithID(0xE4)) // DDW0
	require.NoError(t, err)
	require.Equal(t, WordDDW0, kind)

	kind, err = f.Advance(wordWithID(0xE0)) // next HBF's IHW
	require.NoError(t, err)
	require.Equal(t, WordIHW, kind)
}

func TestFSMContinuationPath(t *testing.T) {
	f := NewFSM()
	_, _ = f.Advance(wordWithID(0xE0)) // IHW -> TDH

	tdh := wordWithID(0xE8)
	kind, _ := f.Advance(tdh) // no_data=0 -> DATA
	require.Equal(t, WordTDH, kind)

	_, _ = f.Advance(wordWithID(0x40)) // DATA

	tdt := wordWithID(0xF0)
	tdt[8] = 0 // packet_done = 0 -> c_IHW
	kind, err := f.Advance(tdt)
	require.NoError(t, err)
	require.Equal(t, WordTDT, kind)

	kind, err = f.Advance(wordWithID(0xE0)) // c_IHW, id is irrelevant
	require.NoError(t, err)
	require.Equal(t, WordIHWContinuation, kind)

	kind, err = f.Advance(wordWithID(0xE8)) // c_TDH
	require.NoError(t, err)
	require.Equal(t, WordTDHContinuation, kind)

	kind, err = f.Advance(wordWithID(0x40)) // c_DATA
	require.NoError(t, err)
	require.Equal(t, WordDataWord, kind)
}

func TestFSMAmbiguousDataWordRecovers(t *testing.T) {
	f := NewFSM()
	_, _ = f.Advance(wordWithID(0xE0))
	_, _ = f.Advance(wordWithID(0xE8)) // -> DATA

	kind, err := f.Advance(wordWithID(0x99)) // not a legal data word id
	require.Error(t, err)
	var ambig *AmbiguousError
	require.ErrorAs(t, err, &ambig)
	require.Equal(t, AmbiguousDWOrTDTCDW, ambig.Kind)
	require.Equal(t, WordDataWord, kind)

	// machine stays in DATA and can keep decoding
	kind, err = f.Advance(wordWithID(0x40))
	require.NoError(t, err)
	require.Equal(t, WordDataWord, kind)
}

func TestFSMAmbiguousDDW0OrTDHRecovers(t *testing.T) {
	f := NewFSM()
	tdh := wordWithID(0xE8)
	tdh[1] = 0b0010_0000 // bit 13 of flags0 (no_data) set -> DDW0_or_TDH
	_, _ = f.Advance(wordWithID(0xE0))
	_, err := f.Advance(tdh)
	require.NoError(t, err)

	kind, err := f.Advance(wordWithID(0x00)) // neither 0xE8 nor 0xE4
	require.Error(t, err)
	var ambig *AmbiguousError
	require.ErrorAs(t, err, &ambig)
	require.Equal(t, AmbiguousTDHOrDDW0, ambig.Kind)
	require.Equal(t, WordTDH, kind)
}

func TestResetFSMReturnsToIHW(t *testing.T) {
	f := NewFSM()
	_, _ = f.Advance(wordWithID(0xE0))
	_, _ = f.Advance(wordWithID(0xE8))
	f.ResetFSM()
	kind, err := f.Advance(wordWithID(0xE0))
	require.NoError(t, err)
	require.Equal(t, WordIHW, kind)
}
