package rdh

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func sampleRDH() RDH {
	r, err := ParseRDHFromRDH0(RDH0{
		HeaderID:   7,
		HeaderSize: 0x40,
		FeeID:      0x502A,
		SystemID:   0x20,
	}, make([]byte, 56))
	if err != nil {
		panic(err)
	}
	r.OffsetToNext = 0x40
	r.MemorySize = 0x40
	r.RDH2.TriggerType = 0x6A03
	return r
}

func TestRoundTrip(t *testing.T) {
	r := sampleRDH()
	bytes := RDHToBytes(r)
	got, err := ParseRDH(bytes[:])
	require.NoError(t, err)
	require.Equal(t, r, got)
}

func TestRoundTripSubwords(t *testing.T) {
	r := sampleRDH()
	r.RDH1.Orbit = 0xdeadbeef
	r.RDH1.BcReserved = 0xABC
	r.RDH3.DetectorField = 0x00123000
	bytes := RDHToBytes(r)
	got, err := ParseRDH(bytes[:])
	require.NoError(t, err)
	require.Equal(t, r.RDH1, got.RDH1)
	require.Equal(t, r.RDH3, got.RDH3)
}

func TestCruidDwMasking(t *testing.T) {
	for _, v := range []uint16{0x0000, 0x0FFF, 0xFFFF, 0x1234, 0xABCD} {
		c := CruidDw(v)
		require.Equal(t, v&0x0FFF, c.CruID())
		require.Equal(t, uint8((v>>12)&0xF), c.DW())
	}
}

func TestDataformatReservedMasking(t *testing.T) {
	for _, v := range []uint64{0, 0xFF, 0xFFFFFFFFFFFFFFFF, 0x02AABBCCDDEEFF02} {
		d := DataformatReserved0(v)
		require.Equal(t, uint8(v&0xFF), d.DataFormat())
		require.Equal(t, v>>8, d.Reserved0())
	}
}

func TestParseRDHShortBuffer(t *testing.T) {
	_, err := ParseRDH(make([]byte, 10))
	require.Error(t, err)
}

func TestFeeIDAccessors(t *testing.T) {
	// fee_id=524 -> layer 0, stave 12 (example from the original source docs)
	require.Equal(t, uint8(0), FeeLayer(524))
	require.Equal(t, uint8(12), FeeStave(524))
}

func TestVersionTag(t *testing.T) {
	r7, err := ParseRDHFromRDH0(RDH0{HeaderID: 7}, make([]byte, 56))
	require.NoError(t, err)
	require.Equal(t, VersionV7, r7.Version)

	r6, err := ParseRDHFromRDH0(RDH0{HeaderID: 6}, make([]byte, 56))
	require.NoError(t, err)
	require.Equal(t, VersionV6, r6.Version)

	rx, err := ParseRDHFromRDH0(RDH0{HeaderID: 9}, make([]byte, 56))
	require.NoError(t, err)
	require.Equal(t, VersionUnknown, rx.Version)
}
