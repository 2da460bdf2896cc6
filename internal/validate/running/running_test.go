package running

import (
	"testing"

	"github.com/marmos91/fastpasta/internal/rdh"
	"github.com/stretchr/testify/require"
)

func baseRDH(pages uint16, stop uint8, orbit uint32) rdh.RDH {
	var r rdh.RDH
	r.RDH0.FeeID = 0x502A
	r.RDH1.Orbit = orbit
	r.RDH2.TriggerType = 0x6A03
	r.RDH2.PagesCounter = pages
	r.RDH2.StopBit = stop
	return r
}

func TestFirstRDHAlwaysPasses(t *testing.T) {
	v := New()
	require.NoError(t, v.Check(baseRDH(0, 0, 100)))
}

func TestSequentialPagesCounterAccepted(t *testing.T) {
	v := New()
	require.NoError(t, v.Check(baseRDH(0, 0, 100)))
	require.NoError(t, v.Check(baseRDH(1, 0, 100)))
	require.NoError(t, v.Check(baseRDH(2, 1, 100)))
	require.NoError(t, v.Check(baseRDH(0, 0, 101)))
}

func TestPagesCounterGapRejected(t *testing.T) {
	v := New()
	require.NoError(t, v.Check(baseRDH(0, 0, 100)))
	require.NoError(t, v.Check(baseRDH(1, 0, 100)))
	err := v.Check(baseRDH(5, 1, 100))
	require.Error(t, err)
	require.Contains(t, err.Error(), "pages_counter")
}

func TestUnchangedOrbitOnClosePageRejected(t *testing.T) {
	v := New()
	require.NoError(t, v.Check(baseRDH(0, 0, 100)))
	require.NoError(t, v.Check(baseRDH(1, 1, 100)))
	err := v.Check(baseRDH(2, 1, 100))
	require.Error(t, err)
	require.Contains(t, err.Error(), "orbit")
}

func TestMidHBFFeeIDChangeRejected(t *testing.T) {
	v := New()
	require.NoError(t, v.Check(baseRDH(0, 0, 100)))
	r := baseRDH(1, 0, 100)
	r.RDH0.FeeID = 0x1234
	err := v.Check(r)
	require.Error(t, err)
	require.Contains(t, err.Error(), "fee_id")
	require.Contains(t, err.Error(), "FEE ID:4660")
}

func TestInvalidStopBitRejected(t *testing.T) {
	v := New()
	r := baseRDH(0, 2, 100)
	err := v.Check(r)
	require.Error(t, err)
	require.Contains(t, err.Error(), "stop_bit")
}
