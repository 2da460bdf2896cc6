package seekidx

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRecordAndLookupRoundTrip(t *testing.T) {
	idx, err := Open("")
	require.NoError(t, err)
	defer idx.Close()

	require.NoError(t, idx.Record(3, 0, 0x1000))
	require.NoError(t, idx.Record(3, 1, 0x1100))

	off, found, err := idx.Lookup(3, 1)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, uint64(0x1100), off)
}

func TestLookupMissingReturnsNotFound(t *testing.T) {
	idx, err := Open("")
	require.NoError(t, err)
	defer idx.Close()

	_, found, err := idx.Lookup(9, 0)
	require.NoError(t, err)
	require.False(t, found)
}

func TestCountTracksPerLinkEntries(t *testing.T) {
	idx, err := Open("")
	require.NoError(t, err)
	defer idx.Close()

	for i := uint64(0); i < 5; i++ {
		require.NoError(t, idx.Record(1, i, i*64))
	}
	require.NoError(t, idx.Record(2, 0, 0))

	n, err := idx.Count(1)
	require.NoError(t, err)
	require.Equal(t, uint64(5), n)

	n, err = idx.Count(2)
	require.NoError(t, err)
	require.Equal(t, uint64(1), n)
}
