package commands

import (
	"bufio"
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/marmos91/fastpasta/internal/rdh"
	"github.com/marmos91/fastpasta/internal/scanner"
	"github.com/marmos91/fastpasta/internal/seekidx"
)

func minimalRDHBytes(t *testing.T, offsetToNext uint16, linkID uint8, feeID uint16) []byte {
	t.Helper()
	r, err := rdh.ParseRDHFromRDH0(rdh.RDH0{
		HeaderID:   7,
		HeaderSize: 0x40,
		FeeID:      feeID,
		SystemID:   0x20,
	}, make([]byte, 56))
	require.NoError(t, err)
	r.OffsetToNext = offsetToNext
	r.LinkID = linkID
	b := rdh.RDHToBytes(r)
	return b[:]
}

// TestViewRecordsSeekIndex exercises the same scanner->seekidx wiring the
// view command runs, without going through cobra.
func TestViewRecordsSeekIndex(t *testing.T) {
	data := append(minimalRDHBytes(t, 0x40, 3, 0x502A), minimalRDHBytes(t, 0x40, 3, 0x502A)...)

	sc := scanner.New(bufio.NewReader(bytes.NewReader(data)), scanner.Options{})
	idx, err := seekidx.Open("")
	require.NoError(t, err)
	defer idx.Close()

	seq := make(map[uint8]uint64)
	for {
		batch, berr := sc.NextBatch()
		for _, c := range batch.CDPs {
			require.NoError(t, idx.Record(c.RDH.LinkID, seq[c.RDH.LinkID], c.Offset))
			seq[c.RDH.LinkID]++
		}
		if berr != nil {
			break
		}
	}

	offset, found, err := idx.Lookup(3, 1)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, uint64(0x40), offset)

	count, err := idx.Count(3)
	require.NoError(t, err)
	require.Equal(t, uint64(2), count)
}
