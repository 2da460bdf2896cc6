package scanner

import (
	"bufio"
	"bytes"
	"io"
	"testing"

	"github.com/marmos91/fastpasta/internal/rdh"
	"github.com/marmos91/fastpasta/internal/stats"
	"github.com/stretchr/testify/require"
)

func minimalRDH(t *testing.T, offsetToNext, memorySize uint16, linkID uint8, feeID uint16) []byte {
	t.Helper()
	r, err := rdh.ParseRDHFromRDH0(rdh.RDH0{
		HeaderID:   7,
		HeaderSize: 0x40,
		FeeID:      feeID,
		SystemID:   0x20,
	}, make([]byte, 56))
	require.NoError(t, err)
	r.OffsetToNext = offsetToNext
	r.MemorySize = memorySize
	r.LinkID = linkID
	r.RDH2.TriggerType = 0x6A03
	b := rdh.RDHToBytes(r)
	return b[:]
}

func TestLoadRDHMinimal(t *testing.T) {
	data := minimalRDH(t, 0x40, 0x40, 0, 0x502A)
	s := New(bufio.NewReader(bytes.NewReader(data)), Options{})
	r, err := s.LoadRDH()
	require.NoError(t, err)
	require.Equal(t, uint8(0), r.LinkID)
	require.Equal(t, uint16(0), r.PayloadSize())

	_, err = s.LoadRDH()
	require.ErrorIs(t, err, io.EOF)
}

func TestLoadRDHInvalidOffset(t *testing.T) {
	data := minimalRDH(t, 0, 0x40, 0, 0x502A)
	ch := make(chan stats.Event, 8)
	s := New(bufio.NewReader(bytes.NewReader(data)), Options{Sink: ch})
	_, err := s.LoadRDH()
	require.Error(t, err)
	ev := <-ch
	require.Equal(t, stats.EventFatal, ev.Kind)
}

func TestScannerFilterByLink(t *testing.T) {
	var buf bytes.Buffer
	for i := 0; i < 10; i++ {
		link := uint8(i % 2)
		buf.Write(minimalRDH(t, 0x40, 0x40, link, 0x502A))
	}
	ch := make(chan stats.Event, 1024)
	s := New(bufio.NewReader(&buf), Options{
		Filter: FilterTarget{Kind: FilterLink, Link: 0},
		Sink:   ch,
	})
	count := 0
	for {
		r, err := s.LoadRDH()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		require.Equal(t, uint8(0), r.LinkID)
		count++
	}
	require.Equal(t, 5, count)

	close(ch)
	var seen, filtered uint64
	for ev := range ch {
		switch ev.Kind {
		case stats.EventRDHSeen:
			seen += ev.Count
		case stats.EventRDHFiltered:
			filtered += ev.Count
		}
	}
	require.Equal(t, uint64(10), seen)
	require.Equal(t, uint64(5), filtered)
}

func TestLoadCDPSkipPayload(t *testing.T) {
	payload := bytes.Repeat([]byte{0xAA}, 20)
	rdhBytes := minimalRDH(t, 0x40+20, 0x40+20, 0, 0x502A)
	var buf bytes.Buffer
	buf.Write(rdhBytes)
	buf.Write(payload)

	s := New(bufio.NewReader(&buf), Options{SkipPayload: true})
	c, err := s.LoadCDP()
	require.NoError(t, err)
	require.Nil(t, c.Payload)
	require.Equal(t, uint64(0), c.Offset)
}

func TestLoadCDPWithPayload(t *testing.T) {
	payload := bytes.Repeat([]byte{0xAA}, 20)
	rdhBytes := minimalRDH(t, 0x40+20, 0x40+20, 0, 0x502A)
	var buf bytes.Buffer
	buf.Write(rdhBytes)
	buf.Write(payload)

	s := New(bufio.NewReader(&buf), Options{})
	c, err := s.LoadCDP()
	require.NoError(t, err)
	require.Equal(t, payload, c.Payload)
}
