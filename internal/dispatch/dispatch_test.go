package dispatch

import (
	"testing"
	"time"

	"github.com/marmos91/fastpasta/internal/cdp"
	"github.com/marmos91/fastpasta/internal/rdh"
	"github.com/marmos91/fastpasta/internal/stats"
	"github.com/marmos91/fastpasta/internal/validate"
	"github.com/stretchr/testify/require"
)

func cdpWithLink(link uint8) cdp.CDP {
	var r rdh.RDH
	r.RDH0.HeaderID = 7
	r.RDH0.HeaderSize = 0x40
	r.RDH0.SystemID = 0x20
	r.RDH2.TriggerType = 1
	r.LinkID = link
	return cdp.CDP{RDH: r}
}

func TestDispatchBatchRoutesByLinkAndShutsDownCleanly(t *testing.T) {
	ch := make(chan stats.Event, 256)
	d := New(KeyByLink, validate.Config{}, ch, nil)

	b := cdp.NewBatch()
	for i := 0; i < 10; i++ {
		b.Add(cdpWithLink(uint8(i % 3)))
	}
	d.DispatchBatch(b)

	done := make(chan struct{})
	go func() {
		d.Shutdown()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("dispatcher shutdown did not complete")
	}

	require.Len(t, d.handles, 3)
}
