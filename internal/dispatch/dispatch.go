// Package dispatch implements the CDP batch dispatcher: it routes each
// CDP to a per-dispatch-id validator task over a bounded channel,
// spawning tasks lazily and growing channel capacity exponentially as
// new ids are observed (spec §4.4).
package dispatch

import (
	"context"
	"strconv"
	"sync"

	"github.com/marmos91/fastpasta/internal/cdp"
	"github.com/marmos91/fastpasta/internal/metrics"
	"github.com/marmos91/fastpasta/internal/rdh"
	"github.com/marmos91/fastpasta/internal/stats"
	"github.com/marmos91/fastpasta/internal/telemetry"
	"github.com/marmos91/fastpasta/internal/validate"
)

// KeyKind selects whether the dispatcher routes by link_id or fee_id.
type KeyKind int

const (
	KeyByLink KeyKind = iota
	KeyByFee
)

// initialChannelCapacity and maxChannelCapacity bound the exponential
// capacity back-off applied as new validator channels are allocated
// (spec §4.4).
const (
	initialChannelCapacity = 128
	maxChannelCapacity     = 16384
)

type validatorHandle struct {
	ch   chan cdp.CDP
	done chan struct{}
}

// Dispatcher owns one validator task per observed dispatch id.
type Dispatcher struct {
	key     KeyKind
	cfg     validate.Config
	sink    stats.Sink
	metrics *metrics.Metrics

	mu      sync.Mutex
	handles map[uint32]*validatorHandle
	nextCap int
	wg      sync.WaitGroup
}

// New creates a Dispatcher keyed by key, spawning validator tasks
// configured with cfg and reporting to sink. m may be nil, in which
// case metric recording is a no-op.
func New(key KeyKind, cfg validate.Config, sink stats.Sink, m *metrics.Metrics) *Dispatcher {
	return &Dispatcher{
		key:     key,
		cfg:     cfg,
		sink:    sink,
		metrics: m,
		handles: make(map[uint32]*validatorHandle),
		nextCap: initialChannelCapacity,
	}
}

func (d *Dispatcher) keyFor(r rdh.RDH) uint32 {
	if d.key == KeyByFee {
		return uint32(r.RDH0.FeeID)
	}
	return uint32(r.LinkID)
}

// DispatchBatch routes every CDP in b to its dispatch id's validator,
// spawning the validator on first sight of that id. A send on a closed
// or gone validator channel is reported as a Fatal naming the id, per
// spec §4.4, and dispatch continues with the next CDP.
func (d *Dispatcher) DispatchBatch(b *cdp.Batch) {
	for _, c := range b.CDPs {
		d.dispatchOne(c)
	}
}

func (d *Dispatcher) dispatchOne(c cdp.CDP) {
	key := d.keyFor(c.RDH)

	d.mu.Lock()
	h, ok := d.handles[key]
	if !ok {
		h = d.spawn(key)
	}
	d.mu.Unlock()

	select {
	case h.ch <- c:
		d.metrics.IncCDPsDispatched(d.keyKindLabel())
	case <-h.done:
		d.sink <- stats.Fatal("validator %d: channel closed unexpectedly", key)
	}
}

func (d *Dispatcher) keyKindLabel() string {
	if d.key == KeyByFee {
		return "fee_id"
	}
	return "link_id"
}

// spawn must be called with d.mu held.
func (d *Dispatcher) spawn(key uint32) *validatorHandle {
	chanCap := d.nextCap
	if chanCap > maxChannelCapacity {
		chanCap = maxChannelCapacity
	} else {
		d.nextCap *= 2
	}

	h := &validatorHandle{ch: make(chan cdp.CDP, chanCap), done: make(chan struct{})}
	d.handles[key] = h
	d.metrics.SetActiveValidators(len(d.handles))

	ctx := context.Background()
	label := d.keyKindLabel()
	keyValue := strconv.FormatUint(uint64(key), 10)

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer close(h.done)
		task := validate.NewTask(d.cfg, d.sink)
		telemetry.TagGoroutine(ctx, func() {
			for c := range h.ch {
				task.Process(c)
			}
		}, label, keyValue)
	}()
	return h
}

// Shutdown closes every validator's channel and waits for all of them
// to drain and return (spec §4.4).
func (d *Dispatcher) Shutdown() {
	d.mu.Lock()
	for _, h := range d.handles {
		close(h.ch)
	}
	d.mu.Unlock()
	d.wg.Wait()
}
