package audit

import (
	"context"
	"sync"
	"sync/atomic"
)

// Config controls dispatcher buffering behavior.
type Config struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// Dispatcher forwards events to a sink from a single background goroutine,
// decoupling sink latency from the callers' hot path. A nil Dispatcher is
// valid and drops everything, so callers never have to guard the disabled
// case.
type Dispatcher struct {
	sink       Sink
	events     chan Event
	stop       chan struct{}
	dropIfFull bool

	wg      sync.WaitGroup
	once    sync.Once
	closed  atomic.Bool
	dropped atomic.Uint64
}

// NewDispatcher starts the forwarding goroutine. Returns nil when auditing
// is disabled.
func NewDispatcher(cfg Config, sink Sink) *Dispatcher {
	if !cfg.Enabled {
		return nil
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 1
	}
	if sink == nil {
		sink = NoOpSink{}
	}

	d := &Dispatcher{
		sink:       sink,
		events:     make(chan Event, cfg.BufferSize),
		stop:       make(chan struct{}),
		dropIfFull: cfg.DropIfFull,
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		for {
			select {
			case event := <-d.events:
				d.sink.Emit(context.Background(), event)
			case <-d.stop:
				d.drain()
				return
			}
		}
	}()

	return d
}

// drain flushes events still buffered at shutdown.
func (d *Dispatcher) drain() {
	for {
		select {
		case event := <-d.events:
			d.sink.Emit(context.Background(), event)
		default:
			return
		}
	}
}

// Emit hands an event to the forwarding goroutine. With DropIfFull it never
// blocks; otherwise it waits until the buffer accepts the event, the context
// is cancelled, or the dispatcher shuts down.
func (d *Dispatcher) Emit(ctx context.Context, event Event) {
	if d == nil || d.closed.Load() {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}

	if d.dropIfFull {
		select {
		case d.events <- event:
		case <-d.stop:
		default:
			d.dropped.Add(1)
		}
		return
	}

	select {
	case d.events <- event:
	case <-ctx.Done():
	case <-d.stop:
	}
}

// Close stops accepting events, flushes the buffer, and waits for the
// forwarding goroutine to exit. Safe to call more than once.
func (d *Dispatcher) Close() {
	if d == nil {
		return
	}
	d.once.Do(func() {
		d.closed.Store(true)
		close(d.stop)
		d.wg.Wait()
	})
}

// Dropped reports how many events were discarded because the buffer was
// full.
func (d *Dispatcher) Dropped() uint64 {
	if d == nil {
		return 0
	}
	return d.dropped.Load()
}
