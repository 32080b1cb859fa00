package logship

import (
	"context"
	"sync"
	"time"
)

// Lifecycle of the worker. Transitions only run forward:
// running -> draining -> stopped.
type dispatcherState int

const (
	stateRunning dispatcherState = iota
	stateDraining
	stateStopped
)

const (
	defaultCapacity     = 256
	defaultSendTimeout  = 5 * time.Second
	defaultDrainTimeout = 3 * time.Second
)

// Config is the constructor-time contract of a Dispatcher. Synchronous mode
// sends on the caller's goroutine instead of queuing; it exists for
// deterministic tests and is an explicit flag, never inferred from the
// environment.
type Config struct {
	Capacity     int
	SendTimeout  time.Duration
	DrainTimeout time.Duration
	Synchronous  bool
}

// Dispatcher decouples log producers from remote delivery. Enqueue never
// blocks on network I/O; one background worker drains a bounded FIFO and
// forwards records one at a time. Delivery is best-effort: transport errors
// are swallowed, and under overload the oldest queued records are evicted.
type Dispatcher struct {
	transport Transport
	cfg       Config

	mu    sync.Mutex
	cond  *sync.Cond
	queue []Record
	st    dispatcherState
	drops uint64

	done           chan struct{}
	closeTransport sync.Once
}

// New starts a Dispatcher over transport. Zero Config fields fall back to
// defaults (capacity 256, 5s per send, 3s drain).
func New(transport Transport, cfg Config) *Dispatcher {
	if cfg.Capacity <= 0 {
		cfg.Capacity = defaultCapacity
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = defaultSendTimeout
	}
	if cfg.DrainTimeout <= 0 {
		cfg.DrainTimeout = defaultDrainTimeout
	}
	d := &Dispatcher{
		transport: transport,
		cfg:       cfg,
		st:        stateRunning,
	}
	d.cond = sync.NewCond(&d.mu)
	if !cfg.Synchronous {
		d.done = make(chan struct{})
		go d.work()
	}
	return d
}

// Enqueue hands a record to the dispatcher and returns immediately. When the
// queue is full the single oldest record is evicted (counted as a drop) and
// the new record inserted, both under one lock acquisition so concurrent
// producers cannot lose or duplicate records. After Close the record is a
// counted drop, never a silent one.
func (d *Dispatcher) Enqueue(rec Record) {
	if d.cfg.Synchronous {
		d.mu.Lock()
		running := d.st == stateRunning
		if !running {
			d.drops++
		}
		d.mu.Unlock()
		if running {
			d.send(rec)
		}
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.st != stateRunning {
		d.drops++
		return
	}
	if len(d.queue) >= d.cfg.Capacity {
		d.queue = d.queue[1:]
		d.drops++
	}
	d.queue = append(d.queue, rec)
	d.cond.Signal()
}

// Close stops intake, drains queued records for at most DrainTimeout, then
// discards the remainder (counted as drops) and releases the transport. It
// is idempotent and never blocks past the drain ceiling, even when the
// transport is unreachable.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.st == stateRunning {
		d.st = stateDraining
		d.cond.Broadcast()
	}
	d.mu.Unlock()

	if d.cfg.Synchronous {
		d.mu.Lock()
		d.st = stateStopped
		d.mu.Unlock()
		d.closeTransport.Do(func() { d.transport.Close() })
		return
	}

	select {
	case <-d.done:
	case <-time.After(d.cfg.DrainTimeout):
		d.mu.Lock()
		d.drops += uint64(len(d.queue))
		d.queue = nil
		d.st = stateStopped
		d.cond.Broadcast()
		d.mu.Unlock()
	}
	d.closeTransport.Do(func() { d.transport.Close() })
}

// Drops reports how many records were evicted under backpressure, rejected
// after shutdown began, or discarded at the drain deadline.
func (d *Dispatcher) Drops() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.drops
}

// work is the single consumer: it sleeps until the queue is non-empty or
// shutdown is requested, forwards one record per iteration, and exits once
// draining finds the queue empty.
func (d *Dispatcher) work() {
	defer close(d.done)
	for {
		d.mu.Lock()
		for len(d.queue) == 0 && d.st == stateRunning {
			d.cond.Wait()
		}
		if len(d.queue) == 0 {
			d.st = stateStopped
			d.mu.Unlock()
			return
		}
		rec := d.queue[0]
		d.queue = d.queue[1:]
		d.mu.Unlock()

		d.send(rec)
	}
}

// send forwards one record with a bounded deadline. Errors are swallowed:
// log shipping must never destabilize the host CLI, and retries could starve
// the drain deadline.
func (d *Dispatcher) send(rec Record) {
	ctx, cancel := context.WithTimeout(context.Background(), d.cfg.SendTimeout)
	defer cancel()
	_ = d.transport.Send(ctx, rec)
}
