package sink

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ed-sim/ed-sim/sim"
)

const (
	// DefaultQueueSize bounds envelopes waiting for delivery.
	DefaultQueueSize = 1024

	// DefaultDeliveryTimeout bounds a single Deliver call.
	DefaultDeliveryTimeout = 10 * time.Second
)

// Dispatcher implements sim.Notifier. Notify never blocks: when the queue is full the
// envelope is dropped and counted.
type Dispatcher struct {
	sinks   []Sink
	timeout time.Duration

	mu     sync.RWMutex
	closed bool
	queue  chan Envelope

	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
	dropped atomic.Int64
	failed  atomic.Int64
}

// NewDispatcher starts the delivery worker. A non-positive queueSize or timeout uses the
// default.
func NewDispatcher(queueSize int, timeout time.Duration, sinks ...Sink) *Dispatcher {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	if timeout <= 0 {
		timeout = DefaultDeliveryTimeout
	}
	ctx, cancel := context.WithCancel(context.Background())
	d := &Dispatcher{
		sinks:   sinks,
		timeout: timeout,
		queue:   make(chan Envelope, queueSize),
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	go d.run()
	return d
}

// Notify snapshots n and queues it for delivery.
func (d *Dispatcher) Notify(n sim.Notification) {
	if len(d.sinks) == 0 {
		return
	}
	env := NewEnvelope(n)

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return
	}
	select {
	case d.queue <- env:
	default:
		d.dropped.Add(1)
		logrus.Warnf("Notification queue full, dropping %s envelope %s.", env.Kind, env.ID)
	}
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for env := range d.queue {
		for _, s := range d.sinks {
			ctx, cancel := context.WithTimeout(d.ctx, d.timeout)
			err := s.Deliver(ctx, env)
			cancel()
			if err != nil {
				d.failed.Add(1)
				logrus.WithFields(logrus.Fields{
					"sink":     s.Name(),
					"kind":     env.Kind,
					"envelope": env.ID,
				}).Errorf("Delivery failed: %v", err)
			}
		}
	}
}

// Close stops accepting notifications and waits for queued envelopes to be delivered.
// If ctx expires first, in-flight deliveries are cancelled and ctx.Err() is returned.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	select {
	case <-d.done:
		d.cancel()
		return nil
	case <-ctx.Done():
		d.cancel()
		return ctx.Err()
	}
}

// Dropped returns how many envelopes were discarded because the queue was full.
func (d *Dispatcher) Dropped() int64 {
	return d.dropped.Load()
}

// Failed returns how many Deliver calls returned an error.
func (d *Dispatcher) Failed() int64 {
	return d.failed.Load()
}
