package notify

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nerrad567/gray-logic-interaction/internal/animation"
)

const (
	// DefaultQueueSize is the event buffer used when NewDispatcher gets 0.
	DefaultQueueSize = 256

	// sinkTimeout bounds one sink delivery.
	sinkTimeout = 5 * time.Second
)

// Sink consumes door transitions.
type Sink interface {
	Handle(ctx context.Context, ev animation.Event) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, ev animation.Event) error

// Handle calls f(ctx, ev).
func (f SinkFunc) Handle(ctx context.Context, ev animation.Event) error { return f(ctx, ev) }

// Logger is the logging contract used by this package.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

type namedSink struct {
	name string
	sink Sink
}

// Dispatcher queues controller events and delivers them to sinks on a
// single worker goroutine, preserving transition order.
//
// When the queue is full the event is dropped and counted; the frame loop
// never blocks on a slow broker or disk.
type Dispatcher struct {
	queue  chan animation.Event
	logger Logger

	mu      sync.RWMutex
	sinks   []namedSink
	running bool
	cancel  context.CancelFunc
	done    chan struct{}

	delivered atomic.Uint64
	dropped   atomic.Uint64
	failed    atomic.Uint64
}

// NewDispatcher creates a dispatcher with a queue of size events.
func NewDispatcher(size int) *Dispatcher {
	if size <= 0 {
		size = DefaultQueueSize
	}
	return &Dispatcher{
		queue:  make(chan animation.Event, size),
		logger: noopLogger{},
	}
}

// SetLogger sets the logger for the dispatcher.
func (d *Dispatcher) SetLogger(logger Logger) {
	if logger == nil {
		logger = noopLogger{}
	}
	d.mu.Lock()
	d.logger = logger
	d.mu.Unlock()
}

// Add registers a sink under name. Sinks run in registration order.
func (d *Dispatcher) Add(name string, sink Sink) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sinks = append(d.sinks, namedSink{name: name, sink: sink})
}

// Observe enqueues ev. It never blocks.
func (d *Dispatcher) Observe(ev animation.Event) {
	select {
	case d.queue <- ev:
	default:
		n := d.dropped.Add(1)
		d.getLogger().Warn("door event dropped, queue full",
			"door", ev.Session.Door,
			"state", string(ev.Session.State),
			"dropped", n,
		)
	}
}

// Start runs the delivery worker until ctx is cancelled or Stop is called.
func (d *Dispatcher) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.running {
		return ErrAlreadyRunning
	}

	ctx, cancel := context.WithCancel(ctx)
	d.running = true
	d.cancel = cancel
	d.done = make(chan struct{})

	go d.run(ctx, d.done)
	return nil
}

// Stop halts the worker after it delivers the events already queued.
// It is safe to call more than once.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if !d.running {
		d.mu.Unlock()
		return
	}
	d.running = false
	cancel, done := d.cancel, d.done
	d.mu.Unlock()

	cancel()
	<-done
}

// Stats reports delivered, dropped and failed deliveries since creation.
// A delivery is one event handed to one sink.
func (d *Dispatcher) Stats() (delivered, dropped, failed uint64) {
	return d.delivered.Load(), d.dropped.Load(), d.failed.Load()
}

// Pending returns the number of queued events.
func (d *Dispatcher) Pending() int {
	return len(d.queue)
}

func (d *Dispatcher) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	for {
		select {
		case ev := <-d.queue:
			d.deliver(ev)
		case <-ctx.Done():
			d.drain()
			return
		}
	}
}

func (d *Dispatcher) drain() {
	for {
		select {
		case ev := <-d.queue:
			d.deliver(ev)
		default:
			return
		}
	}
}

func (d *Dispatcher) deliver(ev animation.Event) {
	d.mu.RLock()
	sinks := make([]namedSink, len(d.sinks))
	copy(sinks, d.sinks)
	logger := d.logger
	d.mu.RUnlock()

	for _, s := range sinks {
		ctx, cancel := context.WithTimeout(context.Background(), sinkTimeout)
		err := s.sink.Handle(ctx, ev)
		cancel()

		if err != nil {
			d.failed.Add(1)
			logger.Warn("door event sink failed",
				"sink", s.name,
				"door", ev.Session.Door,
				"state", string(ev.Session.State),
				"error", err,
			)
			continue
		}
		d.delivered.Add(1)
	}
}

func (d *Dispatcher) getLogger() Logger {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.logger
}
