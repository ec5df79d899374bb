package events

import (
	"context"
	"errors"
	"log/slog"
	"runtime/debug"
	"sync"
)

// ErrClosed is returned by Sync after Close.
var ErrClosed = errors.New("events: dispatcher closed")

// Handler receives events of one type.
type Handler func(Event)

const defaultBuffer = 256

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithBuffer sets the queue capacity.
func WithBuffer(n int) Option {
	return func(d *Dispatcher) {
		if n > 0 {
			d.buffer = n
		}
	}
}

// WithLogger replaces slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(d *Dispatcher) { d.logger = l }
}

type subscription struct {
	id int
	fn Handler
}

// Dispatcher queues events and runs their handlers sequentially.
type Dispatcher struct {
	buffer int
	logger *slog.Logger

	mu       sync.RWMutex
	handlers map[Type][]subscription
	nextID   int

	queue    chan Event
	quit     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// New starts a dispatcher.
func New(opts ...Option) *Dispatcher {
	d := &Dispatcher{
		buffer:   defaultBuffer,
		handlers: make(map[Type][]subscription),
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = slog.Default()
	}
	d.queue = make(chan Event, d.buffer)

	go d.run()
	return d
}

// Subscribe registers h for events of type t and returns a function that
// removes it.
func (d *Dispatcher) Subscribe(t Type, h Handler) func() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.nextID++
	id := d.nextID
	d.handlers[t] = append(d.handlers[t], subscription{id: id, fn: h})

	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		subs := d.handlers[t]
		for i, s := range subs {
			if s.id == id {
				d.handlers[t] = append(subs[:i:i], subs[i+1:]...)
				return
			}
		}
	}
}

// Publish queues e without blocking. It returns false when the dispatcher
// is closed or the queue is full, in which case e is dropped.
func (d *Dispatcher) Publish(e Event) bool {
	select {
	case <-d.quit:
		return false
	default:
	}

	select {
	case d.queue <- e:
		return true
	default:
		d.logger.Warn("event queue full, dropping event", slog.String("type", string(e.Type())))
		return false
	}
}

// Post queues fn to run on the dispatch goroutine.
func (d *Dispatcher) Post(name string, fn func()) bool {
	return d.Publish(Task{Name: name, Run: fn})
}

// Dispatch delivers e to its handlers on the caller's goroutine. Use it
// only from code already running on the dispatch goroutine, or in tests.
func (d *Dispatcher) Dispatch(e Event) {
	if t, ok := e.(Task); ok {
		d.safely(e, func() {
			if t.Run != nil {
				t.Run()
			}
		})
		return
	}

	d.mu.RLock()
	subs := append([]subscription(nil), d.handlers[e.Type()]...)
	d.mu.RUnlock()

	for _, s := range subs {
		d.safely(e, func() { s.fn(e) })
	}
}

// Sync waits until every event queued before the call has been handled.
func (d *Dispatcher) Sync(ctx context.Context) error {
	reached := make(chan struct{})
	if !d.Post("sync", func() { close(reached) }) {
		return ErrClosed
	}
	select {
	case <-reached:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-d.done:
		return ErrClosed
	}
}

// Close stops the dispatcher. Queued events that have not started are
// dropped. Safe to call multiple times.
func (d *Dispatcher) Close() {
	d.stopOnce.Do(func() { close(d.quit) })
	<-d.done
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for {
		select {
		case <-d.quit:
			return
		case e := <-d.queue:
			d.Dispatch(e)
		}
	}
}

func (d *Dispatcher) safely(e Event, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("event handler panicked",
				slog.String("type", string(e.Type())),
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())))
		}
	}()
	fn()
}
