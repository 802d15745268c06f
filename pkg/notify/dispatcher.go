package notify

import (
	"io"
	"sync"

	"github.com/charmbracelet/log"
)

// Dispatcher delivers events to Handlers one at a time, in posting order,
// on a single goroutine. Post never blocks.
type Dispatcher struct {
	logger *log.Logger

	mu       sync.Mutex
	handlers Handlers
	queue    []Event
	closed   bool

	wake chan struct{}
	done chan struct{}
}

func NewDispatcher(h Handlers, logger *log.Logger) *Dispatcher {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	d := &Dispatcher{
		logger:   logger,
		handlers: h,
		wake:     make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
	go d.loop()
	return d
}

// SetHandlers replaces the handlers for events delivered from now on.
func (d *Dispatcher) SetHandlers(h Handlers) {
	d.mu.Lock()
	d.handlers = h
	d.mu.Unlock()
}

// Post queues ev. It reports false once the dispatcher is closed.
func (d *Dispatcher) Post(ev Event) bool {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		d.logger.Debug("dropped event after close", "kind", ev.Kind)
		return false
	}
	d.queue = append(d.queue, ev)
	d.mu.Unlock()

	select {
	case d.wake <- struct{}{}:
	default:
	}
	return true
}

// Do runs fn on the delivery goroutine after everything posted before it.
func (d *Dispatcher) Do(fn func()) bool {
	return d.Post(Event{Kind: call, fn: fn})
}

// Flush waits until every event posted before the call has been delivered.
// It must not be called from a handler.
func (d *Dispatcher) Flush() {
	flushed := make(chan struct{})
	if !d.Do(func() { close(flushed) }) {
		<-d.done
		return
	}
	select {
	case <-flushed:
	case <-d.done:
	}
}

// Close delivers what is queued and stops the delivery goroutine.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	select {
	case d.wake <- struct{}{}:
	default:
	}
	<-d.done
}

func (d *Dispatcher) loop() {
	defer close(d.done)

	var batch []Event
	for range d.wake {
		d.mu.Lock()
		batch, d.queue = d.queue, batch[:0]
		closed := d.closed
		d.mu.Unlock()

		for i := range batch {
			d.deliver(batch[i])
			batch[i] = Event{}
		}

		if closed {
			d.mu.Lock()
			empty := len(d.queue) == 0
			d.mu.Unlock()
			if empty {
				return
			}
			// events posted while the last batch was running
			select {
			case d.wake <- struct{}{}:
			default:
			}
		}
	}
}

func (d *Dispatcher) deliver(ev Event) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("handler panicked", "kind", ev.Kind, "panic", r)
		}
	}()

	d.mu.Lock()
	h := d.handlers
	d.mu.Unlock()

	h.deliver(ev)
}
