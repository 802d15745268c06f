package async

import "sync"

// Event is a one-shot broadcast. The zero value is ready to use.
type Event struct {
	once sync.Once
	mu   sync.Mutex
	ch   chan struct{}
}

func (e *Event) init() chan struct{} {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.ch == nil {
		e.ch = make(chan struct{})
	}
	return e.ch
}

// Set fires the event. It reports whether this call fired it.
func (e *Event) Set() bool {
	fired := false
	e.once.Do(func() {
		close(e.init())
		fired = true
	})
	return fired
}

func (e *Event) Done() <-chan struct{} {
	return e.init()
}

// Notifier is a mailbox of size one. Notify never blocks and keeps the
// pending value until it is received.
type Notifier[T any] chan T

func NewNotifier[T any]() Notifier[T] {
	return make(Notifier[T], 1)
}

// Notify delivers value unless one is already pending.
func (n Notifier[T]) Notify(value T) bool {
	select {
	case n <- value:
		return true
	default:
		return false
	}
}
