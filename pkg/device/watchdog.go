package device

import (
	"fmt"
	"sync/atomic"
	"time"
)

// Watchdog reports a device as lost once its callback stops running. Tick
// is called from the callback; a period without a tick faults once.
type Watchdog struct {
	ticks atomic.Uint64
	quit  chan struct{}
	done  chan struct{}
}

func StartWatchdog(period time.Duration, fault func(error)) *Watchdog {
	w := &Watchdog{
		quit: make(chan struct{}),
		done: make(chan struct{}),
	}
	go w.run(period, fault)
	return w
}

func (w *Watchdog) Tick() {
	w.ticks.Add(1)
}

func (w *Watchdog) run(period time.Duration, fault func(error)) {
	defer close(w.done)
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	last := w.ticks.Load()
	for {
		select {
		case <-w.quit:
			return
		case <-ticker.C:
			n := w.ticks.Load()
			if n == last {
				fault(fmt.Errorf("%w: no audio callback for %v", ErrDeviceUnavailable, period))
				return
			}
			last = n
		}
	}
}

// Stop ends the watch and waits for it. fault is not called afterwards.
func (w *Watchdog) Stop() {
	close(w.quit)
	<-w.done
}
