package device

import (
	"runtime"
	"sync"
	"time"
)

// Loopback feeds each block's output back as the next block's input.
type Loopback struct {
	SampleRate float64 // the fake sample rate, 0 means no limit
	BlockSize  int     // 0 means BufferSize

	faultHandler
	mu   sync.Mutex
	done chan struct{}
	exit chan struct{}
}

func (d *Loopback) Start(callback Callback) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.done != nil {
		return ErrAlreadyStarted
	}

	size := d.BlockSize
	if size == 0 {
		size = BufferSize
	}
	done := make(chan struct{})
	exit := make(chan struct{})
	d.done, d.exit = done, exit

	go func() {
		defer close(exit)
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		_ = RaisePriority()

		var buf = make([][]int32, 2)
		buf[0] = alloci32(size)
		buf[1] = alloci32(size)

		swap := true
		update := func() {
			if swap {
				callback(buf[0], buf[1])
			} else {
				callback(buf[1], buf[0])
			}
			swap = !swap
		}

		period := blockPeriod(d.SampleRate, size)
		if period == 0 {
			for {
				select {
				case <-done:
					return
				default:
					update()
				}
			}
		}

		ticker := time.NewTicker(period)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				update()
			}
		}
	}()
	return nil
}

// Stop returns after the last callback has returned.
func (d *Loopback) Stop() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.done == nil {
		return ErrNotStarted
	}
	close(d.done)
	<-d.exit
	d.done, d.exit = nil, nil
	return nil
}
