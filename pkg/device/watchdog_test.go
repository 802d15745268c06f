package device

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type faults struct {
	mu   sync.Mutex
	errs []error
}

func (f *faults) add(err error) {
	f.mu.Lock()
	f.errs = append(f.errs, err)
	f.mu.Unlock()
}

func (f *faults) get() []error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]error(nil), f.errs...)
}

func TestWatchdogStall(t *testing.T) {
	var f faults
	w := StartWatchdog(20*time.Millisecond, f.add)
	defer w.Stop()

	require.Eventually(t, func() bool { return len(f.get()) > 0 }, time.Second, 5*time.Millisecond)
	assert.ErrorIs(t, f.get()[0], ErrDeviceUnavailable)

	time.Sleep(60 * time.Millisecond)
	assert.Len(t, f.get(), 1, "fault reported once")
}

func TestWatchdogTicking(t *testing.T) {
	var f faults
	w := StartWatchdog(50*time.Millisecond, f.add)

	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
				w.Tick()
				time.Sleep(time.Millisecond)
			}
		}
	}()

	time.Sleep(200 * time.Millisecond)
	w.Stop()
	close(stop)
	wg.Wait()

	assert.Empty(t, f.get())
}

func TestWatchdogStopBeforePeriod(t *testing.T) {
	var f faults
	w := StartWatchdog(time.Hour, f.add)
	w.Stop()
	assert.Empty(t, f.get())
}
