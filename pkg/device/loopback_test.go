package device

import (
	"errors"
	"reflect"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoopback(t *testing.T) {

	lastOutput := alloci32(BufferSize)
	var calls atomic.Int32

	var dev Device = &Loopback{
		SampleRate: 48000,
	}

	require.NoError(t, dev.Start(func(in, out []int32) {
		if !reflect.DeepEqual(in, lastOutput) {
			t.Errorf("Expected %v, but got %v", lastOutput[0], in[0])
		}

		randi32(out)
		copy(lastOutput, out)
		calls.Add(1)
	}))

	assert.ErrorIs(t, dev.Start(func(in, out []int32) {}), ErrAlreadyStarted)

	time.Sleep(50 * time.Millisecond)
	require.NoError(t, dev.Stop())
	assert.Positive(t, calls.Load())

	stopped := calls.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, stopped, calls.Load(), "callback ran after Stop")
	assert.ErrorIs(t, dev.Stop(), ErrNotStarted)
}

func TestLoopbackRestart(t *testing.T) {
	dev := &Loopback{SampleRate: 48000, BlockSize: 64}
	for i := 0; i < 2; i++ {
		got := make(chan int, 1)
		require.NoError(t, dev.Start(func(in, out []int32) {
			select {
			case got <- len(in):
			default:
			}
		}))
		assert.Equal(t, 64, <-got)
		require.NoError(t, dev.Stop())
	}
}

func TestLoopbackFault(t *testing.T) {
	dev := &Loopback{}
	var fr FaultReporter = dev

	var got error
	fr.SetFaultHandler(func(err error) { got = err })
	dev.Fault(ErrDeviceUnavailable)
	assert.True(t, errors.Is(got, ErrDeviceUnavailable))
}
