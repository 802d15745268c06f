package notify

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Soundlink/pkg/state"
)

func TestDispatcherOrder(t *testing.T) {
	var got []int
	var busy atomic.Bool

	d := NewDispatcher(Handlers{
		OnVolumeChanged: func(level float64) {
			assert.True(t, busy.CompareAndSwap(false, true), "handlers overlap")
			got = append(got, int(level))
			busy.Store(false)
		},
	}, nil)

	var wg sync.WaitGroup
	for p := 0; p < 4; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				d.Post(Event{Kind: VolumeChanged, Level: float64(p*1000 + i)})
			}
		}()
	}
	wg.Wait()
	d.Close()

	require.Len(t, got, 400)
	last := map[int]int{0: -1, 1: -1, 2: -1, 3: -1}
	for _, v := range got {
		p, i := v/1000, v%1000
		assert.Equal(t, last[p]+1, i, "producer %d out of order", p)
		last[p] = i
	}
}

func TestDispatcherSingleProducerOrder(t *testing.T) {
	var got []Kind
	d := NewDispatcher(Handlers{
		OnSending:      func([]byte) { got = append(got, Sending) },
		OnSent:         func([]byte) { got = append(got, Sent) },
		OnStateChanged: func(old, new state.State) { got = append(got, StateChanged) },
		OnReceiving:    func() { got = append(got, Receiving) },
	}, nil)

	d.Post(Event{Kind: StateChanged, Old: state.Running, New: state.Sending})
	d.Post(Event{Kind: Sending})
	d.Post(Event{Kind: Sent})
	d.Post(Event{Kind: Receiving})
	d.Flush()

	assert.Equal(t, []Kind{StateChanged, Sending, Sent, Receiving}, got)
	d.Close()
}

func TestDispatcherDeliversFields(t *testing.T) {
	boom := errors.New("boom")
	var (
		payload  []byte
		old, now state.State
		authErr  error
		devErr   error
	)

	d := NewDispatcher(Handlers{
		OnReceived:         func(b []byte) { payload = b },
		OnStateChanged:     func(o, n state.State) { old, now = o, n },
		OnAuthStateChanged: func(err error) { authErr = err },
		OnError:            func(err error) { devErr = err },
	}, nil)
	defer d.Close()

	d.Post(Event{Kind: Received, Payload: []byte("hi")})
	d.Post(Event{Kind: StateChanged, Old: state.Stopped, New: state.Running})
	d.Post(Event{Kind: AuthStateChanged, Err: boom})
	d.Post(Event{Kind: Error, Err: boom})
	d.Post(Event{Kind: Sent}) // no handler
	d.Flush()

	assert.Equal(t, []byte("hi"), payload)
	assert.Equal(t, state.Stopped, old)
	assert.Equal(t, state.Running, now)
	assert.ErrorIs(t, authErr, boom)
	assert.ErrorIs(t, devErr, boom)
}

func TestDispatcherRecoversPanics(t *testing.T) {
	calls := 0
	d := NewDispatcher(Handlers{
		OnReceiving: func() {
			calls++
			panic("bad handler")
		},
	}, nil)

	d.Post(Event{Kind: Receiving})
	d.Post(Event{Kind: Receiving})
	d.Flush()
	d.Close()

	assert.Equal(t, 2, calls)
}

func TestDispatcherCloseDrainsAndRejects(t *testing.T) {
	var n atomic.Int32
	d := NewDispatcher(Handlers{OnReceiving: func() { n.Add(1) }}, nil)

	for i := 0; i < 50; i++ {
		d.Post(Event{Kind: Receiving})
	}
	d.Close()
	assert.Equal(t, int32(50), n.Load())

	assert.False(t, d.Post(Event{Kind: Receiving}))
	assert.False(t, d.Do(func() {}))
	d.Flush()
}

func TestDispatcherSetHandlers(t *testing.T) {
	var first, second int
	d := NewDispatcher(Handlers{OnReceiving: func() { first++ }}, nil)
	defer d.Close()

	d.Post(Event{Kind: Receiving})
	d.Flush()
	d.SetHandlers(Handlers{OnReceiving: func() { second++ }})
	d.Post(Event{Kind: Receiving})
	d.Flush()

	assert.Equal(t, 1, first)
	assert.Equal(t, 1, second)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "auth state changed", AuthStateChanged.String())
	assert.Equal(t, "Kind(42)", Kind(42).String())
}
