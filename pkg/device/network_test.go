package device

import (
	"reflect"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNetwork(t *testing.T) {

	lastOutSum1 := alloci32(BufferSize)
	lastOutSum2 := alloci32(BufferSize)
	lastOutSum3 := alloci32(BufferSize)
	lastOutSum4 := alloci32(BufferSize)
	outputSum1 := alloci32(BufferSize)
	outputSum3 := alloci32(BufferSize)
	outputSum4 := alloci32(BufferSize)

	network := Network[string]{
		SampleRate: 48000,
		Config: NetworkConfig[string]{
			{In: "buf1", Out: "buf1"},
			{In: "buf1", Out: "buf1"},
			{In: "buf2", Out: "buf2"},
			{In: "buf3", Out: "buf4"},
			{In: "buf4", Out: "buf3"},
		},
		LateUpdate: func() {
			copy(lastOutSum1, outputSum1)
			copy(lastOutSum3, outputSum3)
			copy(lastOutSum4, outputSum4)
			cleari32(outputSum1)
		},
	}

	devs := network.Build()

	require.NoError(t, devs[0].Start(func(in, out []int32) {

		if !reflect.DeepEqual(in, lastOutSum1) {
			t.Errorf("[dev1] Expected %v, but got %v", lastOutSum1, in)
		}

		randi32(out)
		sumi32(outputSum1, out, outputSum1)
	}))

	require.NoError(t, devs[1].Start(func(in, out []int32) {

		if !reflect.DeepEqual(in, lastOutSum1) {
			t.Errorf("[dev2] Expected %v, but got %v", lastOutSum1, in)
		}

		randi32(out)
		sumi32(outputSum1, out, outputSum1)
	}))

	require.NoError(t, devs[2].Start(func(in, out []int32) {
		if !reflect.DeepEqual(in, lastOutSum2) {
			t.Errorf("[dev3] Expected %v, but got %v", lastOutSum2, in[0])
		}

		randi32(out)
		copy(lastOutSum2, out)
	}))

	require.NoError(t, devs[3].Start(func(in, out []int32) {

		if !reflect.DeepEqual(in, lastOutSum4) {
			t.Errorf("[dev4] Expected %v, but got %v", lastOutSum4, in)
		}

		randi32(out)
		copy(outputSum3, out)
	}))

	require.NoError(t, devs[4].Start(func(in, out []int32) {

		if !reflect.DeepEqual(in, lastOutSum3) {
			t.Errorf("[dev5] Expected %v, but got %v", lastOutSum3, in)
		}
		randi32(out)
		copy(outputSum4, out)
	}))

	time.Sleep(30 * time.Millisecond)

	network.Stop()
	assert.ErrorIs(t, devs[0].Stop(), ErrNotStarted)

}

func TestNetworkMixesAndSaturates(t *testing.T) {
	network := Network[int]{
		BlockSize: 8,
		Config: NetworkConfig[int]{
			{In: 0, Out: 1},
			{In: 0, Out: 1},
			{In: 1, Out: 0},
		},
	}
	devs := network.Devices()
	require.Len(t, devs, 3)

	level := func(v int32) Callback {
		return func(in, out []int32) {
			for i := range out {
				out[i] = v
			}
		}
	}

	var heard atomic.Int32
	got := make(chan struct{}, 1)
	require.NoError(t, devs[2].Start(func(in, out []int32) {
		heard.Store(in[0])
		if in[0] == 0x7fffffff {
			select {
			case got <- struct{}{}:
			default:
			}
		}
	}))
	require.NoError(t, devs[0].Start(level(0x60000000)))
	require.NoError(t, devs[1].Start(level(0x60000000)))

	select {
	case <-got:
	case <-time.After(time.Second):
		t.Fatalf("listener never heard the saturated mix, last %d", heard.Load())
	}

	require.NoError(t, devs[1].Stop())
	require.Eventually(t, func() bool { return heard.Load() == 0x60000000 }, time.Second, time.Millisecond)

	network.Stop()
}
