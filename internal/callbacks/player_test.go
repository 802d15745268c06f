package callbacks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Soundlink/pkg/fixed"
)

func TestPlayerPlaysOnce(t *testing.T) {
	p := NewPlayer()
	track := &Track{Samples: []int32{1, 2, 3, 4, 5}, Tag: "hello"}
	require.True(t, p.Load(track))
	assert.False(t, p.Load(&Track{}), "second track while busy")

	out := make([]int32, 3)
	p.Update(out)
	assert.Equal(t, []int32{1, 2, 3}, out)
	assert.Len(t, p.Done(), 0)

	p.Update(out)
	assert.Equal(t, []int32{4, 5, 0}, out)

	select {
	case got := <-p.Done():
		assert.Same(t, track, got)
		assert.Equal(t, "hello", got.Tag)
	default:
		t.Fatal("track completion not reported")
	}

	p.Update(out)
	assert.Equal(t, []int32{0, 0, 0}, out)
}

func TestPlayerExactBlock(t *testing.T) {
	p := NewPlayer()
	require.True(t, p.Load(&Track{Samples: []int32{7, 7}}))

	out := []int32{9, 9}
	p.Update(out)
	assert.Equal(t, []int32{7, 7}, out)
	assert.Len(t, p.Done(), 1)
}

func TestPlayerGain(t *testing.T) {
	p := NewPlayer()
	p.SetGain(fixed.FromFloat(0.5))

	require.True(t, p.Load(&Track{Samples: []int32{1000, -1000, 0x7fffffff}}))
	out := make([]int32, 3)
	p.Update(out)
	assert.Equal(t, []int32{500, -500, 0x3fffffff}, out)
}

func TestPlayerGainIsLimited(t *testing.T) {
	p := NewPlayer()
	out := make([]int32, 2)

	p.SetGain(fixed.FromFloat(1.5))
	require.True(t, p.Load(&Track{Samples: []int32{1000, -1000}}))
	p.Update(out)
	assert.Equal(t, []int32{1000, -1000}, out)

	p.SetGain(fixed.FromFloat(-1))
	require.True(t, p.Load(&Track{Samples: []int32{1000, -1000}}))
	p.Update(out)
	assert.Equal(t, []int32{0, 0}, out)
}

func TestPlayerReset(t *testing.T) {
	p := NewPlayer()
	require.True(t, p.Load(&Track{Samples: make([]int32, 100)}))
	p.Update(make([]int32, 10))
	p.Reset()

	assert.Len(t, p.Done(), 0)
	assert.True(t, p.Load(&Track{Samples: []int32{1}}))
}

func TestPlayerUpdateDoesNotAllocate(t *testing.T) {
	p := NewPlayer()
	out := make([]int32, 64)
	track := &Track{Samples: make([]int32, 1<<20)}
	require.True(t, p.Load(track))

	allocs := testing.AllocsPerRun(100, func() {
		p.Update(out)
	})
	assert.Zero(t, allocs)
}

func TestRecorder(t *testing.T) {
	var r Recorder
	r.Update([]int32{1, 2})
	r.Update([]int32{3})

	assert.Equal(t, []int32{1, 2, 3}, r.Track())
	assert.Equal(t, 3, r.Len())
	r.Reset()
	assert.Zero(t, r.Len())
}
