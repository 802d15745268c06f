package device

import "sync/atomic"

// Ring hands fixed-size sample blocks from the audio context to a worker.
// Put never blocks or allocates; when no free block is left the samples
// are dropped and counted.
type Ring struct {
	size    int
	free    chan []int32
	filled  chan []int32
	dropped atomic.Uint64
}

func NewRing(blocks, size int) *Ring {
	r := &Ring{
		size:   size,
		free:   make(chan []int32, blocks),
		filled: make(chan []int32, blocks),
	}
	for i := 0; i < blocks; i++ {
		r.free <- alloci32(size)
	}
	return r
}

// Put copies samples into as many blocks as needed.
func (r *Ring) Put(samples []int32) {
	for len(samples) > 0 {
		select {
		case b := <-r.free:
			n := copy(b[:r.size], samples)
			r.filled <- b[:n]
			samples = samples[n:]
		default:
			r.dropped.Add(uint64(len(samples)))
			return
		}
	}
}

// Filled yields blocks in the order they were put. Each must be released.
func (r *Ring) Filled() <-chan []int32 {
	return r.filled
}

func (r *Ring) Release(b []int32) {
	r.free <- b[:r.size]
}

// Drain releases every filled block.
func (r *Ring) Drain() {
	for {
		select {
		case b := <-r.filled:
			r.Release(b)
		default:
			return
		}
	}
}

// Dropped returns the samples dropped since the last call.
func (r *Ring) Dropped() uint64 {
	return r.dropped.Swap(0)
}
