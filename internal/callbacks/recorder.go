package callbacks

import "sync"

// Recorder keeps everything it hears. It allocates, so it is meant for
// tests and offline capture, not the engine's audio path.
type Recorder struct {
	mu    sync.Mutex
	track []int32
}

func (r *Recorder) Update(in []int32) {
	r.mu.Lock()
	r.track = append(r.track, in...)
	r.mu.Unlock()
}

// Track returns a copy of what has been recorded.
func (r *Recorder) Track() []int32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int32(nil), r.track...)
}

func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.track)
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	r.track = r.track[:0]
	r.mu.Unlock()
}
