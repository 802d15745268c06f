package callbacks

import (
	"sync/atomic"

	"Soundlink/pkg/fixed"
)

// Track is a rendered transmission. Tag travels with it to Done.
type Track struct {
	Samples []int32
	Tag     any
}

type playing struct {
	*Track
	idx int
}

// Player streams one Track at a time into the audio output. Update runs on
// the audio context; it does not allocate or block.
type Player struct {
	track atomic.Pointer[playing]
	gain  atomic.Int32
	done  chan *Track
}

func NewPlayer() *Player {
	p := &Player{done: make(chan *Track, 1)}
	p.gain.Store(int32(fixed.One))
	return p
}

// Load starts t. It reports false while another track is playing.
func (p *Player) Load(t *Track) bool {
	return p.track.CompareAndSwap(nil, &playing{Track: t})
}

// Done yields each track once its last sample has been written.
func (p *Player) Done() <-chan *Track {
	return p.done
}

// SetGain sets the output gain, limited to [0, 1].
func (p *Player) SetGain(g fixed.T) {
	p.gain.Store(int32(g.Clamp(fixed.Zero, fixed.One)))
}

func (p *Player) Update(out []int32) {
	cur := p.track.Load()
	if cur == nil {
		clear(out)
		return
	}

	gain := fixed.T(p.gain.Load())
	n := copy(out, cur.Samples[cur.idx:])
	for i := range out[:n] {
		out[i] = gain.Scale(out[i])
	}
	clear(out[n:])
	cur.idx += n

	if cur.idx == len(cur.Samples) {
		if p.track.CompareAndSwap(cur, nil) {
			select {
			case p.done <- cur.Track:
			default:
			}
		}
	}
}

// Reset abandons the current track without reporting it.
func (p *Player) Reset() {
	p.track.Store(nil)
	select {
	case <-p.done:
	default:
	}
}
