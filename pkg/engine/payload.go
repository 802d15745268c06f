package engine

import (
	"fmt"
	"math"
	"time"

	"Soundlink/pkg/fixed"
	"Soundlink/pkg/notify"
)

// MaxPayloadLength is the channel limit, lowered by the license if it says so.
func (e *Engine) MaxPayloadLength() int {
	limit := e.scheme.MaxPayloadLength()
	if claims := e.gate.Claims(); claims != nil && claims.MaxPayloadLength > 0 {
		limit = min(limit, claims.MaxPayloadLength)
	}
	return limit
}

// Duration is the air time of an n-byte payload.
func (e *Engine) Duration(n int) time.Duration {
	return e.scheme.Duration(n)
}

func (e *Engine) IsValidPayload(b []byte) bool {
	return len(b) > 0 && len(b) <= e.MaxPayloadLength()
}

// RandomPayload returns n random bytes, or a random length up to the limit
// when n is 0. n is clamped to the limit.
func (e *Engine) RandomPayload(n int) []byte {
	limit := e.MaxPayloadLength()

	e.rngMu.Lock()
	defer e.rngMu.Unlock()
	if n <= 0 {
		n = 1 + e.rng.Intn(limit)
	}
	b := make([]byte, min(n, limit))
	for i := range b {
		b[i] = byte(e.rng.Uint32())
	}
	return b
}

func (e *Engine) SetRandomSeed(seed uint64) {
	e.rngMu.Lock()
	e.rng.Seed(seed)
	e.rngMu.Unlock()
}

// SetVolume sets the output level in [0, 1]. It applies from the next block.
func (e *Engine) SetVolume(v float64) error {
	if math.IsNaN(v) || v < 0 || v > 1 {
		return fmt.Errorf("%w: %v", ErrInvalidVolume, v)
	}
	e.volume.Store(math.Float64bits(v))
	e.player.SetGain(fixed.FromFloat(v))
	e.dispatcher.Post(notify.Event{Kind: notify.VolumeChanged, Level: v})
	return nil
}

func (e *Engine) Volume() float64 {
	return math.Float64frombits(e.volume.Load())
}
