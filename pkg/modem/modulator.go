package modem

import (
	"Soundlink/pkg/codec"
)

// Modulator renders symbol frames to full-scale int32 samples.
type Modulator struct {
	scheme   Scheme
	preamble []int32
	tones    [codec.Alphabet][]int32
}

func NewModulator(s Scheme) (*Modulator, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	m := &Modulator{
		scheme:   s,
		preamble: Float64ToInt32(s.Preamble()),
	}
	for k := range m.tones {
		m.tones[k] = Float64ToInt32(s.Tone(k))
	}
	return m, nil
}

func (m *Modulator) Scheme() Scheme {
	return m.scheme
}

// Modulate returns preamble, one tone per symbol and the trailing guard.
// Symbols are taken modulo the alphabet.
func (m *Modulator) Modulate(symbols []codec.Symbol) []int32 {
	size := len(m.preamble) + len(symbols)*m.scheme.SymbolSamples + m.scheme.GuardSamples
	modulatedData := make([]int32, 0, size)

	modulatedData = append(modulatedData, m.preamble...)
	for _, s := range symbols {
		modulatedData = append(modulatedData, m.tones[s%codec.Alphabet]...)
	}

	// the guard is the zeroed tail of the buffer
	return modulatedData[:size]
}
