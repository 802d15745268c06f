package modem

import "math"

func chirp(out *[]float64, startFreq, endFreq float64, length int, sampleRate float64) {
	c := (endFreq - startFreq) / (float64(length) / sampleRate)
	f0 := startFreq

	for i := 0; i < length; i++ {
		t := float64(i) / sampleRate
		*out = append(*out, math.Sin(2*math.Pi*(c/2*t+f0)*t))
	}
}

// ChirpConfig describes a linear up chirp followed by the mirrored down chirp.
type ChirpConfig struct {
	MinFreq    float64
	MaxFreq    float64
	Length     int
	SampleRate float64
	Amplitude  float64
}

func (p ChirpConfig) New() []float64 {
	preamble := make([]float64, 0, p.Length)

	chirp(&preamble, p.MinFreq, p.MaxFreq, p.Length/2, p.SampleRate)
	chirp(&preamble, p.MaxFreq, p.MinFreq, p.Length-p.Length/2, p.SampleRate)

	amplitude := p.Amplitude
	if amplitude == 0 {
		amplitude = 1
	}
	for i := range preamble {
		preamble[i] *= amplitude
	}
	return preamble
}

// Preamble renders the scheme's preamble at its amplitude.
func (s Scheme) Preamble() []float64 {
	return ChirpConfig{
		MinFreq:    s.PreambleMinFreq,
		MaxFreq:    s.PreambleMaxFreq,
		Length:     s.PreambleLength,
		SampleRate: s.SampleRate,
		Amplitude:  s.Amplitude,
	}.New()
}
