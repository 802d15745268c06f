package modem

import (
	"errors"
	"fmt"
	"math"
	"time"

	"Soundlink/pkg/codec"
)

// Scheme describes the 16-ary FSK modulation shared by both ends of a link.
//
// Tone k sits on bin BaseTone+k of a SymbolSamples-point DFT, so every tone
// completes a whole number of cycles per symbol and the tones are orthogonal.
type Scheme struct {
	SampleRate    float64
	SymbolSamples int // samples per symbol
	BaseTone      int // DFT bin of symbol 0

	PreambleMinFreq float64
	PreambleMaxFreq float64
	PreambleLength  int // samples, up chirp then down chirp

	GuardSamples     int           // trailing silence after each frame
	MaxFrameDuration time.Duration // symbol budget of one frame, preamble excluded

	Amplitude float64 // peak level of preamble and tones, (0, 1]
	Threshold float64 // normalized preamble correlation needed for an onset, (0, 1)
}

var ErrInvalidScheme = errors.New("invalid modulation scheme")

// DefaultScheme is 100 symbols/s between 1.8 and 3.3 kHz at 48 kHz,
// carrying up to 32 bytes per frame.
func DefaultScheme() Scheme {
	return Scheme{
		SampleRate:       48000,
		SymbolSamples:    480,
		BaseTone:         18,
		PreambleMinFreq:  1000,
		PreambleMaxFreq:  4000,
		PreambleLength:   1024,
		GuardSamples:     480,
		MaxFrameDuration: 700 * time.Millisecond,
		Amplitude:        0.5,
		Threshold:        0.5,
	}
}

func (s Scheme) Validate() error {
	nyquist := s.SampleRate / 2
	switch {
	case s.SampleRate <= 0:
		return fmt.Errorf("%w: sample rate %v", ErrInvalidScheme, s.SampleRate)
	case s.SymbolSamples <= 0:
		return fmt.Errorf("%w: %d samples per symbol", ErrInvalidScheme, s.SymbolSamples)
	case s.BaseTone < 1:
		return fmt.Errorf("%w: base tone %d", ErrInvalidScheme, s.BaseTone)
	case s.ToneFreq(codec.Alphabet-1) >= nyquist:
		return fmt.Errorf("%w: top tone %.0f Hz above Nyquist", ErrInvalidScheme, s.ToneFreq(codec.Alphabet-1))
	case s.PreambleLength < 16:
		return fmt.Errorf("%w: preamble of %d samples", ErrInvalidScheme, s.PreambleLength)
	case s.PreambleMinFreq <= 0 || s.PreambleMaxFreq <= s.PreambleMinFreq || s.PreambleMaxFreq >= nyquist:
		return fmt.Errorf("%w: preamble band %.0f-%.0f Hz", ErrInvalidScheme, s.PreambleMinFreq, s.PreambleMaxFreq)
	case s.GuardSamples < 0:
		return fmt.Errorf("%w: guard of %d samples", ErrInvalidScheme, s.GuardSamples)
	case s.Amplitude <= 0 || s.Amplitude > 1:
		return fmt.Errorf("%w: amplitude %v", ErrInvalidScheme, s.Amplitude)
	case s.Threshold <= 0 || s.Threshold >= 1:
		return fmt.Errorf("%w: threshold %v", ErrInvalidScheme, s.Threshold)
	case s.MaxPayloadLength() < 1:
		return fmt.Errorf("%w: frame duration %v leaves no room for payload", ErrInvalidScheme, s.MaxFrameDuration)
	}
	return nil
}

// ToneSpacing is the distance between adjacent tones in Hz.
func (s Scheme) ToneSpacing() float64 {
	return s.SampleRate / float64(s.SymbolSamples)
}

func (s Scheme) ToneFreq(symbol int) float64 {
	return float64(s.BaseTone+symbol) * s.ToneSpacing()
}

// SymbolRate is the number of symbols per second.
func (s Scheme) SymbolRate() float64 {
	return s.ToneSpacing()
}

// MaxPayloadLength is the largest payload whose frame fits in MaxFrameDuration.
func (s Scheme) MaxPayloadLength() int {
	symbols := int(math.Floor(s.SymbolRate()*s.MaxFrameDuration.Seconds() + 1e-9))
	n := symbols/2 - (codec.FrameSymbols(0) / 2)
	return max(0, min(n, codec.MaxLength))
}

// Codec returns a codec bounded by the scheme's symbol budget.
func (s Scheme) Codec() codec.Codec {
	return codec.Codec{MaxPayloadLength: s.MaxPayloadLength()}
}

// Samples returns the length of the rendered signal for an n-byte payload.
func (s Scheme) Samples(n int) int {
	return s.PreambleLength + codec.FrameSymbols(n)*s.SymbolSamples + s.GuardSamples
}

// Duration returns the air time of an n-byte payload.
func (s Scheme) Duration(n int) time.Duration {
	return time.Duration(float64(s.Samples(n)) / s.SampleRate * float64(time.Second))
}

func (s Scheme) Info() string {
	return fmt.Sprintf("16-FSK %.0f Hz, %.1f sym/s, tones %.0f-%.0f Hz, preamble %.0f-%.0f Hz/%d, max payload %d B",
		s.SampleRate, s.SymbolRate(), s.ToneFreq(0), s.ToneFreq(codec.Alphabet-1),
		s.PreambleMinFreq, s.PreambleMaxFreq, s.PreambleLength, s.MaxPayloadLength())
}
