package modem

import (
	"fmt"
	"io"
	"math"

	"github.com/charmbracelet/log"

	"Soundlink/pkg/codec"
)

// Sink receives demodulator events. Calls happen on the goroutine that
// calls Write. The symbols slice passed to Frame is reused afterwards.
type Sink interface {
	Onset()
	Frame(symbols []codec.Symbol)
	Abort(err error)
}

type DemodulateStateEnum int

const (
	preambleDetection DemodulateStateEnum = iota
	dataExtraction
)

// windows quieter than about -60 dBFS are never correlated
const minMeanSquare = 1e-6

// Demodulator is a streaming receiver. After construction Write does not
// allocate except to report a malformed header.
type Demodulator struct {
	scheme Scheme
	sink   Sink
	logger *log.Logger
	limit  int

	preamble []float64 // unit norm
	coeffs   [codec.Alphabet]float64

	demodulateState DemodulateStateEnum

	// preamble detection
	window  []float64 // ring of the last len(preamble) samples, oldest at pos
	pos     int
	filled  int
	energy  float64
	best    float64
	hold    int // samples since the best peak, -1 without a candidate
	holdOff int
	replay  []float64 // samples after the best peak
	scratch []float64

	// data extraction
	symbolBuf []float64
	tick      int
	symbols   []codec.Symbol
	expected  int
}

func NewDemodulator(s Scheme, sink Sink, logger *log.Logger) (*Demodulator, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}

	limit := s.MaxPayloadLength()

	// holdOff must stay below two symbols so a replay is always consumed by
	// the frame it starts
	holdOff := s.SymbolSamples

	d := &Demodulator{
		scheme:    s,
		sink:      sink,
		logger:    logger,
		limit:     limit,
		preamble:  normalize(s.Preamble()),
		window:    make([]float64, s.PreambleLength),
		holdOff:   holdOff,
		replay:    make([]float64, 0, holdOff),
		scratch:   make([]float64, holdOff),
		symbolBuf: make([]float64, s.SymbolSamples),
		symbols:   make([]codec.Symbol, 0, codec.FrameSymbols(limit)),
	}
	for k := range d.coeffs {
		d.coeffs[k] = goertzelCoeff(s.BaseTone+k, s.SymbolSamples)
	}
	d.Reset()
	return d, nil
}

// Reset drops any partial preamble or frame.
func (d *Demodulator) Reset() {
	d.demodulateState = preambleDetection
	d.resetDetection()
	d.tick = 0
	d.symbols = d.symbols[:0]
	d.expected = 0
}

func (d *Demodulator) resetDetection() {
	clear(d.window)
	d.pos = 0
	d.filled = 0
	d.energy = 0
	d.best = 0
	d.hold = -1
	d.replay = d.replay[:0]
}

func (d *Demodulator) Write(samples []int32) {
	for _, v := range samples {
		d.update(float64(v) / fullScale)
	}
}

func (d *Demodulator) update(x float64) {
	switch d.demodulateState {
	case preambleDetection:
		d.detectPreamble(x)
	case dataExtraction:
		d.extractData(x)
	}
}

func (d *Demodulator) detectPreamble(x float64) {
	old := d.window[d.pos]
	d.window[d.pos] = x
	d.pos++

	if d.filled < len(d.window) {
		d.filled++
		d.energy += x * x
	} else {
		d.energy += x*x - old*old
	}

	if d.pos == len(d.window) {
		d.pos = 0
		// resynchronize the running sum once per window
		d.energy = 0
		for _, v := range d.window {
			d.energy += v * v
		}
	}

	if d.hold >= 0 {
		d.replay = append(d.replay, x)
		d.hold++
	}

	if d.filled == len(d.window) {
		if power := d.correlate(); power > d.scheme.Threshold && power > d.best {
			d.best = power
			d.hold = 0
			d.replay = d.replay[:0]
		}
	}

	if d.hold >= d.holdOff {
		d.confirm()
	}
}

// correlate returns the normalized correlation of the window with the preamble.
func (d *Demodulator) correlate() float64 {
	if d.energy < minMeanSquare*float64(len(d.window)) {
		return 0
	}
	n := len(d.window) - d.pos
	var dot float64
	for i, v := range d.window[d.pos:] {
		dot += v * d.preamble[i]
	}
	for i, v := range d.window[:d.pos] {
		dot += v * d.preamble[n+i]
	}
	return dot / math.Sqrt(d.energy)
}

func (d *Demodulator) confirm() {
	d.logger.Debug("preamble detected", "correlation", fmt.Sprintf("%.3f", d.best))

	replay := d.scratch[:len(d.replay)]
	copy(replay, d.replay)

	d.resetDetection()
	d.demodulateState = dataExtraction
	d.tick = 0
	d.symbols = d.symbols[:0]
	d.expected = 0

	d.sink.Onset()

	for _, v := range replay {
		d.update(v)
	}
}

func (d *Demodulator) extractData(x float64) {
	d.symbolBuf[d.tick] = x
	d.tick++
	if d.tick < len(d.symbolBuf) {
		return
	}
	d.tick = 0

	d.symbols = append(d.symbols, d.decide())

	if len(d.symbols) == codec.HeaderSymbols {
		n := codec.PayloadLength(d.symbols[0], d.symbols[1])
		if n == 0 || n > d.limit {
			d.demodulateState = preambleDetection
			d.logger.Debug("invalid header", "length", n)
			d.sink.Abort(fmt.Errorf("%w: header length %d", codec.ErrMalformedFrame, n))
			return
		}
		d.expected = codec.FrameSymbols(n)
	}

	if len(d.symbols) == d.expected {
		d.demodulateState = preambleDetection
		d.sink.Frame(d.symbols)
	}
}

// decide picks the tone with the most energy in the current symbol.
func (d *Demodulator) decide() codec.Symbol {
	best, bestEnergy := 0, -1.0
	for k, coeff := range d.coeffs {
		if e := goertzel(d.symbolBuf, coeff); e > bestEnergy {
			best, bestEnergy = k, e
		}
	}
	return codec.Symbol(best)
}
