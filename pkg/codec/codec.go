// Package codec turns bounded payloads into checksummed symbol frames and back.
//
// A frame is the length byte, the payload and a big-endian CRC-16 over both.
// Every byte is carried by two 16-ary symbols, high nibble first.
package codec

import (
	"errors"
	"fmt"
)

// Symbol is one tone of the 16-ary alphabet.
type Symbol uint8

const (
	// Alphabet is the number of distinct symbols.
	Alphabet = 16

	// MaxLength is the largest payload a one-byte length header can describe.
	MaxLength = 255

	symbolsPerByte = 2
	headerBytes    = 1
	crcBytes       = 2
)

var (
	ErrPayloadTooLarge  = errors.New("payload too large")
	ErrEmptyPayload     = errors.New("payload is empty")
	ErrChecksumMismatch = errors.New("checksum mismatch")
	ErrMalformedFrame   = errors.New("malformed frame")
)

// HeaderSymbols is the number of leading symbols that carry the payload length.
const HeaderSymbols = headerBytes * symbolsPerByte

// FrameSymbols returns the number of symbols in a frame carrying n payload bytes.
func FrameSymbols(n int) int {
	return (headerBytes + n + crcBytes) * symbolsPerByte
}

// PayloadLength reads the payload length from the two header symbols.
func PayloadLength(hi, lo Symbol) int {
	return int(hi)<<4 | int(lo)
}

// Codec encodes and decodes frames. A zero MaxPayloadLength means MaxLength.
type Codec struct {
	MaxPayloadLength int
}

func (c Codec) limit() int {
	if c.MaxPayloadLength <= 0 || c.MaxPayloadLength > MaxLength {
		return MaxLength
	}
	return c.MaxPayloadLength
}

// Limit returns the effective maximum payload length.
func (c Codec) Limit() int {
	return c.limit()
}

func (c Codec) Encode(data []byte) ([]Symbol, error) {
	if len(data) == 0 {
		return nil, ErrEmptyPayload
	}
	if len(data) > c.limit() {
		return nil, fmt.Errorf("%w: %d bytes, limit %d", ErrPayloadTooLarge, len(data), c.limit())
	}

	symbols := make([]Symbol, 0, FrameSymbols(len(data)))
	put := func(b byte) {
		symbols = append(symbols, Symbol(b>>4), Symbol(b&0x0f))
	}

	var crc CRC16Checker
	crc.Reset()

	header := byte(len(data))
	crc.Update(header)
	put(header)

	for _, b := range data {
		crc.Update(b)
		put(b)
	}

	sum := crc.Get()
	put(byte(sum >> 8))
	put(byte(sum))

	return symbols, nil
}

// Decode verifies a complete frame and returns a fresh copy of its payload.
// It never returns a partial payload.
func (c Codec) Decode(symbols []Symbol) ([]byte, error) {
	if len(symbols) < HeaderSymbols {
		return nil, fmt.Errorf("%w: %d symbols", ErrMalformedFrame, len(symbols))
	}
	for i, s := range symbols {
		if s >= Alphabet {
			return nil, fmt.Errorf("%w: symbol %d out of range at %d", ErrMalformedFrame, s, i)
		}
	}

	n := PayloadLength(symbols[0], symbols[1])
	if n == 0 || n > c.limit() {
		return nil, fmt.Errorf("%w: header length %d", ErrMalformedFrame, n)
	}
	if len(symbols) != FrameSymbols(n) {
		return nil, fmt.Errorf("%w: %d symbols for %d bytes", ErrMalformedFrame, len(symbols), n)
	}

	raw := make([]byte, len(symbols)/symbolsPerByte)
	for i := range raw {
		raw[i] = byte(symbols[2*i])<<4 | byte(symbols[2*i+1])
	}

	var crc CRC16Checker
	body := raw[:headerBytes+n]
	want := uint16(raw[len(raw)-2])<<8 | uint16(raw[len(raw)-1])
	if got := crc.Checksum(body); got != want {
		return nil, fmt.Errorf("%w: got %04x, want %04x", ErrChecksumMismatch, got, want)
	}

	return body[headerBytes:], nil
}
