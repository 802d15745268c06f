package codec

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestCRC16KnownValue(t *testing.T) {
	var crc CRC16Checker
	assert.Equal(t, uint16(0x29B1), crc.Checksum([]byte("123456789")))
	assert.Equal(t, uint16(0xFFFF), crc.Checksum(nil))
}

func TestEncodeLayout(t *testing.T) {
	var c Codec
	symbols, err := c.Encode([]byte{0x41, 0x42})
	require.NoError(t, err)

	require.Len(t, symbols, FrameSymbols(2))
	assert.Equal(t, []Symbol{0x0, 0x2, 0x4, 0x1, 0x4, 0x2}, symbols[:6])

	var crc CRC16Checker
	sum := crc.Checksum([]byte{0x02, 0x41, 0x42})
	assert.Equal(t, Symbol(sum>>12), symbols[6])
	assert.Equal(t, Symbol(sum&0x0f), symbols[9])
}

func TestRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		limit := rapid.IntRange(1, MaxLength).Draw(t, "limit")
		c := Codec{MaxPayloadLength: limit}
		in := rapid.SliceOfN(rapid.Byte(), 1, limit).Draw(t, "in")

		symbols, err := c.Encode(in)
		require.NoError(t, err)

		out, err := c.Decode(symbols)
		require.NoError(t, err)
		assert.Equal(t, in, out)
	})
}

func TestEncodeTooLarge(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		limit := rapid.IntRange(1, 64).Draw(t, "limit")
		c := Codec{MaxPayloadLength: limit}
		in := rapid.SliceOfN(rapid.Byte(), limit+1, limit+64).Draw(t, "in")

		symbols, err := c.Encode(in)
		assert.ErrorIs(t, err, ErrPayloadTooLarge)
		assert.Nil(t, symbols)
	})
}

func TestSingleCorruptedSymbolFails(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		var c Codec
		in := rapid.SliceOfN(rapid.Byte(), 1, 64).Draw(t, "in")

		symbols, err := c.Encode(in)
		require.NoError(t, err)

		i := rapid.IntRange(0, len(symbols)-1).Draw(t, "index")
		delta := rapid.IntRange(1, Alphabet-1).Draw(t, "delta")
		symbols[i] = Symbol((int(symbols[i]) + delta) % Alphabet)

		out, err := c.Decode(symbols)
		assert.Nil(t, out)
		require.Error(t, err)
		assert.True(t, errorIsAny(err, ErrChecksumMismatch, ErrMalformedFrame), "unexpected error %v", err)
	})
}

func TestDecodeMalformed(t *testing.T) {
	var c Codec
	valid, err := c.Encode([]byte("hi"))
	require.NoError(t, err)

	tests := []struct {
		name    string
		symbols []Symbol
	}{
		{"Empty", nil},
		{"HeaderOnly", valid[:HeaderSymbols]},
		{"Truncated", valid[:len(valid)-1]},
		{"Extended", append(append([]Symbol(nil), valid...), 0)},
		{"ZeroLength", []Symbol{0, 0, 0xf, 0xf, 0xf, 0xf}},
		{"OutOfAlphabet", append([]Symbol{valid[0], valid[1], 16}, valid[3:]...)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := c.Decode(tt.symbols)
			assert.Nil(t, out)
			assert.ErrorIs(t, err, ErrMalformedFrame)
		})
	}
}

func TestDecodeRespectsLimit(t *testing.T) {
	symbols, err := Codec{}.Encode(make([]byte, 40))
	require.NoError(t, err)

	_, err = Codec{MaxPayloadLength: 32}.Decode(symbols)
	assert.ErrorIs(t, err, ErrMalformedFrame)
}

func TestEncodeEmpty(t *testing.T) {
	_, err := Codec{}.Encode(nil)
	assert.ErrorIs(t, err, ErrEmptyPayload)
}

func TestPayload(t *testing.T) {
	src := []byte{1, 2, 3}
	p, err := NewPayload(src, 3)
	require.NoError(t, err)

	src[0] = 9
	b := p.Bytes()
	assert.Equal(t, []byte{1, 2, 3}, b)

	b[1] = 9
	assert.Equal(t, []byte{1, 2, 3}, p.Bytes())
	assert.Equal(t, 3, p.Len())
	assert.Equal(t, "010203", p.String())

	_, err = NewPayload([]byte{1, 2, 3, 4}, 3)
	assert.ErrorIs(t, err, ErrPayloadTooLarge)

	_, err = NewPayload(nil, 3)
	assert.ErrorIs(t, err, ErrEmptyPayload)
}

func errorIsAny(err error, targets ...error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
