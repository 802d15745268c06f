package fixed

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromFloat(t *testing.T) {
	assert.Equal(t, One, FromFloat(1))
	assert.Equal(t, T(Denom/4), FromFloat(0.25))
	assert.Equal(t, T(-Denom/2), FromFloat(-0.5))
	assert.Equal(t, Zero, FromFloat(0))
}

func TestClamp(t *testing.T) {
	assert.Equal(t, One, FromFloat(1.7).Clamp(Zero, One))
	assert.Equal(t, Zero, FromFloat(-0.2).Clamp(Zero, One))
	assert.Equal(t, FromFloat(0.5), FromFloat(0.5).Clamp(Zero, One))
}

func TestScale(t *testing.T) {
	tests := []struct {
		name     string
		gain     T
		sample   int32
		expected int32
	}{
		{"Unity", One, 123456, 123456},
		{"Half", FromFloat(0.5), 1000, 500},
		{"Mute", Zero, 0x7fffffff, 0},
		{"SaturatePositive", FromFloat(2), 0x7fffffff, 0x7fffffff},
		{"SaturateNegative", FromFloat(2), -0x80000000, -0x80000000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.gain.Scale(tt.sample))
		})
	}
}
