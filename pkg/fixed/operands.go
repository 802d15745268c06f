package fixed

// Gains on the int32 sample path.
// 32 = 1 + 15 + D
type T int32

const (
	D     = 16
	Denom = 1 << D

	Zero = T(0)
	One  = T(Denom)
)

// Clamp limits f to [lo, hi].
func (f T) Clamp(lo, hi T) T {
	return max(lo, min(f, hi))
}

// Scale multiplies a full-scale int32 sample by f, saturating at the int32 range.
func (f T) Scale(sample int32) int32 {
	v := (int64(sample) * f.Int64()) >> D
	if v > 0x7fffffff {
		return 0x7fffffff
	}
	if v < -0x80000000 {
		return -0x80000000
	}
	return int32(v)
}

func (f T) Int64() int64 {
	return int64(f)
}

func FromFloat(f float64) T {
	return T(int32(f * Denom))
}
