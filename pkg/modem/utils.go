package modem

import "math"

// goertzel returns the energy of x at DFT bin k of a len(x)-point transform.
func goertzel(x []float64, coeff float64) float64 {
	var s1, s2 float64
	for _, v := range x {
		s0 := v + coeff*s1 - s2
		s2 = s1
		s1 = s0
	}
	return s1*s1 + s2*s2 - coeff*s1*s2
}

func goertzelCoeff(bin, size int) float64 {
	return 2 * math.Cos(2*math.Pi*float64(bin)/float64(size))
}

func normalize(x []float64) []float64 {
	var energy float64
	for _, v := range x {
		energy += v * v
	}
	out := make([]float64, len(x))
	if energy == 0 {
		return out
	}
	norm := math.Sqrt(energy)
	for i, v := range x {
		out[i] = v / norm
	}
	return out
}
