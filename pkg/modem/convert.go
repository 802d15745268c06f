package modem

const fullScale = 0x7fffffff

// Convert []int32 to []float64
func Int32ToFloat64(input []int32) []float64 {
	output := make([]float64, len(input))
	for i, v := range input {
		output[i] = float64(v) / fullScale
	}
	return output
}

// Convert []float64 to []int32, clipping to [-1, 1]
func Float64ToInt32(input []float64) []int32 {
	output := make([]int32, len(input))
	for i, v := range input {
		output[i] = int32(max(-1, min(v, 1)) * fullScale)
	}
	return output
}
