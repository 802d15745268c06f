package device

import (
	"sync/atomic"
	"time"

	"golang.org/x/exp/rand"
)

func cleari32(a []int32) {
	clear(a)
}

func randi32(a []int32) {
	for i := range a {
		a[i] = rand.Int31()
	}
}

// sumi32 stores a+b into c, saturating.
func sumi32(a, b, c []int32) {
	for i := range a {
		sum := int64(a[i]) + int64(b[i])
		if sum > 0x7fffffff {
			sum = 0x7fffffff
		} else if sum < -0x80000000 {
			sum = -0x80000000
		}
		c[i] = int32(sum)
	}
}

func alloci32(n int) []int32 {
	return make([]int32, n)
}

// blockPeriod is the wall time of one block, 0 when sampleRate is 0.
func blockPeriod(sampleRate float64, blockSize int) time.Duration {
	if sampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(blockSize) / sampleRate * float64(time.Second))
}

// faultHandler is embedded by the fake devices.
type faultHandler struct {
	onFault atomic.Pointer[func(error)]
}

func (f *faultHandler) SetFaultHandler(fn func(error)) {
	f.onFault.Store(&fn)
}

// Fault reports err as if the device had failed.
func (f *faultHandler) Fault(err error) {
	if fn := f.onFault.Load(); fn != nil && *fn != nil {
		(*fn)(err)
	}
}
