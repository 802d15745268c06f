package device

import "errors"

// Callback is invoked on the audio context once per block. Both slices have
// the same length and are only valid during the call.
type Callback func(in, out []int32)

type Device interface {
	Start(callback Callback) error
	Stop() error
}

// FaultReporter is implemented by devices that can fail while running.
type FaultReporter interface {
	SetFaultHandler(func(error))
}

var (
	ErrDeviceUnavailable = errors.New("audio device unavailable")
	ErrAlreadyStarted    = errors.New("device already started")
	ErrNotStarted        = errors.New("device not started")
)

const BufferSize = 512
