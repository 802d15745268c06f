// Package portaudio plays and records through the host's default audio
// devices.
package portaudio

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gordonklaus/portaudio"

	"Soundlink/pkg/device"
)

// Mono is a one-channel full-duplex stream on the default devices.
// PortAudio reports nothing when a device disappears mid-stream, so the
// stream is considered lost once its callback stops for StallTimeout.
type Mono struct {
	SampleRate   float64
	BlockSize    int           // 0 means device.BufferSize
	StallTimeout time.Duration // 0 means one second

	mu       sync.Mutex
	stream   *portaudio.Stream
	watchdog *device.Watchdog
	onFault  atomic.Pointer[func(error)]
}

func (m *Mono) SetFaultHandler(fn func(error)) {
	m.onFault.Store(&fn)
}

func (m *Mono) fault(err error) {
	if fn := m.onFault.Load(); fn != nil && *fn != nil {
		(*fn)(err)
	}
}

func (m *Mono) Start(callback device.Callback) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stream != nil {
		return device.ErrAlreadyStarted
	}

	size := m.BlockSize
	if size == 0 {
		size = device.BufferSize
	}

	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("%w: %v", device.ErrDeviceUnavailable, err)
	}
	timeout := m.StallTimeout
	if timeout == 0 {
		timeout = time.Second
	}
	watchdog := device.StartWatchdog(timeout, m.fault)

	stream, err := portaudio.OpenDefaultStream(1, 1, m.SampleRate, size, func(in, out []int32) {
		watchdog.Tick()
		callback(in, out)
	})
	if err != nil {
		watchdog.Stop()
		portaudio.Terminate()
		return fmt.Errorf("%w: %v", device.ErrDeviceUnavailable, err)
	}
	if err := stream.Start(); err != nil {
		watchdog.Stop()
		stream.Close()
		portaudio.Terminate()
		return fmt.Errorf("%w: %v", device.ErrDeviceUnavailable, err)
	}
	m.stream = stream
	m.watchdog = watchdog
	return nil
}

func (m *Mono) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stream == nil {
		return device.ErrNotStarted
	}
	stream := m.stream
	m.stream = nil
	m.watchdog.Stop()
	m.watchdog = nil

	err := stream.Stop()
	if cerr := stream.Close(); err == nil {
		err = cerr
	}
	if terr := portaudio.Terminate(); err == nil {
		err = terr
	}
	return err
}

type Info struct {
	Name              string
	HostAPI           string
	MaxInputChannels  int
	MaxOutputChannels int
	SampleRate        float64
	DefaultInput      bool
	DefaultOutput     bool
}

// Devices lists the devices PortAudio can open.
func Devices() ([]Info, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("%w: %v", device.ErrDeviceUnavailable, err)
	}
	defer portaudio.Terminate()

	devs, err := portaudio.Devices()
	if err != nil {
		return nil, err
	}
	in, _ := portaudio.DefaultInputDevice()
	out, _ := portaudio.DefaultOutputDevice()

	infos := make([]Info, 0, len(devs))
	for _, d := range devs {
		info := Info{
			Name:              d.Name,
			MaxInputChannels:  d.MaxInputChannels,
			MaxOutputChannels: d.MaxOutputChannels,
			SampleRate:        d.DefaultSampleRate,
			DefaultInput:      in != nil && in.Index == d.Index,
			DefaultOutput:     out != nil && out.Index == d.Index,
		}
		if d.HostApi != nil {
			info.HostAPI = d.HostApi.Name
		}
		infos = append(infos, info)
	}
	return infos, nil
}
