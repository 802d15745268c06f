//go:build windows

// Package asio drives one input and one output channel of an ASIO driver.
package asio

import (
	"sync"

	"github.com/xsjk/go-asio"

	"Soundlink/pkg/device"
)

type Mono struct {
	DeviceName string
	SampleRate float64
	InChannel  int
	OutChannel int

	mu      sync.Mutex
	running bool
	device  asio.Device
}

func (a *Mono) Start(callback device.Callback) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.running {
		return device.ErrAlreadyStarted
	}
	a.device.Load(a.DeviceName)
	a.device.SetSampleRate(a.SampleRate)
	a.device.Open()
	a.device.Start(func(in, out [][]int32) {
		callback(in[a.InChannel], out[a.OutChannel])
	})
	a.running = true
	return nil
}

func (a *Mono) Stop() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.running {
		return device.ErrNotStarted
	}
	a.device.Stop()
	a.device.Close()
	a.device.Unload()
	a.running = false
	return nil
}
