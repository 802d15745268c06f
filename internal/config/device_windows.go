//go:build windows

package config

import (
	"Soundlink/pkg/device"
	"Soundlink/pkg/device/asio"
)

func asioDevice(d DeviceConfig) (device.Device, error) {
	return &asio.Mono{
		DeviceName: d.Name,
		SampleRate: d.SampleRate,
		InChannel:  d.InChannel,
		OutChannel: d.OutChannel,
	}, nil
}
