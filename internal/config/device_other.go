//go:build !windows

package config

import (
	"fmt"

	"Soundlink/pkg/device"
)

func asioDevice(DeviceConfig) (device.Device, error) {
	return nil, fmt.Errorf("%w: asio is only available on windows", device.ErrDeviceUnavailable)
}
