package engine

import (
	"errors"

	"Soundlink/pkg/codec"
	"Soundlink/pkg/device"
	"Soundlink/pkg/license"
	"Soundlink/pkg/state"
)

var (
	ErrNotLicensed       = license.ErrNotLicensed
	ErrLicenseRevoked    = license.ErrLicenseRevoked
	ErrInvalidState      = state.ErrInvalidState
	ErrPayloadTooLarge   = codec.ErrPayloadTooLarge
	ErrEmptyPayload      = codec.ErrEmptyPayload
	ErrChecksumMismatch  = codec.ErrChecksumMismatch
	ErrMalformedFrame    = codec.ErrMalformedFrame
	ErrDeviceUnavailable = device.ErrDeviceUnavailable

	ErrClosed        = errors.New("engine closed")
	ErrInvalidVolume = errors.New("volume out of range")
)
