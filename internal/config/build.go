package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"

	"github.com/charmbracelet/log"
	"github.com/redis/go-redis/v9"

	"Soundlink/pkg/device"
	"Soundlink/pkg/device/portaudio"
	"Soundlink/pkg/engine"
	"Soundlink/pkg/license"
	"Soundlink/pkg/modem"
	"Soundlink/pkg/notify"
)

func isNotExist(err error) bool {
	return errors.Is(err, os.ErrNotExist)
}

// Scheme is the modulation scheme at the device sample rate.
func (c *Config) Scheme() modem.Scheme {
	m := c.Modem
	return modem.Scheme{
		SampleRate:       c.Device.SampleRate,
		SymbolSamples:    m.SymbolSamples,
		BaseTone:         m.BaseTone,
		PreambleMinFreq:  m.PreambleMinFreq,
		PreambleMaxFreq:  m.PreambleMaxFreq,
		PreambleLength:   m.PreambleLength,
		GuardSamples:     m.GuardSamples,
		MaxFrameDuration: m.MaxFrameDuration.Std(),
		Amplitude:        m.Amplitude,
		Threshold:        m.Threshold,
	}
}

func (c *Config) Manager() (*license.Manager, error) {
	l := c.License
	cfg := license.Config{
		SigningMethod: license.SigningMethod(l.SigningMethod),
		PrivateKey:    []byte(l.Secret),
		Issuer:        l.Issuer,
		Audience:      l.Audience,
		TTL:           l.TTL.Std(),
		Leeway:        l.Leeway.Std(),
	}
	if l.PrivateKeyFile != "" {
		key, err := os.ReadFile(l.PrivateKeyFile)
		if err != nil {
			return nil, err
		}
		cfg.PrivateKey = key
	}
	if l.PublicKeyFile != "" {
		key, err := os.ReadFile(l.PublicKeyFile)
		if err != nil {
			return nil, err
		}
		cfg.PublicKey = key
	}
	return license.NewManager(cfg)
}

// Revocations returns the redis store when configured, otherwise an
// in-process list.
func (c *Config) Revocations() license.RevocationStore {
	r := c.License.Redis
	if r.Addr == "" {
		return license.NewMemoryRevocations()
	}
	client := redis.NewClient(&redis.Options{
		Addr:     r.Addr,
		Password: r.Password,
		DB:       r.DB,
	})
	return license.NewRedisRevocations(client, r.Prefix)
}

func (c *Config) Authority(m *license.Manager) license.Authority {
	if c.App.AuthorityURL != "" {
		return &license.HTTPAuthority{URL: c.App.AuthorityURL}
	}
	return &license.LocalAuthority{
		Manager: m,
		Apps: map[string]license.App{
			c.App.Key: {Secret: c.App.Secret, MaxPayloadLength: c.App.MaxPayloadLength},
		},
	}
}

// Device returns the selected backend, unopened.
func (c *Config) Device() (device.Device, error) {
	d := c.Device
	backend := d.Backend
	if backend == "auto" {
		backend = "portaudio"
		if runtime.GOOS == "windows" {
			backend = "asio"
		}
	}
	switch backend {
	case "loopback":
		return &device.Loopback{SampleRate: d.SampleRate, BlockSize: d.BlockSize}, nil
	case "portaudio":
		return &portaudio.Mono{SampleRate: d.SampleRate, BlockSize: d.BlockSize}, nil
	case "asio":
		return asioDevice(d)
	default:
		return nil, fmt.Errorf("%w: unknown backend %q", device.ErrDeviceUnavailable, d.Backend)
	}
}

// EngineConfig assembles the engine configuration.
func (c *Config) EngineConfig(logger *log.Logger, h notify.Handlers) (engine.Config, error) {
	m, err := c.Manager()
	if err != nil {
		return engine.Config{}, fmt.Errorf("license manager: %w", err)
	}
	dev, err := c.Device()
	if err != nil {
		return engine.Config{}, err
	}
	return engine.Config{
		AppKey:             c.App.Key,
		AppSecret:          c.App.Secret,
		Authority:          c.Authority(m),
		Manager:            m,
		Revocations:        c.Revocations(),
		RevalidateInterval: c.License.Revalidate.Std(),
		Scheme:             c.Scheme(),
		Device:             dev,
		Handlers:           h,
		Logger:             logger,
		RingBlocks:         c.Device.RingBlocks,
	}, nil
}
