package config

import (
	"fmt"

	"github.com/spf13/pflag"
)

// flagSetters apply a changed flag to the config. Flags left at their
// default never override the file.
var flagSetters = map[string]func(c *Config, fs *pflag.FlagSet, name string) error{
	"app-key":      str(func(c *Config) *string { return &c.App.Key }),
	"app-secret":   str(func(c *Config) *string { return &c.App.Secret }),
	"license-file": str(func(c *Config) *string { return &c.App.LicenseFile }),
	"authority":    str(func(c *Config) *string { return &c.App.AuthorityURL }),
	"device":       str(func(c *Config) *string { return &c.Device.Backend }),
	"device-name":  str(func(c *Config) *string { return &c.Device.Name }),
	"redis":        str(func(c *Config) *string { return &c.License.Redis.Addr }),
	"log-level":    str(func(c *Config) *string { return &c.Log.Level }),
	"log-format":   str(func(c *Config) *string { return &c.Log.Format }),
	"sample-rate": func(c *Config, fs *pflag.FlagSet, name string) (err error) {
		c.Device.SampleRate, err = fs.GetFloat64(name)
		return
	},
	"volume": func(c *Config, fs *pflag.FlagSet, name string) (err error) {
		c.Modem.Volume, err = fs.GetFloat64(name)
		return
	},
	"revalidate": func(c *Config, fs *pflag.FlagSet, name string) error {
		d, err := fs.GetDuration(name)
		c.License.Revalidate = Duration(d)
		return err
	},
}

func str(field func(*Config) *string) func(*Config, *pflag.FlagSet, string) error {
	return func(c *Config, fs *pflag.FlagSet, name string) (err error) {
		*field(c), err = fs.GetString(name)
		return
	}
}

// BindFlags registers the overridable settings on fs.
func BindFlags(fs *pflag.FlagSet) {
	d := Default()
	fs.String("app-key", "", "application key")
	fs.String("app-secret", "", "application secret")
	fs.String("license-file", d.App.LicenseFile, "credential cache")
	fs.String("authority", "", "license authority URL, empty issues locally")
	fs.String("device", d.Device.Backend, "audio backend: auto, portaudio, asio or loopback")
	fs.String("device-name", "", "ASIO driver name")
	fs.Float64("sample-rate", d.Device.SampleRate, "sample rate in Hz")
	fs.Float64("volume", d.Modem.Volume, "output volume in [0, 1]")
	fs.Duration("revalidate", d.License.Revalidate.Std(), "license revalidation interval, 0 disables")
	fs.String("redis", "", "redis address of the shared revocation list")
	fs.String("log-level", d.Log.Level, "debug, info, warn or error")
	fs.String("log-format", d.Log.Format, "text, json or logfmt")
}

// ApplyFlags copies every flag set on the command line into c.
func (c *Config) ApplyFlags(fs *pflag.FlagSet) error {
	var err error
	fs.Visit(func(f *pflag.Flag) {
		set, ok := flagSetters[f.Name]
		if !ok || err != nil {
			return
		}
		if e := set(c, fs, f.Name); e != nil {
			err = fmt.Errorf("flag --%s: %w", f.Name, e)
		}
	})
	return err
}

// Load resolves the configuration: defaults, then the file at path if it
// exists, then the environment, then flags changed on fs.
func Load(path string, fs *pflag.FlagSet) (*Config, error) {
	cfg := Default()
	if path != "" {
		loaded, err := LoadFile(path)
		switch {
		case err == nil:
			cfg = *loaded
		case !isNotExist(err):
			return nil, err
		}
	}
	cfg.ApplyEnv()
	if fs != nil {
		if err := cfg.ApplyFlags(fs); err != nil {
			return nil, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
