// Package config loads the soundlink configuration from YAML or TOML files,
// the environment and command line flags, and assembles an engine from it.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App     AppConfig     `yaml:"app" toml:"app"`
	Device  DeviceConfig  `yaml:"device" toml:"device"`
	Modem   ModemConfig   `yaml:"modem" toml:"modem"`
	License LicenseConfig `yaml:"license" toml:"license"`
	Log     LogConfig     `yaml:"log" toml:"log"`
}

type AppConfig struct {
	Key    string `yaml:"key" toml:"key"`
	Secret string `yaml:"secret" toml:"secret"`
	// LicenseFile caches the credential between runs.
	LicenseFile string `yaml:"license_file" toml:"license_file"`
	// AuthorityURL selects a remote authority. Empty issues credentials
	// locally from the license section.
	AuthorityURL string `yaml:"authority_url" toml:"authority_url"`
	// MaxPayloadLength is written into locally issued credentials.
	MaxPayloadLength int `yaml:"max_payload_length" toml:"max_payload_length"`
}

type DeviceConfig struct {
	Backend    string  `yaml:"backend" toml:"backend"` // auto, portaudio, asio or loopback
	Name       string  `yaml:"name" toml:"name"`       // ASIO driver name
	SampleRate float64 `yaml:"sample_rate" toml:"sample_rate"`
	BlockSize  int     `yaml:"block_size" toml:"block_size"`
	InChannel  int     `yaml:"in_channel" toml:"in_channel"`
	OutChannel int     `yaml:"out_channel" toml:"out_channel"`
	RingBlocks int     `yaml:"ring_blocks" toml:"ring_blocks"`
}

type ModemConfig struct {
	SymbolSamples    int      `yaml:"symbol_samples" toml:"symbol_samples"`
	BaseTone         int      `yaml:"base_tone" toml:"base_tone"`
	PreambleMinFreq  float64  `yaml:"preamble_min_freq" toml:"preamble_min_freq"`
	PreambleMaxFreq  float64  `yaml:"preamble_max_freq" toml:"preamble_max_freq"`
	PreambleLength   int      `yaml:"preamble_length" toml:"preamble_length"`
	GuardSamples     int      `yaml:"guard_samples" toml:"guard_samples"`
	MaxFrameDuration Duration `yaml:"max_frame_duration" toml:"max_frame_duration"`
	Amplitude        float64  `yaml:"amplitude" toml:"amplitude"`
	Threshold        float64  `yaml:"threshold" toml:"threshold"`
	Volume           float64  `yaml:"volume" toml:"volume"`
}

type LicenseConfig struct {
	SigningMethod  string   `yaml:"signing_method" toml:"signing_method"` // hs256 or ed25519
	Secret         string   `yaml:"secret" toml:"secret"`
	PrivateKeyFile string   `yaml:"private_key_file" toml:"private_key_file"`
	PublicKeyFile  string   `yaml:"public_key_file" toml:"public_key_file"`
	Issuer         string   `yaml:"issuer" toml:"issuer"`
	Audience       string   `yaml:"audience" toml:"audience"`
	TTL            Duration `yaml:"ttl" toml:"ttl"`
	Leeway         Duration `yaml:"leeway" toml:"leeway"`
	Revalidate     Duration `yaml:"revalidate" toml:"revalidate"`
	Redis          Redis    `yaml:"redis" toml:"redis"`
}

// Redis enables the shared revocation store when Addr is set.
type Redis struct {
	Addr     string `yaml:"addr" toml:"addr"`
	Password string `yaml:"password" toml:"password"`
	DB       int    `yaml:"db" toml:"db"`
	Prefix   string `yaml:"prefix" toml:"prefix"`
}

type LogConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"` // text, json or logfmt
}

// Duration reads "1m30s" style strings from either file format.
type Duration time.Duration

func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

func (d Duration) String() string {
	return time.Duration(d).String()
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(b)))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

func (d *Duration) UnmarshalYAML(n *yaml.Node) error {
	return d.UnmarshalText([]byte(n.Value))
}

func Default() Config {
	return Config{
		App: AppConfig{
			LicenseFile: defaultLicensePath(),
		},
		Device: DeviceConfig{
			Backend:    "auto",
			SampleRate: 48000,
			BlockSize:  512,
			RingBlocks: 64,
		},
		Modem: ModemConfig{
			SymbolSamples:    480,
			BaseTone:         18,
			PreambleMinFreq:  1000,
			PreambleMaxFreq:  4000,
			PreambleLength:   1024,
			GuardSamples:     480,
			MaxFrameDuration: Duration(700 * time.Millisecond),
			Amplitude:        0.5,
			Threshold:        0.5,
			Volume:           1,
		},
		License: LicenseConfig{
			SigningMethod: "hs256",
			Issuer:        "soundlink",
			TTL:           Duration(24 * time.Hour),
			Leeway:        Duration(30 * time.Second),
			Revalidate:    Duration(time.Minute),
			Redis:         Redis{Prefix: "soundlink"},
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

func defaultLicensePath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".soundlink", "license.jwt")
	}
	return ""
}

// DefaultPath returns ~/.soundlink/config.yaml, or "" without a home directory.
func DefaultPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".soundlink", "config.yaml")
	}
	return ""
}

// LoadFile reads path over the defaults. The format follows the extension.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	case ".toml":
		err = toml.Unmarshal(data, &cfg)
	default:
		return nil, fmt.Errorf("config %s: unknown format %q", path, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return &cfg, nil
}

// Save writes cfg in the format matching the extension of path.
func (c *Config) Save(path string) error {
	var (
		data []byte
		err  error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(c)
	case ".toml":
		data, err = toml.Marshal(c)
	default:
		return fmt.Errorf("config %s: unknown format %q", path, ext)
	}
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// ApplyEnv overrides the app credentials from SOUNDLINK_* variables.
func (c *Config) ApplyEnv() {
	for name, dst := range map[string]*string{
		"SOUNDLINK_APP_KEY":        &c.App.Key,
		"SOUNDLINK_APP_SECRET":     &c.App.Secret,
		"SOUNDLINK_LICENSE_SECRET": &c.License.Secret,
		"SOUNDLINK_REDIS_ADDR":     &c.License.Redis.Addr,
	} {
		if v, ok := os.LookupEnv(name); ok {
			*dst = v
		}
	}
}

var (
	backends = []string{"auto", "portaudio", "asio", "loopback"}
	formats  = []string{"text", "json", "logfmt"}
)

func (c *Config) Validate() error {
	var errs []error
	if !slices.Contains(backends, c.Device.Backend) {
		errs = append(errs, fmt.Errorf("device.backend %q is not one of %v", c.Device.Backend, backends))
	}
	if c.Device.SampleRate <= 0 {
		errs = append(errs, errors.New("device.sample_rate must be positive"))
	}
	if c.Device.BlockSize < 0 || c.Device.RingBlocks < 0 {
		errs = append(errs, errors.New("device.block_size and device.ring_blocks must not be negative"))
	}
	if c.Modem.Volume < 0 || c.Modem.Volume > 1 {
		errs = append(errs, fmt.Errorf("modem.volume %v is outside [0, 1]", c.Modem.Volume))
	}
	if err := c.Scheme().Validate(); err != nil {
		errs = append(errs, err)
	}
	if !slices.Contains(formats, c.Log.Format) {
		errs = append(errs, fmt.Errorf("log.format %q is not one of %v", c.Log.Format, formats))
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	if c.App.MaxPayloadLength < 0 {
		errs = append(errs, errors.New("app.max_payload_length must not be negative"))
	}
	return errors.Join(errs...)
}
