// Package engine runs a data-over-sound session: it owns the audio device,
// the modem pair and the lifecycle state machine, and reports everything
// through notify.Handlers on a single goroutine.
package engine

import (
	"errors"
	"fmt"
	"io"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/exp/rand"

	"Soundlink/internal/callbacks"
	"Soundlink/pkg/codec"
	"Soundlink/pkg/device"
	"Soundlink/pkg/license"
	"Soundlink/pkg/modem"
	"Soundlink/pkg/notify"
	"Soundlink/pkg/state"
)

const Version = "1.2.0"

type Config struct {
	AppKey    string
	AppSecret string

	// Authority issues credentials for FetchLicense. Optional.
	Authority license.Authority
	// Manager verifies credentials.
	Manager *license.Manager
	// Revocations is consulted on validation and revalidation. Optional.
	Revocations license.RevocationStore
	// RevalidateInterval enables background revalidation while running.
	RevalidateInterval time.Duration

	Scheme   modem.Scheme // zero value means modem.DefaultScheme()
	Device   device.Device
	Handlers notify.Handlers
	Logger   *log.Logger

	RingBlocks int    // input blocks buffered between the audio callback and the worker, default 64
	Seed       uint64 // seed of RandomPayload, 0 picks one from the clock
}

type Engine struct {
	cfg    Config
	logger *log.Logger

	scheme      modem.Scheme
	modulator   *modem.Modulator
	demodulator *modem.Demodulator
	rxCodec     codec.Codec

	machine    *state.Machine
	gate       *license.Gate
	dispatcher *notify.Dispatcher
	player     *callbacks.Player
	ring       *device.Ring
	sessionID  uuid.UUID

	mu     sync.Mutex // guards run and closed
	run    *run
	closed bool

	txMu      sync.Mutex // serializes Send with the worker's stop
	paused    atomic.Bool
	stopping  atomic.Bool
	resync    atomic.Bool // demodulator state predates a pause
	receiving bool        // owned by the worker
	echoGuard int         // input samples left in which onsets are our own echo, owned by the worker
	volume    atomic.Uint64

	rngMu sync.Mutex
	rng   *rand.Rand
}

func New(cfg Config) (*Engine, error) {
	if cfg.Manager == nil {
		return nil, errors.New("engine: a license manager is required")
	}
	if cfg.Device == nil {
		return nil, fmt.Errorf("%w: no device configured", device.ErrDeviceUnavailable)
	}
	if cfg.Scheme == (modem.Scheme{}) {
		cfg.Scheme = modem.DefaultScheme()
	}
	if cfg.RingBlocks <= 0 {
		cfg.RingBlocks = 64
	}
	if cfg.Seed == 0 {
		cfg.Seed = uint64(time.Now().UnixNano())
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	e := &Engine{
		cfg:       cfg,
		logger:    logger.WithPrefix("engine"),
		scheme:    cfg.Scheme,
		rxCodec:   cfg.Scheme.Codec(),
		player:    callbacks.NewPlayer(),
		ring:      device.NewRing(cfg.RingBlocks, device.BufferSize),
		sessionID: uuid.New(),
		rng:       rand.New(rand.NewSource(cfg.Seed)),
	}
	e.volume.Store(math.Float64bits(1))

	var err error
	if e.modulator, err = modem.NewModulator(cfg.Scheme); err != nil {
		return nil, err
	}
	if e.demodulator, err = modem.NewDemodulator(cfg.Scheme, receiver{e}, logger.WithPrefix("demodulator")); err != nil {
		return nil, err
	}

	e.dispatcher = notify.NewDispatcher(cfg.Handlers, logger.WithPrefix("notify"))
	e.machine = state.NewMachine(func(old, new state.State) {
		e.logger.Debug("state", "from", old, "to", new)
		e.dispatcher.Post(notify.Event{Kind: notify.StateChanged, Old: old, New: new})
	})
	e.gate = license.NewGate(cfg.Manager, cfg.Revocations, logger.WithPrefix("license"))

	e.logger.Debug("created", "session", e.sessionID, "scheme", e.scheme.Info())
	return e, nil
}

func (e *Engine) State() state.State {
	return e.machine.Current()
}

func (e *Engine) SessionID() uuid.UUID {
	return e.sessionID
}

func (e *Engine) Scheme() modem.Scheme {
	return e.scheme
}

func (e *Engine) Version() string {
	return Version
}

func (e *Engine) Info() string {
	return fmt.Sprintf("Soundlink %s [%s] session %s, state %v, max payload %d B",
		Version, e.scheme.Info(), e.sessionID, e.State(), e.MaxPayloadLength())
}

// SetHandlers replaces the notification handlers.
func (e *Engine) SetHandlers(h notify.Handlers) {
	e.dispatcher.SetHandlers(h)
}
