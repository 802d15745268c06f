package engine

import (
	"context"
	"errors"
	"fmt"

	"Soundlink/pkg/async"
	"Soundlink/pkg/device"
	"Soundlink/pkg/notify"
	"Soundlink/pkg/state"
)

// run is one Start..Stopped cycle.
type run struct {
	stop    async.Event
	fault   async.Notifier[error]
	revoked async.Notifier[error]
	cancel  context.CancelFunc
	waiters []func()
	done    chan struct{}
}

// Start opens the device and moves Stopped -> Running.
func (e *Engine) Start() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrClosed
	}

	current := e.machine.Current()
	if current == state.NotCreated || !e.gate.Approved() {
		return ErrNotLicensed
	}
	if e.run != nil || current != state.Stopped {
		return fmt.Errorf("%w: cannot start while %v", ErrInvalidState, current)
	}

	r := &run{
		fault:   async.NewNotifier[error](),
		revoked: async.NewNotifier[error](),
		done:    make(chan struct{}),
	}

	e.player.Reset()
	e.ring.Drain()
	e.demodulator.Reset()
	e.receiving = false
	e.echoGuard = 0
	e.resync.Store(false)
	e.paused.Store(false)
	e.stopping.Store(false)

	if fr, ok := e.cfg.Device.(device.FaultReporter); ok {
		fr.SetFaultHandler(func(err error) { r.fault.Notify(err) })
	}
	if err := e.cfg.Device.Start(e.process); err != nil {
		if !errors.Is(err, device.ErrDeviceUnavailable) {
			err = fmt.Errorf("%w: %w", device.ErrDeviceUnavailable, err)
		}
		return err
	}

	if err := e.machine.TransitionFrom(state.Stopped, state.Running); err != nil {
		_ = e.cfg.Device.Stop()
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel
	if e.cfg.RevalidateInterval > 0 {
		go e.gate.Watch(ctx, e.cfg.RevalidateInterval, func(err error) { r.revoked.Notify(err) })
	}

	e.run = r
	async.Job(func() { e.work(r) })
	e.logger.Info("started", "session", e.sessionID)
	return nil
}

// Stop drains any transmission or reception in flight, closes the device
// and moves to Stopped. onComplete runs on the notification goroutine
// before the returned channel is closed.
func (e *Engine) Stop(onComplete func()) (<-chan struct{}, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil, ErrClosed
	}
	r := e.run
	if r == nil {
		return nil, fmt.Errorf("%w: cannot stop while %v", ErrInvalidState, e.machine.Current())
	}

	r.waiters = append(r.waiters, onComplete)
	e.stopping.Store(true)
	r.stop.Set()
	return r.done, nil
}

// Pause silences the device, for example while another app owns audio.
func (e *Engine) Pause() error {
	if err := e.machine.TransitionFrom(state.Running, state.Paused); err != nil {
		return err
	}
	e.paused.Store(true)
	return nil
}

func (e *Engine) Resume() error {
	if err := e.machine.TransitionFrom(state.Paused, state.Running); err != nil {
		return err
	}
	e.resync.Store(true)
	e.paused.Store(false)
	return nil
}

// Close stops the engine if needed and releases the dispatcher. The engine
// cannot be used afterwards. Close must not be called from a handler.
func (e *Engine) Close() error {
	done, err := e.Stop(nil)
	if err == nil {
		<-done
	}

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	e.mu.Unlock()

	e.dispatcher.Close()
	e.logger.Debug("closed", "session", e.sessionID)
	return nil
}

// process runs on the audio context.
func (e *Engine) process(in, out []int32) {
	if e.paused.Load() {
		clear(out)
		return
	}
	e.ring.Put(in)
	e.player.Update(out)
}

func (e *Engine) work(r *run) {
	stop := r.stop.Done()
	for {
		select {
		case b := <-e.ring.Filled():
			e.feed(b)
			e.ring.Release(b)
		case t := <-e.player.Done():
			e.finishSend(t)
		case err := <-r.fault:
			if !errors.Is(err, device.ErrDeviceUnavailable) {
				err = fmt.Errorf("%w: %w", device.ErrDeviceUnavailable, err)
			}
			e.logger.Error("device failed", "err", err)
			e.forceStop(r, notify.Event{Kind: notify.Error, Err: err})
			return
		case err := <-r.revoked:
			e.logger.Warn("license revoked, stopping", "reason", err)
			e.forceStop(r, notify.Event{Kind: notify.AuthStateChanged, Err: err})
			return
		case <-stop:
			stop = nil
		}

		if dropped := e.ring.Dropped(); dropped > 0 {
			e.logger.Warn("input overrun", "samples", dropped)
		}

		if stop == nil && e.tryFinishStop(r) {
			return
		}
	}
}

// feed runs one input block through the demodulator on the worker.
func (e *Engine) feed(b []int32) {
	if e.resync.Swap(false) {
		e.demodulator.Reset()
	}
	e.demodulator.Write(b)
	e.echoGuard = max(0, e.echoGuard-len(b))
}

// tryFinishStop completes a requested stop once nothing is in flight.
func (e *Engine) tryFinishStop(r *run) bool {
	e.txMu.Lock()
	defer e.txMu.Unlock()
	switch e.machine.Current() {
	case state.Running, state.Paused:
		e.finish(r, nil)
		return true
	default:
		return false
	}
}

func (e *Engine) forceStop(r *run, ev notify.Event) {
	e.txMu.Lock()
	defer e.txMu.Unlock()
	e.finish(r, &ev)
}

// finish tears the run down with txMu held. A nil ev is a requested stop,
// otherwise the stop is forced and ev is reported after the state change.
func (e *Engine) finish(r *run, ev *notify.Event) {
	if err := e.cfg.Device.Stop(); err != nil && ev == nil {
		e.logger.Warn("device stop", "err", err)
	}
	r.cancel()

	e.player.Reset()
	e.ring.Drain()
	e.demodulator.Reset()
	e.receiving = false
	e.paused.Store(false)

	// Start may follow as soon as Stopped is observable
	e.mu.Lock()
	waiters := r.waiters
	e.run = nil
	e.stopping.Store(false)
	e.mu.Unlock()

	if ev == nil {
		if err := e.machine.Transition(state.Stopped); err != nil {
			e.machine.Force(state.Stopped)
		}
	} else {
		e.machine.Force(state.Stopped)
		e.dispatcher.Post(*ev)
	}

	e.logger.Info("stopped", "session", e.sessionID)
	if !e.dispatcher.Do(func() {
		for _, fn := range waiters {
			if fn != nil {
				fn()
			}
		}
		close(r.done)
	}) {
		close(r.done)
	}
}
