package engine

import (
	"Soundlink/pkg/codec"
	"Soundlink/pkg/notify"
	"Soundlink/pkg/state"
)

// receiver adapts demodulator events to the state machine. It runs on the
// worker goroutine.
type receiver struct {
	e *Engine
}

func (r receiver) Onset() {
	e := r.e
	if e.stopping.Load() {
		return
	}
	if e.echoGuard > 0 {
		e.logger.Debug("ignored onset after send", "guard", e.echoGuard)
		return
	}
	// preambles heard while sending or paused are ignored
	if err := e.machine.TransitionFrom(state.Running, state.Receiving); err != nil {
		return
	}
	e.receiving = true
	e.dispatcher.Post(notify.Event{Kind: notify.Receiving})
}

func (r receiver) Frame(symbols []codec.Symbol) {
	e := r.e
	if !e.receiving {
		return
	}
	payload, err := e.rxCodec.Decode(symbols)
	if err != nil {
		e.logger.Debug("dropped frame", "err", err)
	}
	r.resolve(payload)
}

func (r receiver) Abort(err error) {
	if !r.e.receiving {
		return
	}
	r.e.logger.Debug("dropped frame", "err", err)
	r.resolve(nil)
}

func (r receiver) resolve(payload []byte) {
	e := r.e
	e.receiving = false
	e.dispatcher.Post(notify.Event{Kind: notify.Received, Payload: payload})
	if err := e.machine.TransitionFrom(state.Receiving, state.Running); err != nil {
		e.logger.Debug("frame resolved outside Receiving", "err", err)
	}
}
