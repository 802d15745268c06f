package engine

import (
	"fmt"

	"Soundlink/internal/callbacks"
	"Soundlink/pkg/codec"
	"Soundlink/pkg/notify"
	"Soundlink/pkg/state"
)

// Send encodes b and starts playing it. It fails with ErrInvalidState
// unless the engine is Running, and never queues.
func (e *Engine) Send(b []byte) error {
	e.txMu.Lock()
	defer e.txMu.Unlock()

	if s := e.machine.Current(); s != state.Running || e.stopping.Load() {
		return fmt.Errorf("%w: cannot send while %v", ErrInvalidState, s)
	}

	limit := e.MaxPayloadLength()
	payload, err := codec.NewPayload(b, limit)
	if err != nil {
		return err
	}
	symbols, err := codec.Codec{MaxPayloadLength: limit}.Encode(payload.Bytes())
	if err != nil {
		return err
	}
	samples := e.modulator.Modulate(symbols)

	if err := e.machine.TransitionFrom(state.Running, state.Sending); err != nil {
		return err
	}
	e.dispatcher.Post(notify.Event{Kind: notify.Sending, Payload: payload.Bytes()})
	e.player.Load(&callbacks.Track{Samples: samples, Tag: payload})

	e.logger.Debug("sending", "bytes", payload.Len(), "samples", len(samples))
	return nil
}

// finishSend reports a played track. For one frame length plus a preamble
// after it, onsets are taken to be the device hearing its own output late.
func (e *Engine) finishSend(t *callbacks.Track) {
	e.echoGuard = len(t.Samples) + e.scheme.PreambleLength
	payload, _ := t.Tag.(codec.Payload)
	e.dispatcher.Post(notify.Event{Kind: notify.Sent, Payload: payload.Bytes()})
	if err := e.machine.TransitionFrom(state.Sending, state.Running); err != nil {
		e.logger.Debug("send finished outside Sending", "err", err)
	}
}
