package engine

import (
	"context"
	"errors"
	"fmt"

	"Soundlink/pkg/async"
	"Soundlink/pkg/license"
	"Soundlink/pkg/notify"
	"Soundlink/pkg/state"
)

// FetchLicense asks the configured authority for a credential.
func (e *Engine) FetchLicense(ctx context.Context) <-chan async.Result[license.Credential] {
	if e.cfg.Authority == nil {
		return async.Resolved[license.Credential]("", errors.New("engine: no license authority configured"))
	}
	return async.Try(func() (license.Credential, error) {
		return e.cfg.Authority.Fetch(ctx, e.cfg.AppKey, e.cfg.AppSecret)
	})
}

// SetLicense validates cred and, once approved, moves a new engine to
// Stopped. The outcome is also reported through OnAuthStateChanged.
func (e *Engine) SetLicense(ctx context.Context, cred license.Credential) error {
	if err := e.checkOpen(); err != nil {
		return err
	}
	if s := e.State(); s != state.NotCreated && s != state.Stopped {
		return fmt.Errorf("%w: cannot change license while %v", ErrInvalidState, s)
	}

	d, err := async.Await(ctx, e.gate.Validate(ctx, cred))
	if err != nil {
		return err
	}

	e.gate.Accept(cred, d)
	e.dispatcher.Post(notify.Event{Kind: notify.AuthStateChanged, Err: d.Reason})
	if !d.Approved {
		return d.Reason
	}

	if e.State() == state.NotCreated {
		if err := e.machine.Transition(state.Stopped); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) checkOpen() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrClosed
	}
	return nil
}
