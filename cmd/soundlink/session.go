package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"Soundlink/pkg/async"
	"Soundlink/pkg/engine"
	"Soundlink/pkg/license"
	"Soundlink/pkg/notify"
	"Soundlink/pkg/state"
)

// openEngine creates an engine, licenses it and applies the configured
// volume. The engine is not started.
func (a *app) openEngine(ctx context.Context, h notify.Handlers) (*engine.Engine, error) {
	ec, err := a.cfg.EngineConfig(a.logger, h)
	if err != nil {
		return nil, err
	}
	e, err := engine.New(ec)
	if err != nil {
		return nil, err
	}
	if err := a.license(ctx, e); err != nil {
		e.Close()
		return nil, err
	}
	if err := e.SetVolume(a.cfg.Modem.Volume); err != nil {
		e.Close()
		return nil, err
	}
	a.logger.Info("engine ready", "info", e.Info())
	return e, nil
}

// license tries the cached credential first and fetches a new one when it
// is missing or rejected.
func (a *app) license(ctx context.Context, e *engine.Engine) error {
	path := a.cfg.App.LicenseFile
	if path != "" {
		cred, err := license.ReadFile(path)
		switch {
		case err == nil:
			err = e.SetLicense(ctx, cred)
			if err == nil {
				return nil
			}
			a.logger.Warn("cached license rejected", "file", path, "err", err)
		case !errors.Is(err, os.ErrNotExist):
			a.logger.Warn("cached license unreadable", "file", path, "err", err)
		}
	}

	cred, err := async.AwaitResult(ctx, e.FetchLicense(ctx))
	if err != nil {
		return fmt.Errorf("fetch license: %w", err)
	}
	if err := e.SetLicense(ctx, cred); err != nil {
		return err
	}

	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return err
		}
		if err := license.WriteFile(path, cred); err != nil {
			a.logger.Warn("cannot cache license", "file", path, "err", err)
		}
	}
	return nil
}

// watchLicense applies credentials written to the license file while the
// engine runs, restarting it if a revocation had stopped it.
func (a *app) watchLicense(ctx context.Context, e *engine.Engine) {
	path := a.cfg.App.LicenseFile
	if path == "" {
		return
	}
	go func() {
		err := license.WatchFile(ctx, path, func(cred license.Credential, err error) {
			if err != nil {
				a.logger.Warn("license file", "err", err)
				return
			}
			if e.State() != state.Stopped {
				a.logger.Debug("license file changed while active, ignored")
				return
			}
			if err := e.SetLicense(ctx, cred); err != nil {
				a.logger.Warn("new license rejected", "err", err)
				return
			}
			if err := e.Start(); err != nil {
				a.logger.Error("restart failed", "err", err)
			}
		})
		if err != nil {
			a.logger.Warn("license file not watched", "err", err)
		}
	}()
}

// stopEngine stops a running engine and waits for it to settle.
func stopEngine(e *engine.Engine) {
	if done, err := e.Stop(nil); err == nil {
		<-done
	}
	e.Close()
}
