package license

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"Soundlink/pkg/async"
)

// Decision is the outcome of validating a credential. Reason is nil when
// approved and wraps ErrNotLicensed or ErrLicenseRevoked otherwise.
type Decision struct {
	Approved bool
	Reason   error
	Claims   *Claims
}

// Gate holds the credential of one engine and decides whether it may run.
type Gate struct {
	manager *Manager
	store   RevocationStore // may be nil
	logger  *log.Logger

	mu         sync.Mutex
	credential Credential
	claims     *Claims
	approved   bool
}

func NewGate(manager *Manager, store RevocationStore, logger *log.Logger) *Gate {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Gate{manager: manager, store: store, logger: logger}
}

// Check validates cred synchronously. A store that cannot be reached
// fails closed.
func (g *Gate) Check(ctx context.Context, cred Credential) Decision {
	claims, err := g.manager.Verify(cred)
	if err != nil {
		return Decision{Reason: fmt.Errorf("%w: %w", ErrNotLicensed, err)}
	}

	if g.store != nil {
		reason, revoked, err := g.store.Revoked(ctx, claims.ID)
		if err != nil {
			return Decision{Reason: fmt.Errorf("%w: %w", ErrNotLicensed, err)}
		}
		if revoked {
			return Decision{Reason: fmt.Errorf("%w: %s", ErrLicenseRevoked, reason)}
		}
	}
	return Decision{Approved: true, Claims: claims}
}

// Validate runs Check in the background.
func (g *Gate) Validate(ctx context.Context, cred Credential) <-chan Decision {
	return async.Promise(func() Decision {
		return g.Check(ctx, cred)
	})
}

// Accept records the outcome of validating cred.
func (g *Gate) Accept(cred Credential, d Decision) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if d.Approved {
		g.credential, g.claims, g.approved = cred, d.Claims, true
		g.logger.Info("license approved", "app", d.Claims.Subject, "license", d.Claims.ID)
		return
	}
	g.approved = false
	g.logger.Warn("license rejected", "reason", d.Reason)
}

func (g *Gate) Approved() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.approved
}

// Claims returns the claims of the approved credential, or nil.
func (g *Gate) Claims() *Claims {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.approved {
		return nil
	}
	return g.claims
}

// Revalidate checks the approved credential again. It returns an error
// wrapping ErrLicenseRevoked if the credential expired or was revoked, and
// withdraws approval. An unreachable store keeps the current approval.
func (g *Gate) Revalidate(ctx context.Context) error {
	g.mu.Lock()
	cred, approved := g.credential, g.approved
	g.mu.Unlock()
	if !approved {
		return ErrNotLicensed
	}

	d := g.Check(ctx, cred)
	if d.Approved {
		return nil
	}

	var err error
	switch {
	case errors.Is(d.Reason, ErrRevocationUnavailable):
		g.logger.Warn("revocation check failed, keeping license", "err", d.Reason)
		return nil
	case errors.Is(d.Reason, ErrLicenseRevoked):
		err = d.Reason
	default:
		err = fmt.Errorf("%w: %w", ErrLicenseRevoked, d.Reason)
	}

	g.mu.Lock()
	if g.credential == cred {
		g.approved = false
	}
	g.mu.Unlock()
	g.logger.Warn("license withdrawn", "reason", err)
	return err
}

// Watch revalidates every interval until ctx is done or approval is
// withdrawn, in which case onRevoked is called once.
func (g *Gate) Watch(ctx context.Context, interval time.Duration, onRevoked func(error)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			err := g.Revalidate(ctx)
			if err == nil {
				continue
			}
			if ctx.Err() != nil {
				return
			}
			if onRevoked != nil {
				onRevoked(err)
			}
			return
		}
	}
}
