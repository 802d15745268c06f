package license

import (
	"bytes"
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
)

// Authority exchanges application keys for a credential.
type Authority interface {
	Fetch(ctx context.Context, appKey, appSecret string) (Credential, error)
}

type App struct {
	Secret           string
	MaxPayloadLength int
}

// LocalAuthority issues credentials from a bundled app table, offline.
type LocalAuthority struct {
	Manager *Manager
	Apps    map[string]App
}

func (a *LocalAuthority) Fetch(ctx context.Context, appKey, appSecret string) (Credential, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	app, ok := a.Apps[appKey]
	if !ok || subtle.ConstantTimeCompare([]byte(app.Secret), []byte(appSecret)) != 1 {
		return "", fmt.Errorf("%w: unknown app key or secret", ErrNotLicensed)
	}
	return a.Manager.Issue(appKey, app.MaxPayloadLength)
}

type fetchRequest struct {
	AppKey    string `json:"app_key"`
	AppSecret string `json:"app_secret"`
}

type fetchResponse struct {
	License Credential `json:"license,omitempty"`
	Error   string     `json:"error,omitempty"`
}

// HTTPAuthority fetches credentials from a remote authority served by Handler.
type HTTPAuthority struct {
	URL    string
	Client *http.Client
}

func (a *HTTPAuthority) Fetch(ctx context.Context, appKey, appSecret string) (Credential, error) {
	body, err := json.Marshal(fetchRequest{AppKey: appKey, AppSecret: appSecret})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.URL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	client := a.Client
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrAuthorityUnavailable, err)
	}
	defer resp.Body.Close()

	var out fetchResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: bad response (%s): %w", ErrAuthorityUnavailable, resp.Status, err)
	}

	switch {
	case resp.StatusCode == http.StatusOK && out.License != "":
		return out.License, nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return "", fmt.Errorf("%w: %s", ErrNotLicensed, out.Error)
	default:
		return "", fmt.Errorf("%w: %s %s", ErrAuthorityUnavailable, resp.Status, out.Error)
	}
}

// Handler serves an Authority over HTTP for HTTPAuthority clients.
func Handler(a Authority, logger *log.Logger) http.Handler {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			writeJSON(w, http.StatusMethodNotAllowed, fetchResponse{Error: "method not allowed"})
			return
		}

		var req fetchRequest
		if err := json.NewDecoder(io.LimitReader(r.Body, 4<<10)).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, fetchResponse{Error: "malformed request"})
			return
		}

		cred, err := a.Fetch(r.Context(), req.AppKey, req.AppSecret)
		switch {
		case err == nil:
			logger.Info("license issued", "app", req.AppKey)
			writeJSON(w, http.StatusOK, fetchResponse{License: cred})
		case errors.Is(err, ErrNotLicensed):
			logger.Warn("license refused", "app", req.AppKey)
			writeJSON(w, http.StatusUnauthorized, fetchResponse{Error: "not licensed"})
		default:
			logger.Error("license issue failed", "app", req.AppKey, "err", err)
			writeJSON(w, http.StatusInternalServerError, fetchResponse{Error: "internal error"})
		}
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
