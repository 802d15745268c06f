package license

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAuthority(t *testing.T) *LocalAuthority {
	return &LocalAuthority{
		Manager: newTestManager(t),
		Apps: map[string]App{
			"app-1": {Secret: "s3cret", MaxPayloadLength: 8},
		},
	}
}

func TestLocalAuthority(t *testing.T) {
	a := newTestAuthority(t)
	ctx := context.Background()

	cred, err := a.Fetch(ctx, "app-1", "s3cret")
	require.NoError(t, err)
	claims, err := a.Manager.Verify(cred)
	require.NoError(t, err)
	assert.Equal(t, 8, claims.MaxPayloadLength)

	_, err = a.Fetch(ctx, "app-1", "wrong")
	assert.ErrorIs(t, err, ErrNotLicensed)
	_, err = a.Fetch(ctx, "nobody", "s3cret")
	assert.ErrorIs(t, err, ErrNotLicensed)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = a.Fetch(cancelled, "app-1", "s3cret")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestHTTPAuthority(t *testing.T) {
	local := newTestAuthority(t)
	srv := httptest.NewServer(Handler(local, nil))
	defer srv.Close()

	remote := &HTTPAuthority{URL: srv.URL, Client: srv.Client()}
	ctx := context.Background()

	cred, err := remote.Fetch(ctx, "app-1", "s3cret")
	require.NoError(t, err)
	_, err = local.Manager.Verify(cred)
	require.NoError(t, err)

	_, err = remote.Fetch(ctx, "app-1", "nope")
	assert.ErrorIs(t, err, ErrNotLicensed)
}

func TestHTTPAuthorityUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := (&HTTPAuthority{URL: srv.URL}).Fetch(context.Background(), "app-1", "s3cret")
	assert.ErrorIs(t, err, ErrAuthorityUnavailable)

	srv.Close()
	_, err = (&HTTPAuthority{URL: srv.URL}).Fetch(context.Background(), "app-1", "s3cret")
	assert.ErrorIs(t, err, ErrAuthorityUnavailable)
}

func TestHandlerRejectsBadRequests(t *testing.T) {
	h := Handler(newTestAuthority(t), nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}
