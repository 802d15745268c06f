package license

import (
	"crypto/ed25519"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager(Config{
		PrivateKey: testSecret,
		Issuer:     "soundlink-test",
		Audience:   "soundlink",
		TTL:        time.Hour,
	})
	require.NoError(t, err)
	return m
}

func TestIssueVerifyHS256(t *testing.T) {
	m := newTestManager(t)

	cred, err := m.Issue("app-1", 16)
	require.NoError(t, err)

	claims, err := m.Verify(cred)
	require.NoError(t, err)
	assert.Equal(t, "app-1", claims.Subject)
	assert.Equal(t, 16, claims.MaxPayloadLength)
	assert.Equal(t, "soundlink-test", claims.Issuer)
	_, err = uuid.Parse(claims.ID)
	assert.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, 5*time.Second)
}

func TestIssueVerifyEd25519(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	issuer, err := NewManager(Config{SigningMethod: MethodEd25519, PrivateKey: priv, PublicKey: pub, TTL: time.Minute})
	require.NoError(t, err)
	verifier, err := NewManager(Config{SigningMethod: MethodEd25519, PublicKey: pub})
	require.NoError(t, err)

	cred, err := issuer.Issue("app-ed", 0)
	require.NoError(t, err)

	claims, err := verifier.Verify(cred)
	require.NoError(t, err)
	assert.Equal(t, "app-ed", claims.Subject)

	_, err = verifier.Issue("app-ed", 0)
	assert.Error(t, err, "verify-only manager must not issue")

	// an HS256 manager must not accept an EdDSA token
	_, err = newTestManager(t).Verify(cred)
	assert.ErrorIs(t, err, ErrInvalidCredential)
}

func TestVerifyRejects(t *testing.T) {
	m := newTestManager(t)
	cred, err := m.Issue("app-1", 0)
	require.NoError(t, err)

	other, err := NewManager(Config{PrivateKey: []byte("another secret of enough length"), Issuer: "soundlink-test", Audience: "soundlink"})
	require.NoError(t, err)
	wrongIssuer, err := NewManager(Config{PrivateKey: testSecret, Issuer: "someone-else", Audience: "soundlink"})
	require.NoError(t, err)

	expired := signClaims(t, Claims{RegisteredClaims: jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   "app-1",
		Issuer:    "soundlink-test",
		Audience:  jwt.ClaimStrings{"soundlink"},
		IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
	}})
	anonymous := signClaims(t, Claims{RegisteredClaims: jwt.RegisteredClaims{
		Issuer:   "soundlink-test",
		Audience: jwt.ClaimStrings{"soundlink"},
	}})

	parts := strings.Split(string(cred), ".")
	tampered := Credential(parts[0] + "." + parts[1] + "x." + parts[2])

	tests := []struct {
		name    string
		manager *Manager
		cred    Credential
	}{
		{"Garbage", m, "not-a-token"},
		{"Empty", m, ""},
		{"Tampered", m, tampered},
		{"WrongKey", other, cred},
		{"WrongIssuer", wrongIssuer, cred},
		{"Expired", m, expired},
		{"Anonymous", m, anonymous},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.manager.Verify(tt.cred)
			assert.ErrorIs(t, err, ErrInvalidCredential)
		})
	}
}

func TestNewManagerValidates(t *testing.T) {
	_, err := NewManager(Config{})
	assert.Error(t, err)
	_, err = NewManager(Config{PrivateKey: testSecret, Leeway: time.Hour})
	assert.Error(t, err)
	_, err = NewManager(Config{SigningMethod: MethodEd25519})
	assert.Error(t, err)
	_, err = NewManager(Config{SigningMethod: "rs256", PrivateKey: testSecret})
	assert.Error(t, err)
}

func TestIssueValidates(t *testing.T) {
	m := newTestManager(t)
	_, err := m.Issue(" ", 0)
	assert.Error(t, err)
	_, err = m.Issue("app", -1)
	assert.Error(t, err)
}

func signClaims(t *testing.T, c Claims) Credential {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(testSecret)
	require.NoError(t, err)
	return Credential(s)
}
