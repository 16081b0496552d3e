package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndVerify(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", 30*time.Minute)

	token, err := issuer.Issue("admin")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	subject, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", subject)
}

func TestVerifyExpiredToken(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", 30*time.Minute)

	issuedAt := time.Now()
	issuer.now = func() time.Time { return issuedAt }

	token, err := issuer.Issue("admin")
	require.NoError(t, err)

	// Just inside the lifetime: still valid.
	issuer.now = func() time.Time { return issuedAt.Add(29 * time.Minute) }
	_, err = issuer.Verify(token)
	require.NoError(t, err)

	// Past the lifetime: expired, and distinguishable from tampering.
	issuer.now = func() time.Time { return issuedAt.Add(31 * time.Minute) }
	_, err = issuer.Verify(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestVerifyTamperedToken(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", 30*time.Minute)

	token, err := issuer.Issue("admin")
	require.NoError(t, err)

	// Flip one bit in the signature segment.
	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	sig := []byte(parts[2])
	sig[0] ^= 0x01
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	_, err = issuer.Verify(tampered)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", 30*time.Minute)

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"not a jwt", "hello"},
		{"missing segments", "a.b"},
		{"wrong secret", mustIssue(t, NewTokenIssuer("other-secret", time.Minute), "admin")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := issuer.Verify(tt.token)
			assert.ErrorIs(t, err, ErrTokenInvalid)
		})
	}
}

func TestVerifyRejectsUnsignedAlgorithm(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", 30*time.Minute)

	// alg=none token with a plausible payload.
	unsigned := "eyJhbGciOiJub25lIiwidHlwIjoiSldUIn0." +
		"eyJzdWIiOiJhZG1pbiJ9."

	_, err := issuer.Verify(unsigned)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func mustIssue(t *testing.T, issuer *TokenIssuer, subject string) string {
	t.Helper()
	token, err := issuer.Issue(subject)
	require.NoError(t, err)
	return token
}
