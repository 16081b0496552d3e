package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voxgate/voxgate/internal/session"
)

func gatedProbe(m *SessionMiddleware) (*httptest.Server, *string) {
	var seenSubject string
	h := m.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenSubject = SubjectFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))
	return httptest.NewServer(h), &seenSubject
}

func noRedirectClient() *http.Client {
	return &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func TestAuthenticatePassesValidSession(t *testing.T) {
	issuer := NewTokenIssuer("secret", 30*time.Minute)
	store := session.NewMemoryStore()
	require.NoError(t, store.Activate(context.Background(), "admin", 30*time.Minute))

	srv, subject := gatedProbe(NewSessionMiddleware(issuer, store))
	defer srv.Close()

	token, err := issuer.Issue("admin")
	require.NoError(t, err)

	req, _ := http.NewRequest(http.MethodGet, srv.URL, nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: token})
	resp, err := noRedirectClient().Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "admin", *subject)
}

func TestAuthenticateMissingCookie(t *testing.T) {
	issuer := NewTokenIssuer("secret", 30*time.Minute)
	srv, subject := gatedProbe(NewSessionMiddleware(issuer, session.NewMemoryStore()))
	defer srv.Close()

	resp, err := noRedirectClient().Get(srv.URL)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))
	assert.Empty(t, *subject, "handler must not run without a session")
}

func TestAuthenticateRevokedSession(t *testing.T) {
	issuer := NewTokenIssuer("secret", 30*time.Minute)
	store := session.NewMemoryStore()

	srv, subject := gatedProbe(NewSessionMiddleware(issuer, store))
	defer srv.Close()

	// Valid token, but no active server-side session entry.
	token, err := issuer.Issue("admin")
	require.NoError(t, err)

	req, _ := http.NewRequest(http.MethodGet, srv.URL, nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: token})
	resp, err := noRedirectClient().Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Empty(t, *subject)
}

type failingStore struct{}

func (failingStore) Activate(context.Context, string, time.Duration) error { return nil }
func (failingStore) Revoke(context.Context, string) error                  { return nil }
func (failingStore) Active(context.Context, string) (bool, error) {
	return false, errors.New("backend down")
}

func TestAuthenticateStoreFailure(t *testing.T) {
	issuer := NewTokenIssuer("secret", 30*time.Minute)
	srv, _ := gatedProbe(NewSessionMiddleware(issuer, failingStore{}))
	defer srv.Close()

	token, err := issuer.Issue("admin")
	require.NoError(t, err)

	req, _ := http.NewRequest(http.MethodGet, srv.URL, nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: token})
	resp, err := noRedirectClient().Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestAuthenticateStatelessMode(t *testing.T) {
	issuer := NewTokenIssuer("secret", 30*time.Minute)
	srv, subject := gatedProbe(NewSessionMiddleware(issuer, nil))
	defer srv.Close()

	token, err := issuer.Issue("admin")
	require.NoError(t, err)

	req, _ := http.NewRequest(http.MethodGet, srv.URL, nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: token})
	resp, err := noRedirectClient().Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	// With no session table the signed token alone is the credential.
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "admin", *subject)
}
