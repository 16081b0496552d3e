package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/voxgate/voxgate/internal/session"
)

// CookieName is the cookie carrying the signed session token.
const CookieName = "access_token"

// SessionMiddleware gates handlers behind a valid session cookie. A missing
// cookie is the normal "please log in" path and redirects; a present but
// expired or tampered token redirects too, with the failure kind logged.
type SessionMiddleware struct {
	issuer   *TokenIssuer
	sessions session.Store
}

func NewSessionMiddleware(issuer *TokenIssuer, sessions session.Store) *SessionMiddleware {
	return &SessionMiddleware{issuer: issuer, sessions: sessions}
}

func (m *SessionMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(CookieName)
		if err != nil {
			redirectToLogin(w, r)
			return
		}

		subject, err := m.issuer.Verify(cookie.Value)
		if err != nil {
			switch {
			case errors.Is(err, ErrTokenExpired):
				slog.Info("session expired", "path", r.URL.Path)
			default:
				slog.Warn("rejected session token", "path", r.URL.Path, "error", err)
			}
			clearSessionCookie(w)
			redirectToLogin(w, r)
			return
		}

		if m.sessions != nil {
			active, err := m.sessions.Active(r.Context(), subject)
			if err != nil {
				slog.Error("session store unavailable", "error", err)
				http.Error(w, "service unavailable", http.StatusServiceUnavailable)
				return
			}
			if !active {
				clearSessionCookie(w)
				redirectToLogin(w, r)
				return
			}
		}

		next.ServeHTTP(w, r.WithContext(WithSubject(r.Context(), subject)))
	})
}

func redirectToLogin(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
}

type ctxKey string

const subjectKey ctxKey = "subject"

// WithSubject attaches the authenticated username to the context.
func WithSubject(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, subjectKey, subject)
}

// SubjectFromContext returns the authenticated username, or "" when the
// request did not pass through the middleware.
func SubjectFromContext(ctx context.Context) string {
	s, _ := ctx.Value(subjectKey).(string)
	return s
}
