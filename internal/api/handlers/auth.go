package handlers

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"time"

	"github.com/voxgate/voxgate/internal/auth"
	"github.com/voxgate/voxgate/internal/config"
	"github.com/voxgate/voxgate/internal/session"
	"github.com/voxgate/voxgate/internal/web"
)

type AuthHandler struct {
	creds    config.AuthConfig
	issuer   *auth.TokenIssuer
	sessions session.Store
}

func NewAuthHandler(creds config.AuthConfig, issuer *auth.TokenIssuer, sessions session.Store) *AuthHandler {
	return &AuthHandler{creds: creds, issuer: issuer, sessions: sessions}
}

// LoginForm renders the login page.
func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	web.Render(w, http.StatusOK, "login.html", nil)
}

// Login checks the submitted credential, issues a session token and sets it
// as the session cookie. A mismatch answers 401 with no cookie.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	username := r.PostFormValue("username")
	password := r.PostFormValue("password")

	if !h.credentialsMatch(username, password) {
		slog.Info("login rejected", "username", username)
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	token, err := h.issuer.Issue(username)
	if err != nil {
		slog.Error("failed to issue session token", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	if err := h.sessions.Activate(r.Context(), username, h.issuer.Lifetime()); err != nil {
		slog.Error("failed to activate session", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.issuer.Lifetime() / time.Second),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
	slog.Info("login succeeded", "username", username)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Logout clears the cookie, revokes the server-side session entry, and
// redirects to login. Logging out twice is harmless: the second call finds
// nothing to revoke and redirects the same way.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(auth.CookieName); err == nil {
		if subject, err := h.issuer.Verify(cookie.Value); err == nil {
			if err := h.sessions.Revoke(r.Context(), subject); err != nil {
				slog.Error("failed to revoke session", "subject", subject, "error", err)
			}
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (h *AuthHandler) credentialsMatch(username, password string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(h.creds.Username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(h.creds.Password)) == 1
	return userOK && passOK
}
