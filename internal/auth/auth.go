// Package auth implements the shared-password viewer gate and admin sessions.
//
// Viewers unlock the portal with one shared password and receive a long-lived
// cookie. Admins sign in with an email and bcrypt-hashed password and receive a
// short-lived token, usable as a Bearer header or cookie. Both are HS256 JWTs.
package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/starford/tebiki/internal/apperr"
)

// Modes.
const (
	ModeDisabled = "disabled"
	ModePassword = "password"
)

// Cookie names.
const (
	ViewerCookie = "user_authenticated"
	AdminCookie  = "admin_session"
)

// Admin is one configured administrator account.
type Admin struct {
	Email        string
	PasswordHash string
}

// Options configures an Authenticator.
type Options struct {
	Mode           string
	ViewerPassword string
	Tokens         TokenService
	SessionTTL     time.Duration
	AdminTTL       time.Duration
	SecureCookies  bool
	Admins         []Admin
}

// Session is an issued token.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Authenticator checks credentials and guards routes.
type Authenticator struct {
	opts   Options
	admins map[string]string
}

// dummyHash keeps unknown-email logins as slow as wrong-password ones.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("tebiki-dummy-password"), bcrypt.DefaultCost)

// New builds an Authenticator. Admin emails are matched case-insensitively.
func New(opts Options) *Authenticator {
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 30 * 24 * time.Hour
	}
	if opts.AdminTTL <= 0 {
		opts.AdminTTL = 12 * time.Hour
	}
	admins := make(map[string]string, len(opts.Admins))
	for _, a := range opts.Admins {
		admins[normalizeEmail(a.Email)] = a.PasswordHash
	}
	return &Authenticator{opts: opts, admins: admins}
}

// Enabled reports whether routes are gated at all.
func (a *Authenticator) Enabled() bool {
	return a.opts.Mode == ModePassword
}

// ViewerLogin checks the shared viewer password.
func (a *Authenticator) ViewerLogin(password string) (*Session, error) {
	if password == "" {
		return nil, apperr.ErrInvalidInput
	}
	if !a.Enabled() {
		return a.sign(RoleViewer, "", a.opts.SessionTTL)
	}
	if subtle.ConstantTimeCompare([]byte(password), []byte(a.opts.ViewerPassword)) != 1 {
		return nil, apperr.ErrUnauthorized
	}
	return a.sign(RoleViewer, "", a.opts.SessionTTL)
}

// AdminLogin checks an administrator's credentials.
func (a *Authenticator) AdminLogin(_ context.Context, email, password string) (*Session, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, apperr.ErrInvalidInput
	}
	hash, ok := a.admins[email]
	if !ok {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return nil, apperr.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return nil, apperr.ErrUnauthorized
	}
	return a.sign(RoleAdmin, email, a.opts.AdminTTL)
}

func (a *Authenticator) sign(role, email string, ttl time.Duration) (*Session, error) {
	tok, exp, err := a.opts.Tokens.Sign(role, email, ttl)
	if err != nil {
		return nil, err
	}
	return &Session{Token: tok, ExpiresAt: exp}, nil
}

// Cookie wraps a session in an HttpOnly, SameSite=Lax cookie.
func (a *Authenticator) Cookie(name string, s *Session) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    s.Token,
		Path:     "/",
		Expires:  s.ExpiresAt,
		MaxAge:   int(time.Until(s.ExpiresAt).Seconds()),
		HttpOnly: true,
		Secure:   a.opts.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	}
}

// ClearCookie returns a cookie that deletes name.
func (a *Authenticator) ClearCookie(name string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   a.opts.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	}
}

// Authenticate resolves the caller of r. Admin credentials are preferred over
// the viewer cookie.
func (a *Authenticator) Authenticate(r *http.Request) (*Claims, error) {
	if raw := bearer(r); raw != "" {
		return a.opts.Tokens.Parse(raw)
	}
	if c, err := r.Cookie(AdminCookie); err == nil && c.Value != "" {
		if claims, err := a.opts.Tokens.Parse(c.Value); err == nil {
			return claims, nil
		}
	}
	if c, err := r.Cookie(ViewerCookie); err == nil && c.Value != "" {
		return a.opts.Tokens.Parse(c.Value)
	}
	return nil, errors.New("no credentials")
}

// HashPassword returns the bcrypt hash stored in the admins config.
func HashPassword(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

func bearer(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) < len("Bearer ") || !strings.EqualFold(h[:len("Bearer ")], "bearer ") {
		return ""
	}
	return strings.TrimSpace(h[len("Bearer "):])
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
