package internal

import (
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/starford/tebiki/internal/auth"
)

// Auth modes.
const (
	AuthModeDisabled = auth.ModeDisabled
	AuthModePassword = auth.ModePassword
)

const minSecretLen = 16

var pathRe = regexp.MustCompile(`^/[A-Za-z0-9/_-]*$`)

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app"`
	SQLite  SQLiteConfig      `yaml:"sqlite"`
	Auth    AuthConfig        `yaml:"auth"`
	Intake  IntakeConfig      `yaml:"intake"`
	CORS    CORSConfig        `yaml:"cors"`
	Metrics MetricsConfig     `yaml:"metrics"`
	SSE     SSEConfig         `yaml:"sse"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.SQLite.Validate(); err != nil {
		return err
	}
	if err := c.Auth.Validate(); err != nil {
		return err
	}
	if err := c.Intake.Validate(); err != nil {
		return err
	}
	if err := c.Metrics.Validate(); err != nil {
		return err
	}
	return c.SSE.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// SQLiteConfig holds SQLite database configuration.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// AdminAccount is one administrator login.
type AdminAccount struct {
	Email        string `yaml:"email"`
	PasswordHash string `yaml:"password_hash"`
}

// Validate validates the admin account.
func (a AdminAccount) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.Email, validation.Required, is.EmailFormat),
		validation.Field(&a.PasswordHash, validation.Required, validation.By(bcryptHash)),
	)
}

func bcryptHash(v any) error {
	s, _ := v.(string)
	if !strings.HasPrefix(s, "$2") {
		return errors.New("must be a bcrypt hash (see the hash-password command)")
	}
	return nil
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no gate, suitable for local dev.
//   - "password": viewers need the shared password; admins sign in with
//     email and password. JWTSecret, ViewerPassword and at least one admin
//     are required.
type AuthConfig struct {
	Mode           string         `yaml:"mode"`
	ViewerPassword string         `yaml:"viewer_password"`
	JWTSecret      string         `yaml:"jwt_secret"`
	JWTIssuer      string         `yaml:"jwt_issuer"`
	SessionTTL     time.Duration  `yaml:"session_ttl"`
	AdminTTL       time.Duration  `yaml:"admin_ttl"`
	SecureCookies  bool           `yaml:"secure_cookies"`
	Admins         []AdminAccount `yaml:"admins"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	// Normalise empty mode to "disabled".
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModePassword)),
		validation.Field(&c.SessionTTL, validation.Min(time.Minute)),
		validation.Field(&c.AdminTTL, validation.Min(time.Minute)),
		validation.Field(&c.Admins),
	); err != nil {
		return err
	}
	if !c.AuthEnabled() {
		return nil
	}
	switch {
	case c.ViewerPassword == "":
		return fmt.Errorf("auth: mode is %q but viewer_password is empty", AuthModePassword)
	case len(c.JWTSecret) < minSecretLen:
		return fmt.Errorf("auth: mode is %q but jwt_secret is shorter than %d bytes", AuthModePassword, minSecretLen)
	case len(c.Admins) == 0:
		return fmt.Errorf("auth: mode is %q but no admins are configured", AuthModePassword)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModePassword
}

// Options converts the config into authenticator options. In disabled mode
// without a secret, tokens are signed with a per-process random key.
func (c *AuthConfig) Options(fallbackSecret []byte) auth.Options {
	secret := []byte(c.JWTSecret)
	if len(secret) == 0 {
		secret = fallbackSecret
	}
	admins := make([]auth.Admin, len(c.Admins))
	for i, a := range c.Admins {
		admins[i] = auth.Admin{Email: a.Email, PasswordHash: a.PasswordHash}
	}
	return auth.Options{
		Mode:           c.Mode,
		ViewerPassword: c.ViewerPassword,
		Tokens:         auth.TokenService{Secret: secret, Issuer: c.JWTIssuer},
		SessionTTL:     c.SessionTTL,
		AdminTTL:       c.AdminTTL,
		SecureCookies:  c.SecureCookies,
		Admins:         admins,
	}
}

// IntakeConfig holds manual request intake configuration.
type IntakeConfig struct {
	// RateLimit uses the limiter's formatted syntax, e.g. "5-M". Empty
	// disables limiting.
	RateLimit  string `yaml:"rate_limit"`
	AdminEmail string `yaml:"admin_email"`
}

// Validate validates the intake configuration.
func (c *IntakeConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.AdminEmail, is.EmailFormat),
	)
}

// CORSConfig holds cross-origin settings for the browser front end.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// MetricsConfig holds Prometheus exposition settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Validate validates the metrics configuration.
func (c *MetricsConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.When(c.Enabled, validation.Required, validation.Match(pathRe))),
	)
}

// SSEConfig holds event stream settings.
type SSEConfig struct {
	// Throttle is the minimum gap between catalog.updated events.
	Throttle time.Duration `yaml:"throttle"`
}

// Validate validates the SSE configuration.
func (c *SSEConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Throttle, validation.Min(100*time.Millisecond)),
	)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		SQLite: SQLiteConfig{
			Path: "./tebiki.db",
		},
		Auth: AuthConfig{
			Mode:       AuthModeDisabled,
			JWTIssuer:  "tebiki",
			SessionTTL: 30 * 24 * time.Hour,
			AdminTTL:   12 * time.Hour,
		},
		Intake: IntakeConfig{
			RateLimit: "5-M",
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{"http://localhost:3000"},
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
		SSE: SSEConfig{
			Throttle: 2 * time.Second,
		},
	}
}
