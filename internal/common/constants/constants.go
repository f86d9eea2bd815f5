package constants

import "time"

type ContextKey string

const (
	TraceIDKey ContextKey = "trace_id"
	SessionKey ContextKey = "session"
)

const (
	PasswordMinLength    = 8
	PasswordMaxLength    = 72
	EmailMaxLength       = 254
	NameMaxLength        = 100
	SessionSecretMinLen  = 32
	SessionTokenSize     = 32
	CSRFTokenSize        = 32
	NotepadTitleMaxLen   = 200
	NotepadBodyMaxLen    = 20000
	MaxSearchQueryLength = 100
	MaxExploreResults    = 100
	DefaultExploreLimit  = 50

	DefaultMaxRequestSize = 1 << 20
	MaxFormMemory         = 64 << 10

	SessionCookieName  = "session_token"
	RememberCookieName = "remember_token"
	CSRFFieldName      = "csrf_token"

	DefaultSessionTTL  = 24 * time.Hour
	DefaultRememberTTL = 30 * 24 * time.Hour

	SessionCleanupInterval = 10 * time.Minute

	DBPoolMaxOpenConns    = 25
	DBPoolMinOpenConns    = 5
	DBPoolConnMaxLifetime = time.Hour
	DBPoolConnMaxIdleTime = 30 * time.Minute
	DBPoolHealthCheck     = time.Minute
	DBPoolConnectTimeout  = 5 * time.Second
	DBPoolMaxAttempts     = 10
	DBPoolRetryDelay      = time.Second
	DBPoolMetricsInterval = 30 * time.Second

	ServerReadHeaderTimeout = 10 * time.Second
	ServerReadTimeout       = 30 * time.Second
	ServerWriteTimeout      = 30 * time.Second
	ServerIdleTimeout       = 120 * time.Second

	RateLimitCleanupInterval = 5 * time.Minute
	AuthRateLimitPerSecond   = 2.0
	AuthRateLimitBurst       = 5
	DefaultRatePerSecond     = 20.0
	DefaultRateBurst         = 40
)
