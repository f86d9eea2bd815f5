package session

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"time"

	"github.com/nkorchagin/datahub/internal/common/clock"
	"github.com/nkorchagin/datahub/internal/common/constants"
	commoncrypto "github.com/nkorchagin/datahub/internal/common/crypto"
	"github.com/nkorchagin/datahub/internal/common/logger"
	"github.com/nkorchagin/datahub/internal/observability/metrics"
)

type Manager struct {
	repo        Repository
	clock       clock.Clock
	log         *logger.Logger
	secret      []byte
	sessionTTL  time.Duration
	rememberTTL time.Duration
}

type ManagerDeps struct {
	Repo  Repository
	Clock clock.Clock
	Log   *logger.Logger
}

type ManagerConfig struct {
	Secret      string
	SessionTTL  time.Duration
	RememberTTL time.Duration
}

func NewManager(deps ManagerDeps, cfg ManagerConfig) *Manager {
	return &Manager{
		repo:        deps.Repo,
		clock:       deps.Clock,
		log:         deps.Log,
		secret:      []byte(cfg.Secret),
		sessionTTL:  cfg.SessionTTL,
		rememberTTL: cfg.RememberTTL,
	}
}

// Current resolves the request's session from the session cookie, falling
// back to the remember-me cookie. The fallback issues a fresh server-side
// session, so w is needed to set its cookie.
func (m *Manager) Current(ctx context.Context, w http.ResponseWriter, r *http.Request) (Session, bool) {
	if cookie, err := r.Cookie(constants.SessionCookieName); err == nil && cookie.Value != "" {
		s, err := m.repo.FindByTokenHash(ctx, commoncrypto.HashToken(cookie.Value))
		if err == nil && !s.Expired(m.clock.Now()) {
			return s, true
		}
		if err != nil && !errors.Is(err, ErrSessionNotFound) {
			m.log.WithFields(ctx, logger.Fields{
				"action": "session_lookup_failed",
			}).Errorf("session lookup failed: %v", err)
			return Session{}, false
		}
	}

	userID, ok := m.verifyRememberToken(r)
	if !ok {
		return Session{}, false
	}

	s, err := m.issue(ctx, w, userID)
	if err != nil {
		m.log.WithFields(ctx, logger.Fields{
			"user_id": userID,
			"action":  "remember_restore_failed",
		}).Errorf("failed to restore session from remember token: %v", err)
		return Session{}, false
	}

	metrics.RememberLoginsTotal.Inc()
	m.log.WithFields(ctx, logger.Fields{
		"user_id": userID,
		"action":  "remember_restore_success",
	}).Info("session restored from remember token")

	return s, true
}

// Ensure returns the current session or creates an anonymous one, so every
// page can embed a CSRF token before login.
func (m *Manager) Ensure(ctx context.Context, w http.ResponseWriter, r *http.Request) (Session, error) {
	if s, ok := m.Current(ctx, w, r); ok {
		return s, nil
	}

	s, err := m.issue(ctx, w, "")
	if err != nil {
		return Session{}, err
	}
	return s, nil
}

// Login rotates the session: any pre-login session row is destroyed and a
// fresh token is issued bound to userID, so a fixated cookie never becomes
// authenticated. With remember set, a signed persistent cookie is added.
func (m *Manager) Login(ctx context.Context, w http.ResponseWriter, r *http.Request, userID string, remember bool) (Session, error) {
	m.dropCurrent(ctx, r)

	s, err := m.issue(ctx, w, userID)
	if err != nil {
		return Session{}, err
	}

	if remember {
		if err := m.setRememberCookie(w, r, userID); err != nil {
			m.log.WithFields(ctx, logger.Fields{
				"user_id": userID,
				"action":  "remember_issue_failed",
			}).Errorf("failed to issue remember token: %v", err)
		}
	}

	return s, nil
}

// Logout destroys the current session and clears both cookies. A request
// with no session is a no-op success.
func (m *Manager) Logout(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	m.dropCurrent(ctx, r)

	clearCookie(w, r, constants.SessionCookieName)
	clearCookie(w, r, constants.RememberCookieName)

	metrics.LogoutsTotal.Inc()

	return nil
}

// ValidateCSRF compares a submitted token against the session's secret in
// constant time.
func (m *Manager) ValidateCSRF(s Session, token string) bool {
	if token == "" || s.CSRFToken == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(s.CSRFToken), []byte(token)) == 1
}

func (m *Manager) issue(ctx context.Context, w http.ResponseWriter, userID string) (Session, error) {
	rawToken, err := commoncrypto.GenerateToken(constants.SessionTokenSize)
	if err != nil {
		return Session{}, err
	}

	csrfToken, err := commoncrypto.GenerateToken(constants.CSRFTokenSize)
	if err != nil {
		return Session{}, err
	}

	now := m.clock.Now()
	s := Session{
		TokenHash: commoncrypto.HashToken(rawToken),
		UserID:    userID,
		CSRFToken: csrfToken,
		CreatedAt: now,
		ExpiresAt: now.Add(m.sessionTTL),
	}

	if err := m.repo.Create(ctx, s); err != nil {
		return Session{}, err
	}

	kind := "anonymous"
	if userID != "" {
		kind = "authenticated"
	}
	metrics.SessionsCreated.WithLabelValues(kind).Inc()

	setCookie(w, constants.SessionCookieName, rawToken, s.ExpiresAt)
	return s, nil
}

func (m *Manager) dropCurrent(ctx context.Context, r *http.Request) {
	cookie, err := r.Cookie(constants.SessionCookieName)
	if err != nil || cookie.Value == "" {
		return
	}

	err = m.repo.DeleteByTokenHash(ctx, commoncrypto.HashToken(cookie.Value))
	if err != nil && !errors.Is(err, ErrSessionNotFound) {
		m.log.WithFields(ctx, logger.Fields{
			"action": "session_delete_failed",
		}).Errorf("failed to delete session: %v", err)
		return
	}
	if err == nil {
		metrics.SessionsDestroyed.Inc()
	}
}

func setCookie(w http.ResponseWriter, name, value string, expiresAt time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearCookie(w http.ResponseWriter, r *http.Request, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
