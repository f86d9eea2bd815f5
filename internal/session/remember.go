package session

import (
	"net/http"

	"github.com/golang-jwt/jwt/v5"

	"github.com/nkorchagin/datahub/internal/common/constants"
)

// The remember-me cookie is an HS256 token carrying only the user ID and an
// expiry. It holds no session state; presenting a valid one mints a fresh
// server-side session.

func (m *Manager) setRememberCookie(w http.ResponseWriter, r *http.Request, userID string) error {
	now := m.clock.Now()
	expiresAt := now.Add(m.rememberTTL)

	claims := jwt.MapClaims{
		"sub": userID,
		"exp": expiresAt.Unix(),
		"iat": now.Unix(),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return err
	}

	setCookie(w, constants.RememberCookieName, token, expiresAt)
	return nil
}

func (m *Manager) verifyRememberToken(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(constants.RememberCookieName)
	if err != nil || cookie.Value == "" {
		return "", false
	}

	token, err := jwt.Parse(
		cookie.Value,
		func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return m.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithTimeFunc(m.clock.Now),
	)
	if err != nil || !token.Valid {
		return "", false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", false
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", false
	}

	return sub, true
}
