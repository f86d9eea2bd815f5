package session

import (
	"context"
	"net/http"

	"github.com/nkorchagin/datahub/internal/common/constants"
)

// WithSession resolves the request's session once and stores it in the
// request context. Handlers read it with FromContext instead of consulting
// any ambient global.
func WithSession(m *Manager) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if s, ok := m.Current(r.Context(), w, r); ok {
				ctx := context.WithValue(r.Context(), constants.SessionKey, s)
				r = r.WithContext(ctx)
			}
			next.ServeHTTP(w, r)
		})
	}
}

func FromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(constants.SessionKey).(Session)
	return s, ok
}
