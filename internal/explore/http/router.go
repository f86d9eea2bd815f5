package http

import (
	"encoding/json"
	"net/http"

	commonhttp "github.com/nkorchagin/datahub/internal/common/http"
	"github.com/nkorchagin/datahub/internal/common/logger"
	"github.com/nkorchagin/datahub/internal/common/web"
	"github.com/nkorchagin/datahub/internal/dataset/domain"
	"github.com/nkorchagin/datahub/internal/explore/service"
	"github.com/nkorchagin/datahub/internal/observability/metrics"
	"github.com/nkorchagin/datahub/internal/session"
)

const csrfFailedMessage = "CSRF validation failed"

type Handler struct {
	explore  *service.ExploreService
	sessions *session.Manager
	renderer *web.Renderer
	log      *logger.Logger
}

func NewHandler(explore *service.ExploreService, sessions *session.Manager, renderer *web.Renderer, log *logger.Logger) *Handler {
	return &Handler{explore: explore, sessions: sessions, renderer: renderer, log: log}
}

func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/explore", h.index)
}

func (h *Handler) index(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.page(w, r)
	case http.MethodPost:
		h.query(w, r)
	default:
		commonhttp.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

type pageData struct {
	Query string
}

func (h *Handler) page(w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		var err error
		sess, err = h.sessions.Ensure(r.Context(), w, r)
		if err != nil {
			h.log.Errorf("explore: failed to establish session: %v", err)
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}
	}

	h.renderer.Render(w, http.StatusOK, "explore.html", web.PageData{
		Title:         "Explore",
		Authenticated: sess.Authenticated(),
		CSRFToken:     sess.CSRFToken,
		Data:          pageData{Query: r.URL.Query().Get("query")},
	})
}

// query is the JSON search API. The CSRF token is popped from the payload
// and checked before anything touches the store; on mismatch no filter runs.
func (h *Handler) query(w http.ResponseWriter, r *http.Request) {
	var criteria map[string]any
	if err := json.NewDecoder(r.Body).Decode(&criteria); err != nil {
		criteria = nil
	}
	defer r.Body.Close()

	var csrfToken string
	if criteria != nil {
		if v, ok := criteria["csrf_token"].(string); ok {
			csrfToken = v
		}
		delete(criteria, "csrf_token")
	}

	sess, ok := session.FromContext(r.Context())
	if !ok || !h.sessions.ValidateCSRF(sess, csrfToken) {
		metrics.CSRFFailuresTotal.WithLabelValues(r.URL.Path).Inc()
		h.log.WithFields(r.Context(), logger.Fields{
			"action": "explore_csrf_failed",
		}).Warn("explore query rejected: csrf validation failed")
		commonhttp.WriteError(w, http.StatusForbidden, csrfFailedMessage)
		return
	}

	if criteria == nil {
		criteria = map[string]any{}
	}

	datasets, err := h.explore.Filter(r.Context(), criteria)
	if err != nil {
		commonhttp.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	wire := make([]domain.Wire, 0, len(datasets))
	for _, d := range datasets {
		wire = append(wire, d.ToWire())
	}

	commonhttp.WriteJSON(w, http.StatusOK, wire)
}
