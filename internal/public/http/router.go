package http

import (
	"net/http"

	"github.com/nkorchagin/datahub/internal/common/logger"
	"github.com/nkorchagin/datahub/internal/common/web"
	datasetrepo "github.com/nkorchagin/datahub/internal/dataset/repository"
	"github.com/nkorchagin/datahub/internal/session"
	userdomain "github.com/nkorchagin/datahub/internal/user/domain"
	userrepo "github.com/nkorchagin/datahub/internal/user/repository"
)

const recentDatasetsLimit = 10

type Handler struct {
	datasets datasetrepo.Repository
	users    userrepo.Repository
	renderer *web.Renderer
	log      *logger.Logger
}

func NewHandler(datasets datasetrepo.Repository, users userrepo.Repository, renderer *web.Renderer, log *logger.Logger) *Handler {
	return &Handler{datasets: datasets, users: users, renderer: renderer, log: log}
}

func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/", h.index)
}

func (h *Handler) index(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		h.renderer.Render(w, http.StatusNotFound, "notfound.html", web.PageData{Title: "Not found"})
		return
	}

	var authenticated bool
	var userName string
	if sess, ok := session.FromContext(r.Context()); ok && sess.Authenticated() {
		authenticated = true
		if user, err := h.users.FindByID(r.Context(), userdomain.ID(sess.UserID)); err == nil {
			userName = user.DisplayName()
		}
	}

	datasets, err := h.datasets.ListRecent(r.Context(), recentDatasetsLimit)
	if err != nil {
		h.log.Errorf("index: failed to list datasets: %v", err)
	}

	h.renderer.Render(w, http.StatusOK, "index.html", web.PageData{
		Title:         "Home",
		Authenticated: authenticated,
		UserName:      userName,
		Data:          datasets,
	})
}
