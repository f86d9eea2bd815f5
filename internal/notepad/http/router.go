package http

import (
	"net/http"
	"strings"

	"github.com/nkorchagin/datahub/internal/auth/forms"
	"github.com/nkorchagin/datahub/internal/common/logger"
	"github.com/nkorchagin/datahub/internal/common/web"
	notepaddomain "github.com/nkorchagin/datahub/internal/notepad/domain"
	"github.com/nkorchagin/datahub/internal/notepad/service"
	"github.com/nkorchagin/datahub/internal/observability/metrics"
	"github.com/nkorchagin/datahub/internal/session"
)

type Handler struct {
	notepads *service.NotepadService
	sessions *session.Manager
	renderer *web.Renderer
	log      *logger.Logger
}

func NewHandler(notepads *service.NotepadService, sessions *session.Manager, renderer *web.Renderer, log *logger.Logger) *Handler {
	return &Handler{notepads: notepads, sessions: sessions, renderer: renderer, log: log}
}

func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/notepad", h.list)
	mux.HandleFunc("/notepad/create", h.create)
	mux.HandleFunc("/notepad/edit/", h.edit)
	mux.HandleFunc("/notepad/delete/", h.delete)
}

// requireSession returns the authenticated session or redirects to /login.
func (h *Handler) requireSession(w http.ResponseWriter, r *http.Request) (session.Session, bool) {
	s, ok := session.FromContext(r.Context())
	if !ok || !s.Authenticated() {
		web.Redirect(w, r, "/login")
		return session.Session{}, false
	}
	return s, true
}

func (h *Handler) checkCSRF(w http.ResponseWriter, r *http.Request, sess session.Session) bool {
	if h.sessions.ValidateCSRF(sess, forms.CSRFField(r)) {
		return true
	}
	metrics.CSRFFailuresTotal.WithLabelValues(r.URL.Path).Inc()
	h.renderer.Render(w, http.StatusForbidden, "notfound.html", web.PageData{
		Title:         "Not found",
		Authenticated: true,
	})
	return false
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.requireSession(w, r)
	if !ok {
		return
	}

	notepads, err := h.notepads.List(r.Context(), sess.UserID)
	if err != nil {
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.renderer.Render(w, http.StatusOK, "notepad_list.html", web.PageData{
		Title:         "My notepads",
		Authenticated: true,
		CSRFToken:     sess.CSRFToken,
		Data:          notepads,
	})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.requireSession(w, r)
	if !ok {
		return
	}

	if r.Method != http.MethodPost {
		h.renderForm(w, http.StatusOK, "New notepad", "/notepad/create", sess, forms.NotepadForm{}, nil)
		return
	}

	form, err := forms.ParseNotepad(r)
	if err != nil {
		h.renderForm(w, http.StatusOK, "New notepad", "/notepad/create", sess, forms.NotepadForm{}, nil)
		return
	}

	if !h.checkCSRF(w, r, sess) {
		return
	}

	if fieldErrors := forms.Validate(form); fieldErrors != nil {
		h.renderForm(w, http.StatusOK, "New notepad", "/notepad/create", sess, form, fieldErrors)
		return
	}

	if _, err := h.notepads.Create(r.Context(), sess.UserID, form.Title, form.Body); err != nil {
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	web.Redirect(w, r, "/notepad")
}

func (h *Handler) edit(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.requireSession(w, r)
	if !ok {
		return
	}

	id, ok := idFromPath(r.URL.Path, "/notepad/edit/")
	if !ok {
		h.renderNotFound(w)
		return
	}

	action := "/notepad/edit/" + string(id)

	if r.Method != http.MethodPost {
		notepad, err := h.notepads.Get(r.Context(), sess.UserID, id)
		if err != nil {
			h.renderNotFound(w)
			return
		}
		form := forms.NotepadForm{Title: notepad.Title, Body: notepad.Body}
		h.renderForm(w, http.StatusOK, "Edit notepad", action, sess, form, nil)
		return
	}

	form, err := forms.ParseNotepad(r)
	if err != nil {
		h.renderForm(w, http.StatusOK, "Edit notepad", action, sess, forms.NotepadForm{}, nil)
		return
	}

	if !h.checkCSRF(w, r, sess) {
		return
	}

	if fieldErrors := forms.Validate(form); fieldErrors != nil {
		h.renderForm(w, http.StatusOK, "Edit notepad", action, sess, form, fieldErrors)
		return
	}

	if _, err := h.notepads.Update(r.Context(), sess.UserID, id, form.Title, form.Body); err != nil {
		h.renderNotFound(w)
		return
	}

	web.Redirect(w, r, "/notepad")
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.requireSession(w, r)
	if !ok {
		return
	}

	if r.Method != http.MethodPost {
		h.renderNotFound(w)
		return
	}

	id, ok := idFromPath(r.URL.Path, "/notepad/delete/")
	if !ok {
		h.renderNotFound(w)
		return
	}

	if err := r.ParseForm(); err != nil {
		h.renderNotFound(w)
		return
	}

	if !h.checkCSRF(w, r, sess) {
		return
	}

	if err := h.notepads.Delete(r.Context(), sess.UserID, id); err != nil {
		h.renderNotFound(w)
		return
	}

	web.Redirect(w, r, "/notepad")
}

func (h *Handler) renderForm(w http.ResponseWriter, status int, title, action string, sess session.Session, form forms.NotepadForm, fieldErrors forms.FieldErrors) {
	h.renderer.Render(w, status, "notepad_form.html", web.PageData{
		Title:         title,
		Authenticated: true,
		CSRFToken:     sess.CSRFToken,
		FieldErrors:   fieldErrors,
		Form:          form,
		Data:          action,
	})
}

func (h *Handler) renderNotFound(w http.ResponseWriter) {
	h.renderer.Render(w, http.StatusNotFound, "notfound.html", web.PageData{
		Title:         "Not found",
		Authenticated: true,
	})
}

func idFromPath(path, prefix string) (notepaddomain.ID, bool) {
	rest := strings.TrimPrefix(path, prefix)
	if rest == "" || strings.Contains(rest, "/") {
		return "", false
	}
	return notepaddomain.ID(rest), true
}
