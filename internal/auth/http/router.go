package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/nkorchagin/datahub/internal/auth/forms"
	"github.com/nkorchagin/datahub/internal/auth/service"
	"github.com/nkorchagin/datahub/internal/common/logger"
	"github.com/nkorchagin/datahub/internal/common/web"
	"github.com/nkorchagin/datahub/internal/observability/metrics"
	"github.com/nkorchagin/datahub/internal/session"
)

const indexRoute = "/"

type Handler struct {
	auth     *service.AuthService
	sessions *session.Manager
	renderer *web.Renderer
	log      *logger.Logger
}

func NewHandler(auth *service.AuthService, sessions *session.Manager, renderer *web.Renderer, log *logger.Logger) *Handler {
	return &Handler{auth: auth, sessions: sessions, renderer: renderer, log: log}
}

func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/signup/", h.signup)
	mux.HandleFunc("/login", h.login)
	mux.HandleFunc("/logout", h.logout)
}

func (h *Handler) signup(w http.ResponseWriter, r *http.Request) {
	if s, ok := session.FromContext(r.Context()); ok && s.Authenticated() {
		web.Redirect(w, r, indexRoute)
		return
	}

	sess, err := h.ensureSession(r.Context(), w, r)
	if err != nil {
		h.log.Errorf("signup: failed to establish session: %v", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	if r.Method != http.MethodPost {
		h.renderSignup(w, sess, forms.SignupForm{}, nil, "")
		return
	}

	form, err := forms.ParseSignup(r)
	if err != nil {
		h.renderSignup(w, sess, forms.SignupForm{}, nil, "Invalid form submission")
		return
	}

	if !h.sessions.ValidateCSRF(sess, forms.CSRFField(r)) {
		metrics.CSRFFailuresTotal.WithLabelValues(r.URL.Path).Inc()
		h.renderSignup(w, sess, form, nil, "Invalid form submission")
		return
	}

	if fieldErrors := forms.Validate(form); fieldErrors != nil {
		h.renderSignup(w, sess, form, fieldErrors, "")
		return
	}

	available, err := h.auth.IsEmailAvailable(r.Context(), form.Email)
	if err != nil {
		metrics.SignupsTotal.WithLabelValues("error").Inc()
		h.renderSignup(w, sess, form, nil, fmt.Sprintf("Error creating user: %v", err))
		return
	}
	if !available {
		metrics.SignupsTotal.WithLabelValues("email_taken").Inc()
		h.renderSignup(w, sess, form, nil, fmt.Sprintf("Email %s in use", form.Email))
		return
	}

	user, err := h.auth.SignUp(r.Context(), service.SignUpInput{
		Email:       form.Email,
		Password:    form.Password,
		Name:        form.Name,
		Surname:     form.Surname,
		Affiliation: form.Affiliation,
		Orcid:       form.Orcid,
	})
	if err != nil {
		// The availability check above can lose the race with a concurrent
		// signup; the store's unique constraint is the final word.
		if errors.Is(err, service.ErrEmailTaken) {
			metrics.SignupsTotal.WithLabelValues("email_taken").Inc()
			h.renderSignup(w, sess, form, nil, fmt.Sprintf("Email %s in use", form.Email))
			return
		}
		metrics.SignupsTotal.WithLabelValues("error").Inc()
		h.renderSignup(w, sess, form, nil, fmt.Sprintf("Error creating user: %v", err))
		return
	}

	metrics.SignupsTotal.WithLabelValues("success").Inc()

	if _, err := h.sessions.Login(r.Context(), w, r, string(user.ID), true); err != nil {
		h.log.Errorf("signup: user created but session failed: %v", err)
		web.Redirect(w, r, "/login")
		return
	}

	web.Redirect(w, r, indexRoute)
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	if s, ok := session.FromContext(r.Context()); ok && s.Authenticated() {
		web.Redirect(w, r, indexRoute)
		return
	}

	sess, err := h.ensureSession(r.Context(), w, r)
	if err != nil {
		h.log.Errorf("login: failed to establish session: %v", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	if r.Method != http.MethodPost {
		h.renderLogin(w, sess, forms.LoginForm{}, nil, "")
		return
	}

	form, err := forms.ParseLogin(r)
	if err != nil {
		h.renderLogin(w, sess, forms.LoginForm{}, nil, "Invalid form submission")
		return
	}

	if !h.sessions.ValidateCSRF(sess, forms.CSRFField(r)) {
		metrics.CSRFFailuresTotal.WithLabelValues(r.URL.Path).Inc()
		h.renderLogin(w, sess, form, nil, "Invalid form submission")
		return
	}

	if fieldErrors := forms.Validate(form); fieldErrors != nil {
		h.renderLogin(w, sess, form, fieldErrors, "")
		return
	}

	user, ok, err := h.auth.Login(r.Context(), form.Email, form.Password)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		h.renderLogin(w, sess, form, nil, "Invalid credentials")
		return
	}
	if !ok {
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		h.renderLogin(w, sess, form, nil, "Invalid credentials")
		return
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()

	if _, err := h.sessions.Login(r.Context(), w, r, string(user.ID), false); err != nil {
		h.log.Errorf("login: verified credentials but session failed: %v", err)
		h.renderLogin(w, sess, form, nil, "Invalid credentials")
		return
	}

	web.Redirect(w, r, indexRoute)
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Logout(r.Context(), w, r); err != nil {
		h.log.Errorf("logout failed: %v", err)
	}
	web.Redirect(w, r, indexRoute)
}

func (h *Handler) ensureSession(ctx context.Context, w http.ResponseWriter, r *http.Request) (session.Session, error) {
	if s, ok := session.FromContext(ctx); ok {
		return s, nil
	}
	return h.sessions.Ensure(ctx, w, r)
}

func (h *Handler) renderSignup(w http.ResponseWriter, sess session.Session, form forms.SignupForm, fieldErrors forms.FieldErrors, errMsg string) {
	h.renderer.Render(w, http.StatusOK, "signup.html", web.PageData{
		Title:       "Sign up",
		CSRFToken:   sess.CSRFToken,
		Error:       errMsg,
		FieldErrors: fieldErrors,
		Form:        form,
	})
}

func (h *Handler) renderLogin(w http.ResponseWriter, sess session.Session, form forms.LoginForm, fieldErrors forms.FieldErrors, errMsg string) {
	h.renderer.Render(w, http.StatusOK, "login.html", web.PageData{
		Title:       "Log in",
		CSRFToken:   sess.CSRFToken,
		Error:       errMsg,
		FieldErrors: fieldErrors,
		Form:        form,
	})
}
