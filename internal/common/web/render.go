package web

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/nkorchagin/datahub/internal/common/logger"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = []string{
	"index.html",
	"signup.html",
	"login.html",
	"explore.html",
	"notepad_list.html",
	"notepad_form.html",
	"notfound.html",
}

// PageData is the contract between handlers and templates. Form carries the
// page-specific submitted values so re-rendered forms preserve user input.
type PageData struct {
	Title         string
	Authenticated bool
	UserName      string
	CSRFToken     string
	Error         string
	FieldErrors   map[string]string
	Form          any
	Data          any
}

type Renderer struct {
	templates map[string]*template.Template
	log       *logger.Logger
}

func NewRenderer(log *logger.Logger) (*Renderer, error) {
	templates := make(map[string]*template.Template, len(pages))

	for _, page := range pages {
		t, err := template.ParseFS(templateFS, "templates/layout.html", "templates/"+page)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", page, err)
		}
		templates[page] = t
	}

	return &Renderer{templates: templates, log: log}, nil
}

func (r *Renderer) Render(w http.ResponseWriter, status int, page string, data PageData) {
	t, ok := r.templates[page]
	if !ok {
		r.log.Errorf("unknown template: %s", page)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := t.ExecuteTemplate(w, "layout", data); err != nil {
		r.log.Errorf("failed to render template %s: %v", page, err)
	}
}

// Redirect issues a 303 so a POST is never replayed by the browser.
func Redirect(w http.ResponseWriter, r *http.Request, location string) {
	http.Redirect(w, r, location, http.StatusSeeOther)
}
