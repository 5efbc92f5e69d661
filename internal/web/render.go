// Package web renders the site and admin pages from embedded templates and
// serves the static assets.
package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strings"
	"time"

	"pycsa-web/internal/auth"
	"pycsa-web/internal/blog"
	"pycsa-web/internal/domain"

	"go.uber.org/zap"
)

//go:embed templates static
var files embed.FS

// Status is a transient message for the current render, like the result of
// a comment or contact submission.
type Status struct {
	Kind    string // "success" or "error"
	Message string
}

// Success and Failure build a Status.
func Success(msg string) *Status { return &Status{Kind: "success", Message: msg} }
func Failure(msg string) *Status { return &Status{Kind: "error", Message: msg} }

// View is the data every page template receives.
type View struct {
	Title   string
	Nav     string
	User    *auth.Identity
	Flashes []auth.Flash
	Status  *Status
	Data    any
}

// Renderer executes the page templates. Each page is parsed together with
// its layout so pages can redefine the "content" block.
type Renderer struct {
	pages  map[string]*template.Template
	logger *zap.Logger
}

var funcs = template.FuncMap{
	"timestamp": domain.LongTimestamp,
	"cardImage": blog.CardImage,
	"money":     func(v float64) string { return fmt.Sprintf("$%.2f", v) },
	"join":      strings.Join,
	"provinces": func() []string { return domain.Provinces },
	"year":      func() int { return time.Now().Year() },
	"add":       func(a, b int) int { return a + b },
	"contains": func(list []string, s string) bool {
		for _, v := range list {
			if v == s {
				return true
			}
		}
		return false
	},
}

// NewRenderer parses every page under templates/. Pages in templates/admin
// use the admin layout.
func NewRenderer(logger *zap.Logger) (*Renderer, error) {
	r := &Renderer{pages: make(map[string]*template.Template), logger: logger}

	groups := []struct {
		dir    string
		layout string
	}{
		{"templates", "templates/layout.html"},
		{"templates/admin", "templates/admin/layout.html"},
	}

	for _, g := range groups {
		entries, err := fs.ReadDir(files, g.dir)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", g.dir, err)
		}
		for _, e := range entries {
			file := path.Join(g.dir, e.Name())
			if e.IsDir() || file == g.layout || !strings.HasSuffix(e.Name(), ".html") {
				continue
			}

			t, err := template.New(path.Base(g.layout)).Funcs(funcs).ParseFS(files, g.layout, "templates/partials/*.html", file)
			if err != nil {
				return nil, fmt.Errorf("failed to parse %s: %w", file, err)
			}

			name := strings.TrimSuffix(strings.TrimPrefix(file, "templates/"), ".html")
			r.pages[name] = t
		}
	}

	return r, nil
}

// Render writes page with status. The page is executed into a buffer first
// so a template error never sends half a page.
func (r *Renderer) Render(w http.ResponseWriter, status int, page string, view *View) {
	t, ok := r.pages[page]
	if !ok {
		r.logger.Error("Unknown page template", zap.String("page", page))
		http.Error(w, "Ocurrió un error inesperado.", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, view); err != nil {
		r.logger.Error("Failed to render page", zap.String("page", page), zap.Error(err))
		http.Error(w, "Ocurrió un error inesperado.", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// Has reports whether page exists.
func (r *Renderer) Has(page string) bool {
	_, ok := r.pages[page]
	return ok
}

// Static serves the embedded assets under /static/.
func Static() http.Handler {
	sub, err := fs.Sub(files, "static")
	if err != nil {
		panic(err)
	}
	return http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
}
