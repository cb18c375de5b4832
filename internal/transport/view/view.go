package view

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/frahmantamala/motors-dealership/internal/auth"
	"github.com/frahmantamala/motors-dealership/pkg/logger"
)

//go:embed templates
var templateFS embed.FS

const (
	messageNotFound    = "Sorry, we can't find that page."
	messageServerError = "Oh no! There was a crash. Maybe try a different route?"
)

// fallbackNav is shown when the classification list cannot be read.
var fallbackNav = []string{"Custom", "Sedan", "SUV", "Truck"}

type NavItem struct {
	Name string
	URL  string
}

// NavFunc lists the classifications for the menu. It is called on every render.
type NavFunc func(ctx context.Context) ([]NavItem, error)

// NoticeSource hands over the one-time notices pending for this request.
type NoticeSource interface {
	Consume(w http.ResponseWriter, r *http.Request) []string
}

// Page is what a handler passes to a template.
type Page struct {
	Title   string
	Notices []string
	Errors  map[string]string
	Form    map[string]string
	Data    any
}

type layoutData struct {
	Page
	Nav      []NavItem
	Identity *auth.Identity
	LoggedIn bool
	Path     string
	Year     int
	Status   int
	Message  string
}

type Renderer struct {
	pages   map[string]*template.Template
	nav     NavFunc
	notices NoticeSource
	logger  *slog.Logger
}

func New(nav NavFunc, notices NoticeSource, lg *slog.Logger) (*Renderer, error) {
	if lg == nil {
		lg = logger.LoggerWrapper()
	}
	pages, err := parsePages()
	if err != nil {
		return nil, err
	}
	return &Renderer{
		pages:   pages,
		nav:     nav,
		notices: notices,
		logger:  lg,
	}, nil
}

func parsePages() (map[string]*template.Template, error) {
	pages := make(map[string]*template.Template)
	err := fs.WalkDir(templateFS, "templates", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || path == "templates/layout.html" || !strings.HasSuffix(path, ".html") {
			return nil
		}
		name := strings.TrimSuffix(strings.TrimPrefix(path, "templates/"), ".html")
		tmpl, err := template.New("layout").Option("missingkey=zero").Funcs(funcs).ParseFS(templateFS, "templates/layout.html", path)
		if err != nil {
			return fmt.Errorf("parse template %s: %w", name, err)
		}
		pages[name] = tmpl
		return nil
	})
	if err != nil {
		return nil, err
	}
	return pages, nil
}

// Render writes page name with the shared layout.
func (v *Renderer) Render(w http.ResponseWriter, r *http.Request, status int, name string, page Page) {
	v.render(w, r, status, name, layoutData{Page: page})
}

// Error renders the generic error page. Internal error text never reaches the body.
func (v *Renderer) Error(w http.ResponseWriter, r *http.Request, status int) {
	data := layoutData{Status: status, Message: messageNotFound}
	data.Title = "404 Not Found"
	if status >= http.StatusInternalServerError {
		data.Title = "Server Error"
		data.Message = messageServerError
	}
	v.render(w, r, status, "errors/error", data)
}

func (v *Renderer) NotFound(w http.ResponseWriter, r *http.Request) {
	v.Error(w, r, http.StatusNotFound)
}

// ServerError logs err with the request and renders the 500 page.
func (v *Renderer) ServerError(w http.ResponseWriter, r *http.Request, err error) {
	logger.From(r.Context()).Error("request failed",
		"method", r.Method,
		"path", r.URL.Path,
		"error", err)
	v.Error(w, r, http.StatusInternalServerError)
}

func (v *Renderer) render(w http.ResponseWriter, r *http.Request, status int, name string, data layoutData) {
	tmpl, ok := v.pages[name]
	if !ok {
		v.logger.Error("unknown template", "name", name)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	state := auth.StateFromContext(r.Context())
	data.LoggedIn = state.IsAuthenticated()
	data.Identity = auth.IdentityFromContext(r.Context())
	data.Nav = v.navigation(r.Context())
	data.Path = r.URL.Path
	data.Year = time.Now().Year()

	var notices []string
	if state.Status == auth.Rejected {
		notices = append(notices, state.Notice())
	}
	if v.notices != nil {
		notices = append(notices, v.notices.Consume(w, r)...)
	}
	data.Notices = append(notices, data.Notices...)

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		v.logger.Error("template execution failed", "name", name, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		v.logger.Warn("failed to write response", "name", name, "error", err)
	}
}

func (v *Renderer) navigation(ctx context.Context) []NavItem {
	if v.nav != nil {
		items, err := v.nav(ctx)
		if err == nil {
			return items
		}
		logger.From(ctx).Error("failed to build navigation", "error", err)
	}
	items := make([]NavItem, 0, len(fallbackNav))
	for _, name := range fallbackNav {
		items = append(items, NavItem{Name: name, URL: "/inv/type/" + name})
	}
	return items
}
