package handler

import (
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/alexedwards/scs/v2"

	"github.com/joestump/affilinks/internal/auth"
	"github.com/joestump/affilinks/internal/links"
	"github.com/joestump/affilinks/internal/logger"
	"github.com/joestump/affilinks/web"
)

const (
	themeLight = "aff-light"
	themeDark  = "aff-dark"
)

// BasePage carries layout-level data available to every template.
type BasePage struct {
	Theme   string // themeLight, themeDark, or "" (let the inline script decide)
	A11y    Accessibility
	Session auth.Session
	Flash   *Flash
}

// newBasePage reads the theme and accessibility cookies, the request's Gate
// and, when sm is non-nil, pops the pending flash message.
func newBasePage(r *http.Request, sm *scs.SessionManager) BasePage {
	b := BasePage{
		Theme:   themeFromRequest(r),
		A11y:    accessibilityFromRequest(r),
		Session: auth.Session{State: auth.Anonymous},
	}
	if g := auth.GateFromContext(r.Context()); g != nil {
		b.Session = g.Session()
	}
	if sm != nil {
		b.Flash = popFlash(sm, r)
	}
	return b
}

// themeFromRequest reads the "theme" cookie. Returns "" if absent or invalid,
// so the server omits data-theme and lets the anti-flash inline script handle it.
func themeFromRequest(r *http.Request) string {
	c, err := r.Cookie("theme")
	if err != nil {
		return ""
	}
	if c.Value == themeLight || c.Value == themeDark {
		return c.Value
	}
	return ""
}

// pageCache maps a render key (e.g. "home.html", "blog/post.html") to a
// compiled template set containing base.html + partials + that one page file.
// Each page gets its own set so {{define "content"}} blocks don't collide.
var (
	pageCache    map[string]*template.Template
	fragmentTmpl *template.Template
)

var funcs = template.FuncMap{
	"isDefault": links.IsSeedID,
	"fieldError": func(errs map[string]string, field string) string {
		return errs[field]
	},
}

func init() {
	partials, err := fs.Glob(web.TemplateFS, "templates/partials/*.html")
	if err != nil {
		panic("glob partials: " + err.Error())
	}

	// Standalone set for HTMX fragment rendering (partials only).
	fragmentTmpl = template.Must(template.New("").Funcs(funcs).ParseFS(web.TemplateFS, partials...))

	baseCount := map[string]int{}
	_ = fs.WalkDir(web.TemplateFS, "templates/pages", func(p string, d fs.DirEntry, e error) error {
		if e != nil || d.IsDir() || !strings.HasSuffix(p, ".html") {
			return e
		}
		baseCount[filepath.Base(p)]++
		return nil
	})

	pageCache = make(map[string]*template.Template)
	err = fs.WalkDir(web.TemplateFS, "templates/pages", func(p string, d fs.DirEntry, e error) error {
		if e != nil || d.IsDir() || !strings.HasSuffix(p, ".html") {
			return e
		}

		files := make([]string, 0, 2+len(partials))
		files = append(files, "templates/base.html")
		files = append(files, partials...)
		files = append(files, p)

		t, err := template.New("").Funcs(funcs).ParseFS(web.TemplateFS, files...)
		if err != nil {
			return fmt.Errorf("parse %s: %w", p, err)
		}

		rel, _ := strings.CutPrefix(p, "templates/pages/")
		pageCache[rel] = t

		// Alias under bare basename when it is unique across all page files.
		base := filepath.Base(p)
		if baseCount[base] == 1 {
			pageCache[base] = t
		}
		return nil
	})
	if err != nil {
		panic("build page cache: " + err.Error())
	}
}

// isHTMX returns true when the request was sent by HTMX.
func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// render executes a full-page template (base layout + named page).
func render(w http.ResponseWriter, tmpl string, data any) {
	renderStatus(w, http.StatusOK, tmpl, data)
}

func renderStatus(w http.ResponseWriter, status int, tmpl string, data any) {
	t, ok := pageCache[tmpl]
	if !ok {
		http.Error(w, "template not found: "+tmpl, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := t.ExecuteTemplate(w, "base", data); err != nil {
		logger.Errorw("render page", "template", tmpl, "error", err)
	}
}

// renderFragment executes a named template from the global partials set.
func renderFragment(w http.ResponseWriter, tmpl string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := fragmentTmpl.ExecuteTemplate(w, tmpl, data); err != nil {
		http.Error(w, "template error: "+err.Error(), http.StatusInternalServerError)
	}
}
