package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/joestump/affilinks/internal/validation"
)

const preferenceMaxAge = 365 * 24 * 60 * 60

// Accessibility holds the display preferences applied as data attributes
// on the <html> element.
type Accessibility struct {
	FontSize       string // "small", "medium", "large"
	Contrast       string // "default", "high-contrast-light", "high-contrast-dark"
	HighlightLinks bool
}

func accessibilityFromRequest(r *http.Request) Accessibility {
	a := Accessibility{FontSize: "medium", Contrast: "default"}
	form := validation.AccessibilityForm{FontSize: a.FontSize, Contrast: a.Contrast}
	if c, err := r.Cookie("a11y_font_size"); err == nil {
		form.FontSize = c.Value
	}
	if c, err := r.Cookie("a11y_contrast"); err == nil {
		form.Contrast = c.Value
	}
	if c, err := r.Cookie("a11y_highlight_links"); err == nil {
		form.HighlightLinks, _ = strconv.ParseBool(c.Value)
	}
	if validation.Struct(form) != nil {
		return a
	}
	return Accessibility{FontSize: form.FontSize, Contrast: form.Contrast, HighlightLinks: form.HighlightLinks}
}

// ThemeHandler handles the theme toggle and accessibility endpoints.
type ThemeHandler struct{}

// NewThemeHandler creates a new ThemeHandler.
func NewThemeHandler() *ThemeHandler {
	return &ThemeHandler{}
}

// Toggle handles POST /theme. No auth required. Sets the theme cookie and
// returns HX-Trigger for the client-side swap.
func (h *ThemeHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	theme := r.FormValue("theme")
	if theme != themeLight && theme != themeDark {
		http.Error(w, "invalid theme", http.StatusBadRequest)
		return
	}

	// Non-HttpOnly so the anti-flash script can read it.
	setPreference(w, "theme", theme)

	trigger, _ := json.Marshal(map[string]any{
		"themeChanged": map[string]string{"theme": theme},
	})
	w.Header().Set("HX-Trigger", string(trigger))
	w.WriteHeader(http.StatusOK)
}

// Accessibility handles POST /accessibility.
func (h *ThemeHandler) Accessibility(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	form := validation.AccessibilityForm{
		FontSize: r.FormValue("font_size"),
		Contrast: r.FormValue("contrast"),
	}
	form.HighlightLinks, _ = strconv.ParseBool(r.FormValue("highlight_links"))
	if err := validation.Struct(form); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	setPreference(w, "a11y_font_size", form.FontSize)
	setPreference(w, "a11y_contrast", form.Contrast)
	setPreference(w, "a11y_highlight_links", strconv.FormatBool(form.HighlightLinks))

	if !isHTMX(r) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	trigger, _ := json.Marshal(map[string]any{
		"accessibilityChanged": map[string]any{
			"fontSize":       form.FontSize,
			"contrast":       form.Contrast,
			"highlightLinks": form.HighlightLinks,
		},
	})
	w.Header().Set("HX-Trigger", string(trigger))
	w.WriteHeader(http.StatusOK)
}

func setPreference(w http.ResponseWriter, name, value string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   preferenceMaxAge,
		SameSite: http.SameSiteLaxMode,
		HttpOnly: false,
	})
}
