// ABOUTME: Template rendering functions for the veilnote pages
// ABOUTME: Loads templates from embedded filesystem and renders them

package web

import (
	"html/template"
	"net/http"

	"github.com/veilnote/veilnote/internal/session"
)

// Template data types
type pageData struct {
	Title         string
	Message       string
	Authenticated bool
}

// secretsData carries every field base.html touches; the base template
// evaluates .Message for all page types.
type secretsData struct {
	Title         string
	Message       string
	Authenticated bool
	Secrets       []string
}

// renderHome renders the landing page
func (h *Handlers) renderHome(w http.ResponseWriter, r *http.Request) {
	tmpl := template.Must(template.ParseFS(templateFS, "templates/base.html", "templates/home.html"))

	data := pageData{
		Title:         "Veilnote",
		Authenticated: session.IsAuthenticated(r.Context()),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.Execute(w, data); err != nil {
		h.logger.Error("failed to render home page", "error", err)
	}
}

// renderLogin renders the login page
func (h *Handlers) renderLogin(w http.ResponseWriter, r *http.Request, message string) {
	tmpl := template.Must(template.ParseFS(templateFS, "templates/base.html", "templates/login.html"))

	data := pageData{
		Title:   "Log In",
		Message: message,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.Execute(w, data); err != nil {
		h.logger.Error("failed to render login page", "error", err)
	}
}

// renderRegister renders the registration page
func (h *Handlers) renderRegister(w http.ResponseWriter, r *http.Request, message string) {
	tmpl := template.Must(template.ParseFS(templateFS, "templates/base.html", "templates/register.html"))

	data := pageData{
		Title:   "Register",
		Message: message,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.Execute(w, data); err != nil {
		h.logger.Error("failed to render register page", "error", err)
	}
}

// renderSecrets renders the anonymous secrets listing
func (h *Handlers) renderSecrets(w http.ResponseWriter, r *http.Request, secrets []string) {
	tmpl := template.Must(template.ParseFS(templateFS, "templates/base.html", "templates/secrets.html"))

	data := secretsData{
		Title:         "Secrets",
		Authenticated: session.IsAuthenticated(r.Context()),
		Secrets:       secrets,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.Execute(w, data); err != nil {
		h.logger.Error("failed to render secrets page", "error", err)
	}
}

// renderSubmit renders the secret submission form
func (h *Handlers) renderSubmit(w http.ResponseWriter, r *http.Request) {
	tmpl := template.Must(template.ParseFS(templateFS, "templates/base.html", "templates/submit.html"))

	data := pageData{
		Title:         "Submit a Secret",
		Authenticated: true,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.Execute(w, data); err != nil {
		h.logger.Error("failed to render submit page", "error", err)
	}
}
