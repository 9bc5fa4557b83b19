// ABOUTME: HTTP route handlers for veilnote login, registration and secrets
// ABOUTME: Converts strategy errors into redirects with user-visible messages

package web

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/veilnote/veilnote/internal/auth"
	"github.com/veilnote/veilnote/internal/session"
	"github.com/veilnote/veilnote/internal/store"
)

// Handlers holds the injected dependencies for the route set. Strategies and
// the session manager are constructed at startup and passed in; nothing is
// resolved through globals.
type Handlers struct {
	local     *auth.Local
	federated *auth.Federated // nil when federated login is not configured
	sessions  *session.Manager
	users     store.UserStore
	logger    *slog.Logger
}

// New creates the handler set. federated may be nil, in which case the
// /auth/google routes are not registered.
func New(local *auth.Local, federated *auth.Federated, sessions *session.Manager, users store.UserStore) *Handlers {
	return &Handlers{
		local:     local,
		federated: federated,
		sessions:  sessions,
		users:     users,
		logger:    slog.Default().With("component", "web"),
	}
}

// Routes builds the full route set wrapped in the session gate. Guard policy
// is bound per route at registration time: login and register pages are
// guest-only, submit is protected, everything else is open.
func (h *Handlers) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", h.handleHome)

	mux.HandleFunc("GET /login", session.RequireGuest(h.handleLoginPage))
	mux.HandleFunc("POST /login", h.handleLogin)
	mux.HandleFunc("POST /logout", h.handleLogout)

	mux.HandleFunc("GET /register", session.RequireGuest(h.handleRegisterPage))
	mux.HandleFunc("POST /register", h.handleRegister)

	mux.HandleFunc("GET /secrets", h.handleSecrets)
	mux.HandleFunc("GET /submit", session.RequireAuth(h.handleSubmitPage))
	mux.HandleFunc("POST /submit", session.RequireAuth(h.handleSubmit))

	if h.federated != nil {
		mux.HandleFunc("GET /auth/google", h.handleGoogleLogin)
		mux.HandleFunc("GET /auth/google/callback", h.handleGoogleCallback)
	}

	return h.sessions.Gate(mux)
}

// redirectWithMessage redirects to path with a user-visible message.
func redirectWithMessage(w http.ResponseWriter, r *http.Request, path, message string) {
	http.Redirect(w, r, path+"?message="+url.QueryEscape(message), http.StatusSeeOther)
}

// handleHome renders the landing page.
func (h *Handlers) handleHome(w http.ResponseWriter, r *http.Request) {
	h.renderHome(w, r)
}

// handleLoginPage renders the login form.
func (h *Handlers) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	h.renderLogin(w, r, r.URL.Query().Get("message"))
}

// handleLogin verifies local credentials and establishes a session.
func (h *Handlers) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		redirectWithMessage(w, r, "/login", "Invalid form data")
		return
	}

	username := r.FormValue("username")
	plaintext := r.FormValue("password")

	user, err := h.local.Authenticate(r.Context(), username, plaintext)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			redirectWithMessage(w, r, "/login", "Invalid username or password")
			return
		}
		h.logger.Error("login failed", "error", err)
		redirectWithMessage(w, r, "/login", "An error occurred")
		return
	}

	if err := h.sessions.Login(w, r, user); err != nil {
		h.logger.Error("failed to create session", "error", err)
		redirectWithMessage(w, r, "/login", "An error occurred")
		return
	}

	h.logger.Info("login successful", "username", username)
	http.Redirect(w, r, "/secrets", http.StatusSeeOther)
}

// handleLogout destroys the session. Errors are logged; the client is
// redirected to the login page either way.
func (h *Handlers) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Logout(w, r); err != nil {
		h.logger.Error("logout failed", "error", err)
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// handleRegisterPage renders the registration form.
func (h *Handlers) handleRegisterPage(w http.ResponseWriter, r *http.Request) {
	h.renderRegister(w, r, r.URL.Query().Get("message"))
}

// handleRegister creates a local account and logs the new user in.
func (h *Handlers) handleRegister(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		redirectWithMessage(w, r, "/register", "Invalid form data")
		return
	}

	username := r.FormValue("username")
	plaintext := r.FormValue("password")

	user, err := h.local.Register(r.Context(), username, plaintext)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrDuplicateUsername):
			redirectWithMessage(w, r, "/register", "Username already taken")
		case errors.Is(err, auth.ErrInvalidUsername):
			redirectWithMessage(w, r, "/register", "Username must start with a letter and contain only letters, numbers, and underscores")
		case errors.Is(err, auth.ErrPasswordTooShort):
			redirectWithMessage(w, r, "/register", "Password must be at least 8 characters")
		default:
			h.logger.Error("registration failed", "error", err)
			redirectWithMessage(w, r, "/register", "An error occurred")
		}
		return
	}

	// Registration implies login
	if err := h.sessions.Login(w, r, user); err != nil {
		h.logger.Error("failed to create session", "error", err)
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	http.Redirect(w, r, "/secrets", http.StatusSeeOther)
}

// handleGoogleLogin redirects to the provider's authorization endpoint.
func (h *Handlers) handleGoogleLogin(w http.ResponseWriter, r *http.Request) {
	authURL, err := h.federated.Begin()
	if err != nil {
		h.logger.Error("failed to begin federated login", "error", err)
		redirectWithMessage(w, r, "/login", "An error occurred")
		return
	}
	http.Redirect(w, r, authURL, http.StatusSeeOther)
}

// handleGoogleCallback completes the federated handshake and establishes a
// session. All handshake failures funnel back to the login page.
func (h *Handlers) handleGoogleCallback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")

	user, err := h.federated.Complete(r.Context(), code, state)
	if err != nil {
		h.logger.Error("federated login failed", "error", err)
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	if err := h.sessions.Login(w, r, user); err != nil {
		h.logger.Error("failed to create session", "error", err)
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	http.Redirect(w, r, "/secrets", http.StatusSeeOther)
}

// handleSecrets lists every submitted secret, anonymously, across all users.
// The page is open: visitors see the secrets without logging in.
func (h *Handlers) handleSecrets(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.ListUsersWithSecrets(r.Context())
	if err != nil {
		h.logger.Error("failed to list secrets", "error", err)
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	secrets := make([]string, 0, len(users))
	for _, u := range users {
		secrets = append(secrets, u.Secret)
	}

	h.renderSecrets(w, r, secrets)
}

// handleSubmitPage renders the secret submission form.
func (h *Handlers) handleSubmitPage(w http.ResponseWriter, r *http.Request) {
	h.renderSubmit(w, r)
}

// handleSubmit stores the submitted secret on the current user's record,
// replacing any previous one.
func (h *Handlers) handleSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, "/submit", http.StatusSeeOther)
		return
	}

	secret := r.FormValue("secret")
	if secret == "" {
		http.Redirect(w, r, "/submit", http.StatusSeeOther)
		return
	}

	identity := session.FromContext(r.Context())
	if err := h.users.UpdateUserSecret(r.Context(), identity.UserID, secret); err != nil {
		h.logger.Error("failed to save secret", "error", err, "user_id", identity.UserID)
		http.Redirect(w, r, "/submit", http.StatusSeeOther)
		return
	}

	http.Redirect(w, r, "/secrets", http.StatusSeeOther)
}
