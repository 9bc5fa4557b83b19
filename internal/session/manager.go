// ABOUTME: Session manager and per-request gate middleware
// ABOUTME: Owns the session cookie, token allocation, and login/logout transitions

package session

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/veilnote/veilnote/internal/store"
)

const (
	// CookieName is the name of the session cookie.
	CookieName = "veilnote_session"

	// Duration is how long sessions last.
	Duration = 7 * 24 * time.Hour
)

// Manager establishes, resolves, and destroys sessions. It is constructed
// once at startup and injected wherever session transitions happen.
type Manager struct {
	sessions store.SessionStore
	logger   *slog.Logger
}

// NewManager creates a session manager over the given session store.
func NewManager(sessions store.SessionStore) *Manager {
	return &Manager{
		sessions: sessions,
		logger:   slog.Default().With("component", "session"),
	}
}

// Login allocates a fresh session for the user, persists the serialized
// identity, and sets the session cookie. This is the only NoSession to
// ValidSession transition.
func (m *Manager) Login(w http.ResponseWriter, r *http.Request, user *store.User) error {
	token, err := generateToken(32)
	if err != nil {
		return fmt.Errorf("generating session token: %w", err)
	}

	identity, err := json.Marshal(Serialize(user))
	if err != nil {
		return fmt.Errorf("encoding session identity: %w", err)
	}

	rec := &store.SessionRecord{
		Token:     token,
		UserID:    user.ID,
		Identity:  identity,
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(Duration),
	}

	if err := m.sessions.CreateSession(r.Context(), rec); err != nil {
		return fmt.Errorf("storing session: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		Expires:  rec.ExpiresAt,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})

	m.logger.Debug("session established", "user_id", user.ID)
	return nil
}

// Logout destroys the session record and clears the cookie. The record is
// deleted, not just marked: the token is unusable immediately.
func (m *Manager) Logout(w http.ResponseWriter, r *http.Request) error {
	var err error
	if cookie, cerr := r.Cookie(CookieName); cerr == nil {
		err = m.sessions.DeleteSession(r.Context(), cookie.Value)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})

	return err
}

// Gate is the per-request middleware. It resolves the session cookie to a
// live record, deserializes the identity into the request context, and
// passes through. Requests without a resolvable session continue
// unauthenticated; route policy is applied by RequireAuth/RequireGuest.
func (m *Manager) Gate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(CookieName)
		if err != nil || cookie.Value == "" {
			next.ServeHTTP(w, r)
			return
		}

		rec, err := m.sessions.GetSession(r.Context(), cookie.Value)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		identity, err := Deserialize(rec)
		if err != nil {
			m.logger.Warn("dropping undecodable session", "error", err)
			_ = m.sessions.DeleteSession(r.Context(), cookie.Value)
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
	})
}

// RequireAuth wraps a handler to require a valid session. Unauthenticated
// requests are redirected to the login page with a message; the gate never
// emits a raw protocol-level rejection.
func RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !IsAuthenticated(r.Context()) {
			http.Redirect(w, r, "/login?message="+url.QueryEscape("Please log in first"), http.StatusSeeOther)
			return
		}
		next(w, r)
	}
}

// RequireGuest wraps a handler to require no session, redirecting
// authenticated users to the secrets listing.
func RequireGuest(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if IsAuthenticated(r.Context()) {
			http.Redirect(w, r, "/secrets", http.StatusSeeOther)
			return
		}
		next(w, r)
	}
}

// generateToken generates a cryptographically secure random token.
func generateToken(bytes int) (string, error) {
	b := make([]byte, bytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
