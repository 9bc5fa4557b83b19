// ABOUTME: Store interfaces and data types for veilnote persistence
// ABOUTME: Defines User, SessionRecord and the UserStore/SessionStore interfaces

package store

import (
	"context"
	"errors"
	"time"
)

// ErrUserNotFound is returned when a requested user does not exist.
var ErrUserNotFound = errors.New("user not found")

// ErrUsernameExists is returned when trying to create a user with an existing username.
var ErrUsernameExists = errors.New("username already exists")

// ErrSessionNotFound is returned when a session doesn't exist or is expired.
var ErrSessionNotFound = errors.New("session not found")

// User represents an account. At least one of PasswordHash or GoogleID is
// always populated: local accounts carry a username and a bcrypt hash,
// federated accounts carry the provider's stable subject id.
type User struct {
	ID           string
	Username     string // empty for federated-only accounts
	PasswordHash string // bcrypt hash, empty for federated-only accounts
	GoogleID     string // empty for local accounts
	Secret       string // the user's shared secret, empty until submitted
	CreatedAt    time.Time
}

// SessionRecord maps an opaque client-held token to a serialized identity.
// Identity is an opaque JSON blob owned by the session package; the store
// never inspects it.
type SessionRecord struct {
	Token     string
	UserID    string
	Identity  []byte
	CreatedAt time.Time
	ExpiresAt time.Time
}

// UserStore defines the interface for user persistence.
type UserStore interface {
	CreateUser(ctx context.Context, user *User) error
	GetUser(ctx context.Context, id string) (*User, error)
	GetUserByUsername(ctx context.Context, username string) (*User, error)
	GetUserByGoogleID(ctx context.Context, googleID string) (*User, error)

	// FindOrCreateByGoogleID returns the user with the given federated id,
	// creating one if none exists. Safe under concurrent callbacks for the
	// same id: the unique index makes the insert race lose gracefully.
	FindOrCreateByGoogleID(ctx context.Context, googleID string) (*User, error)

	UpdateUserSecret(ctx context.Context, id, secret string) error
	ListUsersWithSecrets(ctx context.Context) ([]*User, error)
}

// SessionStore defines the interface for session persistence.
type SessionStore interface {
	CreateSession(ctx context.Context, rec *SessionRecord) error
	GetSession(ctx context.Context, token string) (*SessionRecord, error)
	DeleteSession(ctx context.Context, token string) error
	DeleteExpiredSessions(ctx context.Context) error
}

// Store combines user and session persistence.
type Store interface {
	UserStore
	SessionStore

	// Close releases any resources held by the store.
	Close() error
}
