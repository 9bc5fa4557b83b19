// ABOUTME: Local username/password authentication strategy
// ABOUTME: Verifies credentials against the user store and handles registration

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/veilnote/veilnote/internal/password"
	"github.com/veilnote/veilnote/internal/store"
)

// Username validation regex: alphanumeric + underscores, 3-32 characters
var usernameRegex = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]{2,31}$`)

// MinPasswordLength is the minimum accepted password length at registration.
const MinPasswordLength = 8

// Local authenticates users with a username and password held in the store.
type Local struct {
	users  store.UserStore
	logger *slog.Logger
}

// NewLocal creates a local credential strategy over the given user store.
func NewLocal(users store.UserStore) *Local {
	return &Local{
		users:  users,
		logger: slog.Default().With("component", "auth"),
	}
}

// Authenticate verifies a username/password pair and returns the matching
// user. Unknown usernames and wrong passwords both yield
// ErrInvalidCredentials; a dummy bcrypt comparison keeps the unknown-user
// path from returning measurably faster.
func (l *Local) Authenticate(ctx context.Context, username, plaintext string) (*store.User, error) {
	user, err := l.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			password.Verify(plaintext, password.DummyHash)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	if user.PasswordHash == "" {
		// Federated-only account; password login is not enabled for it.
		password.Verify(plaintext, password.DummyHash)
		return nil, ErrInvalidCredentials
	}

	if !password.Verify(plaintext, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// Register creates a new local account. The caller is expected to establish
// a session immediately afterwards: registration implies login.
func (l *Local) Register(ctx context.Context, username, plaintext string) (*store.User, error) {
	if !usernameRegex.MatchString(username) {
		return nil, ErrInvalidUsername
	}
	if len(plaintext) < MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	hash, err := password.Hash(plaintext)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &store.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: hash,
		CreatedAt:    time.Now(),
	}

	if err := l.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrUsernameExists) {
			return nil, ErrDuplicateUsername
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	l.logger.Info("user registered", "username", username)
	return user, nil
}
