// ABOUTME: User persistence methods for the SQLite store
// ABOUTME: Covers creation, lookup by username/federated id and secret updates

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CreateUser creates a new user.
func (s *SQLiteStore) CreateUser(ctx context.Context, user *User) error {
	query := `
		INSERT INTO users (id, username, password_hash, google_id, secret, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		user.ID,
		nullableString(user.Username),
		nullableString(user.PasswordHash),
		nullableString(user.GoogleID),
		user.Secret,
		user.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrUsernameExists
		}
		return fmt.Errorf("inserting user: %w", err)
	}

	s.logger.Info("created user", "id", user.ID, "username", user.Username)
	return nil
}

// GetUser retrieves a user by ID.
func (s *SQLiteStore) GetUser(ctx context.Context, id string) (*User, error) {
	return s.getUserWhere(ctx, "id = ?", id)
}

// GetUserByUsername retrieves a user by username.
func (s *SQLiteStore) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	return s.getUserWhere(ctx, "username = ?", username)
}

// GetUserByGoogleID retrieves a user by federated provider id.
func (s *SQLiteStore) GetUserByGoogleID(ctx context.Context, googleID string) (*User, error) {
	return s.getUserWhere(ctx, "google_id = ?", googleID)
}

// getUserWhere runs the common user select with the given predicate.
func (s *SQLiteStore) getUserWhere(ctx context.Context, where string, arg any) (*User, error) {
	query := `
		SELECT id, username, password_hash, google_id, secret, created_at
		FROM users
		WHERE ` + where

	var user User
	var username, passwordHash, googleID sql.NullString
	var createdAtStr string

	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID,
		&username,
		&passwordHash,
		&googleID,
		&user.Secret,
		&createdAtStr,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying user: %w", err)
	}

	user.Username = username.String
	user.PasswordHash = passwordHash.String
	user.GoogleID = googleID.String
	user.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}

	return &user, nil
}

// FindOrCreateByGoogleID returns the user with the given federated id,
// creating a federated-only account if none exists. If two callbacks race on
// the same id, the loser of the insert falls back to the winner's row.
func (s *SQLiteStore) FindOrCreateByGoogleID(ctx context.Context, googleID string) (*User, error) {
	user, err := s.GetUserByGoogleID(ctx, googleID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}

	user = &User{
		ID:        uuid.NewString(),
		GoogleID:  googleID,
		CreatedAt: time.Now(),
	}

	insertErr := s.CreateUser(ctx, user)
	if insertErr == nil {
		return user, nil
	}
	if errors.Is(insertErr, ErrUsernameExists) {
		// Lost the insert race on the google_id unique index
		return s.GetUserByGoogleID(ctx, googleID)
	}
	return nil, insertErr
}

// UpdateUserSecret sets the user's shared secret, replacing any previous one.
func (s *SQLiteStore) UpdateUserSecret(ctx context.Context, id, secret string) error {
	result, err := s.db.ExecContext(ctx, "UPDATE users SET secret = ? WHERE id = ?", secret, id)
	if err != nil {
		return fmt.Errorf("updating user secret: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrUserNotFound
	}

	s.logger.Debug("updated user secret", "id", id)
	return nil
}

// ListUsersWithSecrets returns all users that have submitted a secret.
func (s *SQLiteStore) ListUsersWithSecrets(ctx context.Context) ([]*User, error) {
	query := `
		SELECT id, username, password_hash, google_id, secret, created_at
		FROM users
		WHERE secret != ''
		ORDER BY created_at ASC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying users with secrets: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var users []*User
	for rows.Next() {
		var user User
		var username, passwordHash, googleID sql.NullString
		var createdAtStr string

		if err := rows.Scan(&user.ID, &username, &passwordHash, &googleID, &user.Secret, &createdAtStr); err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}

		user.Username = username.String
		user.PasswordHash = passwordHash.String
		user.GoogleID = googleID.String
		user.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr)
		if err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}
		users = append(users, &user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating users: %w", err)
	}

	return users, nil
}

// nullableString converts an empty string to a SQL NULL so that the
// nullable-unique columns (username, google_id) don't collide on ''.
func nullableString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
