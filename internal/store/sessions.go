// ABOUTME: Session persistence methods for the SQLite store
// ABOUTME: Sessions map opaque tokens to serialized identity blobs with expiry

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// CreateSession creates a new session record. The token is the primary key,
// so two concurrent logins can never share a token.
func (s *SQLiteStore) CreateSession(ctx context.Context, rec *SessionRecord) error {
	query := `
		INSERT INTO sessions (token, user_id, identity, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		rec.Token,
		rec.UserID,
		rec.Identity,
		rec.CreatedAt.UTC().Format(time.RFC3339),
		rec.ExpiresAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting session: %w", err)
	}

	s.logger.Debug("created session", "user_id", rec.UserID)
	return nil
}

// GetSession retrieves a valid (non-expired) session record.
func (s *SQLiteStore) GetSession(ctx context.Context, token string) (*SessionRecord, error) {
	query := `
		SELECT token, user_id, identity, created_at, expires_at
		FROM sessions
		WHERE token = ? AND expires_at > ?
	`

	var rec SessionRecord
	var createdAtStr, expiresAtStr string
	now := time.Now().UTC().Format(time.RFC3339)

	err := s.db.QueryRowContext(ctx, query, token, now).Scan(
		&rec.Token,
		&rec.UserID,
		&rec.Identity,
		&createdAtStr,
		&expiresAtStr,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying session: %w", err)
	}

	rec.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}

	rec.ExpiresAt, err = time.Parse(time.RFC3339, expiresAtStr)
	if err != nil {
		return nil, fmt.Errorf("parsing expires_at: %w", err)
	}

	return &rec, nil
}

// DeleteSession deletes a session record.
func (s *SQLiteStore) DeleteSession(ctx context.Context, token string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE token = ?", token)
	if err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

// DeleteExpiredSessions removes all expired session records.
func (s *SQLiteStore) DeleteExpiredSessions(ctx context.Context) error {
	now := time.Now().UTC().Format(time.RFC3339)
	result, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE expires_at <= ?", now)
	if err != nil {
		return fmt.Errorf("deleting expired sessions: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected > 0 {
		s.logger.Debug("deleted expired sessions", "count", rowsAffected)
	}
	return nil
}
