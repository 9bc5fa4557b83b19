// ABOUTME: Tests for the SQLite user and session stores
// ABOUTME: Uses temporary databases, covers uniqueness races and expiry

package store

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)

	t.Cleanup(func() {
		store.Close()
	})

	return store
}

func testUser(username string) *User {
	return &User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: "$2a$10$notarealhashnotarealhashnotarealhashnotarealha",
		CreatedAt:    time.Now().UTC().Truncate(time.Second),
	}
}

func TestStore_CreateUser(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	user := testUser("alice")
	err := store.CreateUser(ctx, user)
	require.NoError(t, err)

	retrieved, err := store.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", retrieved.Username)
	assert.Equal(t, user.PasswordHash, retrieved.PasswordHash)
	assert.Empty(t, retrieved.GoogleID)
}

func TestStore_CreateUser_DuplicateUsername(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.CreateUser(ctx, testUser("alice")))

	err := store.CreateUser(ctx, testUser("alice"))
	assert.ErrorIs(t, err, ErrUsernameExists)

	// The existing record is untouched
	existing, err := store.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", existing.Username)
}

func TestStore_GetUser_NotFound(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.GetUser(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = store.GetUserByUsername(context.Background(), "nobody")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestStore_EmptyUsernamesDoNotCollide(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	// Two federated-only users have no username; the nullable-unique
	// column must accept both.
	u1 := &User{ID: uuid.NewString(), GoogleID: "g-1", CreatedAt: time.Now()}
	u2 := &User{ID: uuid.NewString(), GoogleID: "g-2", CreatedAt: time.Now()}

	require.NoError(t, store.CreateUser(ctx, u1))
	require.NoError(t, store.CreateUser(ctx, u2))
}

func TestStore_FindOrCreateByGoogleID(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	user, err := store.FindOrCreateByGoogleID(ctx, "g-123")
	require.NoError(t, err)
	assert.Equal(t, "g-123", user.GoogleID)
	assert.Empty(t, user.PasswordHash)
	assert.Empty(t, user.Username)

	// Second callback with the same provider id reuses the same account
	again, err := store.FindOrCreateByGoogleID(ctx, "g-123")
	require.NoError(t, err)
	assert.Equal(t, user.ID, again.ID)
}

func TestStore_FindOrCreateByGoogleID_Concurrent(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	const workers = 8
	ids := make(chan string, workers)
	errs := make(chan error, workers)

	for i := 0; i < workers; i++ {
		go func() {
			user, err := store.FindOrCreateByGoogleID(ctx, "g-race")
			if err != nil {
				errs <- err
				return
			}
			ids <- user.ID
		}()
	}

	var first string
	for i := 0; i < workers; i++ {
		select {
		case err := <-errs:
			t.Fatalf("FindOrCreateByGoogleID failed: %v", err)
		case id := <-ids:
			if first == "" {
				first = id
			}
			assert.Equal(t, first, id, "concurrent callbacks must converge on one user")
		}
	}
}

func TestStore_UpdateUserSecret(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	user := testUser("alice")
	require.NoError(t, store.CreateUser(ctx, user))

	require.NoError(t, store.UpdateUserSecret(ctx, user.ID, "I fold my pizza"))

	retrieved, err := store.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "I fold my pizza", retrieved.Secret)

	// Submitting again replaces the previous secret
	require.NoError(t, store.UpdateUserSecret(ctx, user.ID, "new secret"))
	retrieved, err = store.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "new secret", retrieved.Secret)
}

func TestStore_UpdateUserSecret_NotFound(t *testing.T) {
	store := setupTestStore(t)

	err := store.UpdateUserSecret(context.Background(), "missing", "s")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestStore_ListUsersWithSecrets(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		user := testUser(fmt.Sprintf("user%d", i))
		require.NoError(t, store.CreateUser(ctx, user))
		if i < 2 {
			require.NoError(t, store.UpdateUserSecret(ctx, user.ID, fmt.Sprintf("secret-%d", i)))
		}
	}

	users, err := store.ListUsersWithSecrets(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2, "users without a secret must be excluded")

	secrets := []string{users[0].Secret, users[1].Secret}
	assert.Contains(t, secrets, "secret-0")
	assert.Contains(t, secrets, "secret-1")
}

func TestStore_SessionLifecycle(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	user := testUser("alice")
	require.NoError(t, store.CreateUser(ctx, user))

	rec := &SessionRecord{
		Token:     "tok-123",
		UserID:    user.ID,
		Identity:  []byte(`{"user_id":"` + user.ID + `","username":"alice"}`),
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(time.Hour),
	}
	require.NoError(t, store.CreateSession(ctx, rec))

	retrieved, err := store.GetSession(ctx, "tok-123")
	require.NoError(t, err)
	assert.Equal(t, user.ID, retrieved.UserID)
	assert.Equal(t, rec.Identity, retrieved.Identity)

	require.NoError(t, store.DeleteSession(ctx, "tok-123"))

	_, err = store.GetSession(ctx, "tok-123")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestStore_GetSession_Expired(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	user := testUser("alice")
	require.NoError(t, store.CreateUser(ctx, user))

	rec := &SessionRecord{
		Token:     "tok-expired",
		UserID:    user.ID,
		Identity:  []byte(`{}`),
		CreatedAt: time.Now().Add(-2 * time.Hour),
		ExpiresAt: time.Now().Add(-time.Hour),
	}
	require.NoError(t, store.CreateSession(ctx, rec))

	_, err := store.GetSession(ctx, "tok-expired")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestStore_DeleteExpiredSessions(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	user := testUser("alice")
	require.NoError(t, store.CreateUser(ctx, user))

	live := &SessionRecord{
		Token:     "tok-live",
		UserID:    user.ID,
		Identity:  []byte(`{}`),
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(time.Hour),
	}
	dead := &SessionRecord{
		Token:     "tok-dead",
		UserID:    user.ID,
		Identity:  []byte(`{}`),
		CreatedAt: time.Now().Add(-2 * time.Hour),
		ExpiresAt: time.Now().Add(-time.Hour),
	}
	require.NoError(t, store.CreateSession(ctx, live))
	require.NoError(t, store.CreateSession(ctx, dead))

	require.NoError(t, store.DeleteExpiredSessions(ctx))

	_, err := store.GetSession(ctx, "tok-live")
	assert.NoError(t, err)
}
