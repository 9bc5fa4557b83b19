// ABOUTME: Serialized session identity and request-context plumbing
// ABOUTME: Identity is the projection of a User stored in the session record

package session

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/veilnote/veilnote/internal/store"
)

// Identity is the subset of a User carried inside a session record and
// reconstituted on every request. It never includes the password hash.
type Identity struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

// Serialize projects an authenticated user onto a session identity.
func Serialize(user *store.User) Identity {
	return Identity{
		UserID:   user.ID,
		Username: user.Username,
	}
}

// Deserialize reconstitutes the identity from a session record. It returns
// the stored fields directly and never re-fetches from the credential store,
// so profile changes made against the store are not visible to an active
// session until the next login.
func Deserialize(rec *store.SessionRecord) (*Identity, error) {
	var id Identity
	if err := json.Unmarshal(rec.Identity, &id); err != nil {
		return nil, fmt.Errorf("decoding session identity: %w", err)
	}
	return &id, nil
}

// identityContextKey is the key type for storing an Identity in context.Context.
type identityContextKey struct{}

// WithIdentity returns a new context with the identity attached.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, id)
}

// FromContext retrieves the identity from the context, returning nil if the
// request is not authenticated.
func FromContext(ctx context.Context) *Identity {
	val := ctx.Value(identityContextKey{})
	if val == nil {
		return nil
	}
	id, ok := val.(*Identity)
	if !ok {
		return nil
	}
	return id
}

// IsAuthenticated reports whether the context carries a reconstituted identity.
func IsAuthenticated(ctx context.Context) bool {
	return FromContext(ctx) != nil
}
