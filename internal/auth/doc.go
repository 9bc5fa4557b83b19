// Package auth provides the authentication strategies for veilnote.
//
// Two strategies establish sessions:
//
//   - Local: username/password verified against bcrypt hashes in the store
//   - Federated: Google OAuth2 authorization-code handshake mapped onto a
//     local account by the provider's stable subject id
//
// Strategies are plain structs constructed once at startup and injected into
// the web handlers; there is no registry or string-keyed dispatch. Each
// strategy returns (*store.User, error) and the error taxonomy in errors.go
// is matched with errors.Is at the route boundary.
//
// The federated handshake carries a signed state parameter (state.go) so the
// callback can be tied to a handshake this process issued. The state is an
// HS256 JWT with a ten-minute expiry; verification failure surfaces as
// ErrProviderCallbackMismatch.
package auth
