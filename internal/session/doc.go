// Package session implements server-side sessions bound to an opaque cookie.
//
// A session is a store record mapping a random token to a serialized
// Identity — the projection of a User that handlers see. The Manager owns
// the full lifecycle:
//
//	NoSession    --Login(user)-->  ValidSession
//	ValidSession --Logout()----->  NoSession
//
// Gate runs on every inbound request: it resolves the cookie to a live
// record, reconstitutes the identity into the request context, and leaves
// route policy to the RequireAuth/RequireGuest wrappers. The gate itself
// never rejects; unauthenticated requests simply continue without an
// identity.
//
// Deserialization reads the stored record only. An active session does not
// observe store-side profile changes until the user logs in again.
package session
