// Package store provides persistent storage for veilnote using SQLite.
//
// # Architecture
//
// Two narrow interfaces cover the persistence surface:
//
//   - UserStore: account records (local credentials and federated ids)
//   - SessionStore: opaque token to serialized-identity records
//
// SQLiteStore implements both in a single struct. The session table holds the
// identity as an opaque blob; the store never parses it — serialization is
// owned by the session package.
//
// # SQLite Configuration
//
// The store uses SQLite with WAL mode for concurrent reads:
//
//	PRAGMA journal_mode=WAL;
//	PRAGMA foreign_keys=ON;
//
// Unique indexes on users.username and users.google_id serialize concurrent
// registrations and federated first-logins per key.
//
// # Error Handling
//
// Common errors:
//
//   - ErrUserNotFound: Requested user does not exist
//   - ErrUsernameExists: Username (or federated id) already taken
//   - ErrSessionNotFound: Session missing or expired
//
// All methods accept context.Context for cancellation support.
//
// Use NewSQLiteStore(":memory:") for tests with real SQLite.
package store
