// ABOUTME: Authentication error taxonomy shared by strategies and handlers
// ABOUTME: Sentinel errors matched with errors.Is at the route boundary

package auth

import "errors"

// Strategy errors. Handlers convert these to redirects with a user-visible
// message; they never crash the request-handling process.
var (
	// ErrInvalidCredentials covers both unknown usernames and wrong
	// passwords. The two cases are deliberately indistinguishable to the
	// caller so login responses cannot be used to enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrDuplicateUsername is returned by Register when the username is taken.
	ErrDuplicateUsername = errors.New("username already taken")

	// ErrInvalidUsername is returned by Register for malformed usernames.
	ErrInvalidUsername = errors.New("invalid username")

	// ErrPasswordTooShort is returned by Register for too-short passwords.
	ErrPasswordTooShort = errors.New("password too short")

	// ErrProviderExchangeFailed indicates the authorization-code exchange or
	// profile fetch with the federated provider failed.
	ErrProviderExchangeFailed = errors.New("provider exchange failed")

	// ErrProviderCallbackMismatch indicates the callback's state parameter
	// does not match what was issued when the handshake began.
	ErrProviderCallbackMismatch = errors.New("provider callback mismatch")

	// ErrStoreUnavailable indicates a credential-store I/O failure.
	ErrStoreUnavailable = errors.New("store unavailable")
)
