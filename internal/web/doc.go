// Package web wires the veilnote HTTP surface: the public pages, the local
// and federated login flows, and the protected secret submission form.
//
// Route policy is declared at registration time. The session gate wraps the
// whole mux and only establishes identity; RequireAuth and RequireGuest make
// the per-route decisions. Handlers turn strategy errors into redirects with
// a user-visible message in the query string; they never render errors
// inline.
package web
