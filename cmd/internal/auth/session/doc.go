// Package session is the single source of truth for the client's
// authentication state.
//
// It provides an observable Store holding the current user, access token, and
// the authenticated/initialized/loading flags, and a Service implementing the
// session operations: login, logout, and the memoized startup check.
//
// A safe subset of the session ({access token, refresh token, user record})
// is mirrored into durable storage through the credstore port; the three keys
// always commit or vanish together. The Store also implements the request
// client's TokenSource, which is how a successful background refresh lands
// back in session state.
package session
