// Package client implements the authenticated Orchard API client.
//
// Every outbound request carries the current bearer token read from an
// injected TokenSource. When a request comes back 401 the client coordinates
// a single in-flight refresh call shared by all concurrently failing
// requests, then replays each failed request exactly once with the refreshed
// token. A server-rejected refresh is terminal: the session is force-expired
// and all waiting requests fail with ErrSessionExpired. A refresh that merely
// could not reach the backend fails with ErrNetworkUnavailable and does not
// touch the session.
//
// Requests to the auth endpoints themselves (login, logout, refresh) are
// never refresh-retried.
package client
