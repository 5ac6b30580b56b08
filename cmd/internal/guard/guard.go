// Package guard decides what a navigation target may do with the current
// session state: render, wait for initialization, redirect to login, or deny.
//
// The one rule that matters: an uninitialized session is never treated as
// anonymous. Until the startup check completes the guard says Wait, so no
// user gets bounced to the login screen by a race.
package guard

import "orchard/cmd/internal/auth/session"

// Decision is the guard's verdict for a navigation attempt.
type Decision int

const (
	// Wait blocks rendering until the session is initialized or a login/check
	// operation finishes.
	Wait Decision = iota

	// Render allows the requested view.
	Render

	// Redirect sends the visitor to the login entry point, carrying the
	// originally requested path as the return target.
	Redirect

	// Deny means authenticated but lacking a required role: render the
	// forbidden state, do not bounce to login.
	Deny
)

func (d Decision) String() string {
	switch d {
	case Wait:
		return "wait"
	case Render:
		return "render"
	case Redirect:
		return "redirect"
	case Deny:
		return "deny"
	}
	return "unknown"
}

// Result is a Decision plus redirect routing data.
type Result struct {
	Decision Decision

	// Target is the login entry point (Redirect only).
	Target string

	// ReturnTo is the originally requested path to resume after login
	// (Redirect only).
	ReturnTo string
}

// Policy holds the routes the guard redirects to.
type Policy struct {
	// LoginPath is the login entry point (default "/login").
	LoginPath string
}

// DefaultPolicy returns the standard admin routing policy.
func DefaultPolicy() Policy {
	return Policy{LoginPath: "/login"}
}

// Evaluate decides whether the session may visit requestedPath. When
// requiredRoles are given, the user must carry at least one of them.
func (p Policy) Evaluate(snap session.Snapshot, requestedPath string, requiredRoles ...string) Result {
	if !snap.Initialized || snap.Loading {
		return Result{Decision: Wait}
	}

	if !snap.Authenticated {
		return Result{
			Decision: Redirect,
			Target:   p.loginPath(),
			ReturnTo: requestedPath,
		}
	}

	if len(requiredRoles) > 0 {
		allowed := false
		for _, role := range requiredRoles {
			if snap.User.HasRole(role) {
				allowed = true
				break
			}
		}
		if !allowed {
			return Result{Decision: Deny}
		}
	}

	return Result{Decision: Render}
}

func (p Policy) loginPath() string {
	if p.LoginPath == "" {
		return DefaultPolicy().LoginPath
	}
	return p.LoginPath
}
