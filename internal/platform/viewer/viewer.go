// Copyright (c) 2026 Toile. All rights reserved.
// Author: contact@toile.app

/*
Package viewer defines the resolved identity of the current API caller.

Every request is classified exactly once (by the middleware chain) into one of
three kinds — Admin, Anonymous, or Authenticated — and the resulting [Context]
value is handed to the core components as a plain parameter. Core logic never
re-derives identity from transport details (headers, host names, cookies).

Kinds:

  - Admin: the request's declared host is a loopback address and no session
    is attached. Full, unredacted access.
  - Anonymous: no session. Pseudonymous, fully redacted access.
  - Authenticated: a session ties the caller to one Person node and carries a
    visibility level that widens what the graph projection reveals.
*/
package viewer

// Kind discriminates the three caller identities.
type Kind int

const (
	// KindAnonymous is a caller with no session and a non-loopback host.
	KindAnonymous Kind = iota

	// KindAdmin is a sessionless caller whose declared host is loopback.
	KindAdmin

	// KindAuthenticated is a caller with a valid session.
	KindAuthenticated
)

// Context is the resolved identity and privilege of the current caller.
//
// The zero value is the Anonymous viewer.
type Context struct {
	Kind Kind

	// PersonNodeID is the 6-digit node id of the Person this viewer is tied
	// to. Only meaningful for KindAuthenticated.
	PersonNodeID string

	// Level is the visibility tier (>= 1). Only meaningful for KindAuthenticated.
	Level int

	// Email identifies the account behind the session. Only meaningful for
	// KindAuthenticated; used to scope proposal listings to their author.
	Email string
}

// Admin returns the unredacted Admin viewer.
func Admin() Context {
	return Context{Kind: KindAdmin}
}

// Anonymous returns the fully redacted Anonymous viewer.
func Anonymous() Context {
	return Context{Kind: KindAnonymous}
}

// Authenticated returns a viewer tied to one Person node.
//
// A level below 1 is clamped to 1, matching the account default.
func Authenticated(personNodeID string, level int, email string) Context {
	if level < 1 {
		level = 1
	}
	return Context{
		Kind:         KindAuthenticated,
		PersonNodeID: personNodeID,
		Level:        level,
		Email:        email,
	}
}

// IsAdmin reports whether the viewer has unrestricted access.
func (c Context) IsAdmin() bool { return c.Kind == KindAdmin }

// IsAuthenticated reports whether the viewer is tied to an account session.
func (c Context) IsAuthenticated() bool { return c.Kind == KindAuthenticated }
