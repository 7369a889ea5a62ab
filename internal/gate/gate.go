// Package gate holds the access predicate guarding protected views. A false
// result means "send the user to login", never an error.
package gate

import "github.com/nfrund/voyage/internal/session"

// Allow reports whether protected content may be shown for the given
// session snapshot. It is a pure function of the snapshot.
func Allow(s session.Snapshot) bool {
	return s.State == session.StateAuthenticated
}
