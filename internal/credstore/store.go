// Package credstore persists the single bearer credential that proves an
// authenticated session. The slot is written only by session operations and
// read by the request gateway on every outbound call; an absent credential
// means the session is anonymous.
package credstore

// Store is the contract for the credential slot. At most one credential is
// held at a time.
type Store interface {
	// Token returns the stored credential, or "" when none is held.
	Token() (string, error)
	// Save replaces the stored credential.
	Save(token string) error
	// Clear removes the stored credential. Clearing an empty slot is not
	// an error.
	Clear() error
}
