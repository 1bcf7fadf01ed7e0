package model

// Identity is the authenticated caller as resolved from the identity
// provider's session token. Presence is all the core logic consumes.
type Identity struct {
	UserID string
}
