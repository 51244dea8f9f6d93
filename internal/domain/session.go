package domain

// SessionClaims are the identity fields cached in the session cookie. They
// are claims only: every privileged request re-validates them against the
// users table before acting on them.
type SessionClaims struct {
	UserCode      string
	DisplayName   string
	IsAdmin       bool
	SelectedStore string
}

// Capability is the privilege level a route requires.
type Capability int

const (
	CapabilityUser Capability = iota
	CapabilityAdmin
)

// ActingUser is a validated identity, derived from the user row on every
// privileged request rather than trusted from the cookie.
type ActingUser struct {
	Code          string
	DisplayName   string
	IsAdmin       bool
	SelectedStore string
}

// ClaimantName is the display name stamped on a claim. Falls back to the
// user code for accounts without a display name.
func (a *ActingUser) ClaimantName() string {
	if a.DisplayName != "" {
		return a.DisplayName
	}
	return a.Code
}
