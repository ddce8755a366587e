package session

import "github.com/careplanhq/portal-client/profile"

// State is the session-level lifecycle state. The machine cycles
// anonymous → authenticating → authenticated → anonymous for the lifetime of
// the process; there is no terminal state.
type State string

const (
	StateAnonymous      State = "anonymous"      // No token held
	StateAuthenticating State = "authenticating" // Token held, profile fetch not yet resolved
	StateAuthenticated  State = "authenticated"  // Token and profile both held
)

// Snapshot is an immutable view of the session at a point in time.
type Snapshot struct {
	Token string
	User  *profile.Profile
}

// Authenticated reports whether a token is held. Both authenticating and
// authenticated count: consumers gating on the session must tolerate a
// transiently nil User.
func (s Snapshot) Authenticated() bool {
	return s.Token != ""
}

func (s Snapshot) State() State {
	switch {
	case s.Token == "":
		return StateAnonymous
	case s.User == nil:
		return StateAuthenticating
	default:
		return StateAuthenticated
	}
}
