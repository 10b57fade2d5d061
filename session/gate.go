package session

import "civicpulse-be/models"

// Decision is the outcome of an admission check for a role-gated view.
type Decision int

const (
	// Pending means the session is still loading; render a wait indicator,
	// do not redirect.
	Pending Decision = iota
	// RedirectToAuth means no authenticated identity or profile is present.
	RedirectToAuth
	// RedirectToUnauthorized means the profile's role is not in the allow
	// list.
	RedirectToUnauthorized
	// Allow admits the session into the view.
	Allow
)

func (d Decision) String() string {
	switch d {
	case Pending:
		return "pending"
	case RedirectToAuth:
		return "redirect_to_auth"
	case RedirectToUnauthorized:
		return "redirect_to_unauthorized"
	case Allow:
		return "allow"
	}
	return "unknown"
}

// Admit decides whether the session may enter a view restricted to
// allowedRoles. An empty allow list defaults to the full role set, i.e. the
// view merely requires authentication. Authorization denial is a navigation
// outcome, not an error.
func Admit(state State, allowedRoles ...models.UserRole) Decision {
	if state.Loading {
		return Pending
	}
	if state.Identity == nil || state.Profile == nil {
		return RedirectToAuth
	}
	if len(allowedRoles) == 0 {
		allowedRoles = models.AllRoles
	}
	for _, role := range allowedRoles {
		if state.Profile.Role == role {
			return Allow
		}
	}
	return RedirectToUnauthorized
}
