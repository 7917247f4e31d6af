package auth

import "github.com/shopkit/auth-service/users"

// Status tags the outcome of a resolution attempt.
type Status int

const (
	// StatusRejected - no credential source yielded a principal.
	StatusRejected Status = iota
	// StatusAuthenticated - a credential verified cleanly.
	StatusAuthenticated
	// StatusFallback - the session id did not match any stored session but
	// the user record exists. Degraded trust: callers on write paths must
	// decide whether to accept it.
	StatusFallback
)

// Principal is the resolved identity and role for a request.
type Principal struct {
	UserID string     `json:"user_id"`
	Email  string     `json:"email"`
	Role   users.Role `json:"role"`
}

// Result is the tagged outcome of resolving a request's credentials.
type Result struct {
	Status    Status
	Principal Principal
	// Reason carries the rejection sentinel when Status is StatusRejected.
	Reason error
}

func Authenticated(p Principal) Result {
	return Result{Status: StatusAuthenticated, Principal: p}
}

func Fallback(p Principal) Result {
	return Result{Status: StatusFallback, Principal: p}
}

func Rejected(reason error) Result {
	return Result{Status: StatusRejected, Reason: reason}
}

// Resolved reports whether a principal was produced, at either trust level.
func (r Result) Resolved() bool {
	return r.Status != StatusRejected
}

// RequireRole layers role enforcement on top of a resolution result. An
// unresolved result keeps its rejection reason; a resolved principal with the
// wrong role gets ErrRoleForbidden, never a silent escalation.
func RequireRole(r Result, role users.Role) error {
	if !r.Resolved() {
		if r.Reason != nil {
			return r.Reason
		}
		return ErrNoCredentials
	}
	if r.Principal.Role != role {
		return ErrRoleForbidden
	}
	return nil
}
