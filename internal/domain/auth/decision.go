package auth

// DenyReason classifies why an authorization check failed.
type DenyReason string

const (
	// DenyUnauthenticated means no identity was presented.
	DenyUnauthenticated DenyReason = "unauthenticated"
	// DenyInsufficientRole means the identity exists but lacks an allowed role.
	DenyInsufficientRole DenyReason = "insufficient_role"
)

// Decision is the outcome of one authorization check: either Granted with the
// principal, or Denied with a reason and the path the caller must be sent to.
type Decision struct {
	granted    bool
	principal  Principal
	reason     DenyReason
	redirectTo string
}

// Granted returns a decision allowing p to proceed.
func Granted(p Principal) Decision {
	return Decision{granted: true, principal: p}
}

// Denied returns a decision that stops processing and sends the caller to redirectTo.
func Denied(reason DenyReason, redirectTo string) Decision {
	return Decision{reason: reason, redirectTo: redirectTo}
}

// IsGranted reports whether the check passed.
func (d Decision) IsGranted() bool { return d.granted }

// Principal returns the granted principal. ok is false for denied decisions.
func (d Decision) Principal() (Principal, bool) {
	if !d.granted {
		return Principal{}, false
	}
	return d.principal, true
}

// Reason is empty for granted decisions.
func (d Decision) Reason() DenyReason { return d.reason }

// RedirectTo is empty for granted decisions.
func (d Decision) RedirectTo() string { return d.redirectTo }
