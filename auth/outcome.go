package auth

// Role is the identity class a caller claims when presenting an access code.
type Role string

const (
	RoleStudent  Role = "student"
	RoleEducator Role = "educator"
)

// Decision is the top-level result of a verification attempt.
type Decision string

const (
	DecisionGranted           Decision = "granted"
	DecisionNeedsRegistration Decision = "needs_registration"
	DecisionRejected          Decision = "rejected"
)

// Outcome is the typed result of Verify. Exactly one constructor applies:
// Granted carries the authenticated role and identity, NeedsRegistration
// carries the (code, name) pair to hand to the registration flow, and
// Rejected carries the reason. NeedsRegistration is a redirect, not a
// rejection.
type Outcome struct {
	Decision Decision
	Role     Role   // set for Granted
	Identity string // student name, empty for educators
	Code     string // set for NeedsRegistration
	Name     string // set for NeedsRegistration
	Reason   error  // set for Rejected
}

func Granted(role Role, identity string) Outcome {
	return Outcome{Decision: DecisionGranted, Role: role, Identity: identity}
}

func NeedsRegistration(code, name string) Outcome {
	return Outcome{Decision: DecisionNeedsRegistration, Code: code, Name: name}
}

func Rejected(reason error) Outcome {
	return Outcome{Decision: DecisionRejected, Reason: reason}
}
