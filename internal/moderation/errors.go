package moderation

import "errors"

// ErrNotFound is returned by store implementations when a referenced row
// does not exist. The processor maps it to a validation failure where the
// reference came from caller input.
var ErrNotFound = errors.New("not found")

// AuthorizationError means the caller lacks the required role. Nothing is
// mutated when it is returned.
type AuthorizationError struct {
	Reason string
}

func (e *AuthorizationError) Error() string {
	return "permission denied: " + e.Reason
}

// ValidationError means the request was malformed. Nothing is mutated when
// it is returned.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid request: " + e.Reason
}

// InvariantViolation means a condition that should be structurally
// impossible was observed. It aborts the remaining mutations of the batch.
type InvariantViolation struct {
	Reason string
}

func (e *InvariantViolation) Error() string {
	return "invariant violation: " + e.Reason
}
