// models/errors.go - Typed error taxonomy shared by stores, services
// and handlers. Stores translate driver errors into these kinds so
// callers never have to string-match error messages.
package models

import "fmt"

// ValidationError reports malformed or insufficient input. Callers
// surface it to the user as a fixable message; it is never retried.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// DuplicateSubmissionError reports a second submission for a square
// the player already submitted. The unique index in the store is
// authoritative; racing creates resolve here, not via locking.
type DuplicateSubmissionError struct {
	UserID      uint
	SquareIndex int
}

func (e *DuplicateSubmissionError) Error() string {
	return fmt.Sprintf("square %d already has a submission", e.SquareIndex)
}

// ConflictError reports a taken group name or username.
type ConflictError struct {
	Resource string
	Name     string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s %q is already taken", e.Resource, e.Name)
}

// NotFoundError reports a lookup of a record that does not (or no
// longer does) exist, typically a stale id after a refresh.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return e.Resource + " not found"
}

// TransportError wraps an I/O failure from the database or blob store,
// including timeouts. The caller may retry; the engine does not.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
