package auth

import "fmt"

// ValidationError reports malformed caller input. It is returned
// synchronously, before any collaborator call is made.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("auth: invalid %s: %s", e.Field, e.Message)
}

// UserMessage returns the user-facing one-liner for this rejection.
func (e *ValidationError) UserMessage() string {
	if e.Field == "password" && e.Message != "must not be empty" {
		return "Password must be at least 6 characters."
	}
	return "Please fill in all fields."
}

type StateErrorKind string

const (
	StateErrInitializing         StateErrorKind = "initializing"
	StateErrAlreadyInitialized   StateErrorKind = "already-initialized"
	StateErrInFlight             StateErrorKind = "operation-in-flight"
	StateErrAlreadyAuthenticated StateErrorKind = "already-authenticated"
)

// StateError reports an operation invoked in a state that does not
// permit it.
type StateError struct {
	Kind StateErrorKind
}

func (e *StateError) Error() string {
	return fmt.Sprintf("auth: operation rejected: %s", e.Kind)
}

// Message returns the user-facing one-liner for this rejection.
func (e *StateError) Message() string {
	switch e.Kind {
	case StateErrInitializing:
		return "Still starting up. Please try again in a moment."
	case StateErrInFlight:
		return "Another request is already in progress."
	case StateErrAlreadyAuthenticated:
		return "You are already signed in."
	default:
		return "That action is not possible right now."
	}
}

// Warning is a non-fatal failure surfaced on the store's warning
// channel: the operation's primary effect completed regardless.
type Warning struct {
	Op  string
	Err error
}
