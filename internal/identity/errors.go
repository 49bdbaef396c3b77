package identity

import "fmt"

// Reason is the closed set of normalized failure codes a backend may
// report. Raw backend errors are wrapped, never passed through.
type Reason string

const (
	ReasonUserNotFound    Reason = "user-not-found"
	ReasonWrongPassword   Reason = "wrong-password"
	ReasonInvalidEmail    Reason = "invalid-email"
	ReasonDisabled        Reason = "disabled"
	ReasonTooManyRequests Reason = "too-many-requests"
	ReasonEmailInUse      Reason = "email-already-in-use"
	ReasonWeakPassword    Reason = "weak-password"
	ReasonNotAllowed      Reason = "operation-not-allowed"
	ReasonNetwork         Reason = "network-error"
	ReasonUnknown         Reason = "unknown"
)

// messages are the one-line user-facing texts per reason. Backend
// error internals never reach the end user.
var messages = map[Reason]string{
	ReasonUserNotFound:    "No account exists for that email address.",
	ReasonWrongPassword:   "Incorrect email or password.",
	ReasonInvalidEmail:    "Please enter a valid email address.",
	ReasonDisabled:        "This account has been disabled.",
	ReasonTooManyRequests: "Too many attempts. Please try again later.",
	ReasonEmailInUse:      "An account with that email already exists.",
	ReasonWeakPassword:    "Password is too weak.",
	ReasonNotAllowed:      "This sign-in method is not enabled.",
	ReasonNetwork:         "Could not reach the authentication service.",
	ReasonUnknown:         "Something went wrong. Please try again.",
}

// Error is the tagged backend failure. Cause is retained for logs only.
type Error struct {
	Reason Reason
	cause  error
}

func NewError(reason Reason, cause error) *Error {
	return &Error{Reason: reason, cause: cause}
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("identity: %s: %v", e.Reason, e.cause)
	}
	return fmt.Sprintf("identity: %s", e.Reason)
}

func (e *Error) Unwrap() error { return e.cause }

// Message returns the user-facing one-liner for this failure.
func (e *Error) Message() string {
	if msg, ok := messages[e.Reason]; ok {
		return msg
	}
	return messages[ReasonUnknown]
}
