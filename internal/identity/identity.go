// Package identity defines the contract every identity backend must
// implement. Backends verify credentials and manage account lifecycle;
// they return identity facts only and make no session decisions.
package identity

import "context"

// Identity is a normalized authenticated identity returned by a
// backend. DisplayName may be empty; callers derive a default.
type Identity struct {
	UserID      string
	Email       string
	DisplayName string
}

// Service is the identity collaborator contract.
type Service interface {
	// SignIn verifies credentials and returns the account identity.
	SignIn(ctx context.Context, email, password string) (*Identity, error)

	// SignUp creates an account and returns its identity.
	SignUp(ctx context.Context, email, password string) (*Identity, error)

	// SignOut invalidates the backend-side session, if any.
	SignOut(ctx context.Context) error

	// AuthStateChanges delivers asynchronous identity-state
	// notifications: a non-nil Identity when the backend refreshes
	// the signed-in identity, nil when it is no longer valid.
	// The returned func unsubscribes; no delivery happens after it
	// returns.
	AuthStateChanges() (<-chan *Identity, func())
}
