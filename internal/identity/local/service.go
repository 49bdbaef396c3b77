// Package local implements the identity contract against Postgres
// with bcrypt-hashed credentials.
package local

import (
	"context"
	"database/sql"
	"errors"
	"net"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"mindweek/internal/db"
	"mindweek/internal/identity"
)

const uniqueViolation = "23505"

type Service struct {
	identity.Broadcaster

	db       *db.DB
	throttle *throttle
}

func NewService(db *db.DB) *Service {
	return &Service{
		db:       db,
		throttle: newThrottle(),
	}
}

func (s *Service) SignIn(
	ctx context.Context,
	email string,
	password string,
) (*identity.Identity, error) {

	if !identity.ValidEmail(email) {
		return nil, identity.NewError(identity.ReasonInvalidEmail, nil)
	}

	if s.throttle.blocked(email) {
		return nil, identity.NewError(identity.ReasonTooManyRequests, nil)
	}

	var (
		userID       uuid.UUID
		displayName  string
		disabled     bool
		passwordHash string
	)

	err := s.db.QueryRowContext(ctx, `
		SELECT u.id, u.display_name, u.disabled, c.password_hash
		FROM users u
		JOIN credentials c ON c.user_id = u.id
		WHERE LOWER(u.email) = LOWER($1)
	`, email).Scan(&userID, &displayName, &disabled, &passwordHash)

	if err == sql.ErrNoRows {
		// Hide whether the account exists.
		s.throttle.fail(email)
		return nil, identity.NewError(identity.ReasonWrongPassword, nil)
	}
	if err != nil {
		return nil, mapStorageError(err)
	}

	if disabled {
		return nil, identity.NewError(identity.ReasonDisabled, nil)
	}

	if err := VerifyPassword(passwordHash, password); err != nil {
		s.throttle.fail(email)
		return nil, identity.NewError(identity.ReasonWrongPassword, nil)
	}

	s.throttle.reset(email)

	return &identity.Identity{
		UserID:      userID.String(),
		Email:       email,
		DisplayName: displayName,
	}, nil
}

func (s *Service) SignUp(
	ctx context.Context,
	email string,
	password string,
) (*identity.Identity, error) {

	if !identity.ValidEmail(email) {
		return nil, identity.NewError(identity.ReasonInvalidEmail, nil)
	}

	hash, version, err := HashPassword(password)
	if err != nil {
		var iderr *identity.Error
		if errors.As(err, &iderr) {
			return nil, iderr
		}
		return nil, identity.NewError(identity.ReasonUnknown, err)
	}

	var userID uuid.UUID
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO users (email)
		VALUES ($1)
		RETURNING id
	`, email).Scan(&userID)

	if err != nil {
		return nil, mapStorageError(err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO credentials (user_id, password_hash, hash_version)
		VALUES ($1, $2, $3)
	`, userID, hash, version)

	if err != nil {
		return nil, mapStorageError(err)
	}

	return &identity.Identity{
		UserID: userID.String(),
		Email:  email,
	}, nil
}

// SignOut succeeds unconditionally: the local backend holds no
// server-side session state of its own.
func (s *Service) SignOut(ctx context.Context) error {
	return nil
}

// Disable marks the account disabled and notifies subscribers that
// the signed-in identity is no longer valid.
func (s *Service) Disable(ctx context.Context, email string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE users SET disabled = true, updated_at = NOW()
		WHERE LOWER(email) = LOWER($1)
	`, email)
	if err != nil {
		return mapStorageError(err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return identity.NewError(identity.ReasonUserNotFound, nil)
	}

	s.Publish(nil)
	return nil
}

// mapStorageError folds driver errors into the closed reason set.
func mapStorageError(err error) *identity.Error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
		return identity.NewError(identity.ReasonEmailInUse, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return identity.NewError(identity.ReasonNetwork, err)
	}

	return identity.NewError(identity.ReasonUnknown, err)
}
