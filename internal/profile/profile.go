// Package profile persists user-profile records alongside the
// identity backend. Writes are best-effort: a failure never rolls
// back the authentication that triggered them.
package profile

import (
	"context"
	"time"

	"mindweek/internal/db"
)

// Record is the profile payload written at registration.
type Record struct {
	Name      string
	Email     string
	CreatedAt time.Time
}

// Writer is the remote profile-storage collaborator.
type Writer interface {
	WriteProfile(ctx context.Context, userID string, rec Record) error
}

// DBWriter stores profiles in Postgres.
type DBWriter struct {
	db *db.DB
}

func NewDBWriter(db *db.DB) *DBWriter {
	return &DBWriter{db: db}
}

func (w *DBWriter) WriteProfile(
	ctx context.Context,
	userID string,
	rec Record,
) error {
	_, err := w.db.ExecContext(ctx, `
		INSERT INTO profiles (user_id, name, email, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE
		SET name = EXCLUDED.name, email = EXCLUDED.email
	`,
		userID,
		rec.Name,
		rec.Email,
		rec.CreatedAt,
	)
	return err
}

// Discard is used when no profile storage is configured.
type Discard struct{}

func (Discard) WriteProfile(context.Context, string, Record) error {
	return nil
}
