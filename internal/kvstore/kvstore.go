package kvstore

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when the key has no value.
var ErrNotFound = errors.New("kvstore: key not found")

// Store is the persistent key-value collaborator both state stores
// mirror into. Implementations must treat each call independently;
// there are no transactions across keys.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string) error
	Remove(ctx context.Context, key string) error
}
