package domain

import (
	"context"
	"io"
	"time"
)

// TokenStoreError represents an error originating from the token store.
type TokenStoreError string

func (e TokenStoreError) Error() string {
	return string(e)
}

// ErrTokenNotFound is returned when a token is absent or already consumed.
const ErrTokenNotFound = TokenStoreError("token store: token not found")

// TokenStore is the port for single-use, expiring tokens (password reset).
// Implementations must make Consume remove the token so it cannot be
// replayed.
type TokenStore interface {
	// Save stores token under key with the given TTL, replacing any
	// previous token for the key.
	Save(ctx context.Context, key, token string, ttl time.Duration) error

	// Consume verifies that the stored token for key equals token and
	// deletes it. Returns ErrTokenNotFound when missing, expired, or
	// mismatched.
	Consume(ctx context.Context, key, token string) error

	// Ping checks the health of the backing store.
	Ping(ctx context.Context) error
}

// EmailSender is the port for outbound transactional mail.
type EmailSender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// FileStorage is the port for blob storage (avatar images). Save returns
// the storage path to persist on the profile; URL turns such a path back
// into a client-reachable location.
type FileStorage interface {
	Save(ctx context.Context, name string, contents io.Reader) (path string, err error)
	URL(path string) string
	Remove(ctx context.Context, path string) error
}

// TransactionManager runs fn inside a single database transaction. The
// repositories participating in the transaction pick it up from the
// context.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
