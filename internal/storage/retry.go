package storage

import (
	"context"
	"errors"
	"time"

	"github.com/DhavalSuthar-24/fantasy/internal/apperror"
)

const retryBackoff = 15 * time.Millisecond

// Retry runs fn until it succeeds, fails with something other than
// ErrConflict, or has been attempted attempts times. Exhausted retries are
// reported as a transient failure.
func Retry(ctx context.Context, attempts int, fn func() error) error {
	if attempts < 1 {
		attempts = 1
	}
	var err error
	for i := 0; i < attempts; i++ {
		err = fn()
		if err == nil || !errors.Is(err, ErrConflict) {
			return err
		}
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(i+1) * retryBackoff):
		}
	}
	return apperror.Transient(apperror.CodeRetriesExhausted, err)
}

// InTx runs fn in a transaction on store, retrying on conflict.
func InTx(ctx context.Context, store Store, attempts int, fn func(tx Store) error) error {
	return Retry(ctx, attempts, func() error {
		return store.WithTransaction(ctx, fn)
	})
}
