package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// PostgreSQL error codes after which a transaction can simply be run again.
const (
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
)

// TxBeginner is the subset of *pgxpool.Pool the transactor needs.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

var _ TxBeginner = (*pgxpool.Pool)(nil)

// pgTransactor implements Transactor with bounded retries.
type pgTransactor struct {
	db         TxBeginner
	maxRetries int
	newBackOff func() backoff.BackOff
	logger     zerolog.Logger
}

// NewTransactor creates a Transactor that reruns a unit of work up to
// maxRetries times after serialization failures and deadlocks.
func NewTransactor(db TxBeginner, maxRetries int, logger zerolog.Logger) Transactor {
	return &pgTransactor{
		db:         db,
		maxRetries: maxRetries,
		newBackOff: defaultBackOff,
		logger:     logger.With().Str("component", "transactor").Logger(),
	}
}

func defaultBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 20 * time.Millisecond
	b.MaxInterval = 500 * time.Millisecond
	b.MaxElapsedTime = 0
	return b
}

// WithTransaction runs fn inside a transaction, retrying transient conflicts.
func (t *pgTransactor) WithTransaction(ctx context.Context, fn func(tx pgx.Tx) error) error {
	attempt := 0
	operation := func() error {
		attempt++
		err := t.runOnce(ctx, fn)
		if err == nil {
			return nil
		}
		if !IsRetryable(err) {
			return backoff.Permanent(err)
		}
		t.logger.Warn().
			Err(err).
			Int("attempt", attempt).
			Msg("transaction aborted by a conflict, retrying")
		return err
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(t.newBackOff(), uint64(t.maxRetries)),
		ctx,
	)
	return backoff.Retry(operation, policy)
}

func (t *pgTransactor) runOnce(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := t.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		// No-op once committed.
		_ = tx.Rollback(context.WithoutCancel(ctx))
	}()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// IsRetryable reports whether err is a serialization failure or deadlock.
func IsRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == pgSerializationFailure || pgErr.Code == pgDeadlockDetected
}
