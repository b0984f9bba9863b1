// Package store holds the persistence primitives shared by the repositories:
// error translation and the retried optimistic read-modify-write transaction.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/DhavalSuthar-24/huddle/internal/common"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// ErrConflict reports that a compare-and-swap write lost against a concurrent writer.
// Atomic treats it as a signal to re-run the whole transaction body.
var ErrConflict = errors.New("write conflict")

// TxFunc is the body of an atomic read-modify-write. It must derive every write from
// what it reads through tx, because it is re-run from scratch after a conflict.
type TxFunc func(tx *gorm.DB) error

// Atomic runs fn in a transaction and re-runs it while it fails with ErrConflict.
// Once maxAttempts is exhausted the failure surfaces as common.ErrStoreUnavailable.
func Atomic(ctx context.Context, db *gorm.DB, maxAttempts int, fn TxFunc) error {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return fn(tx)
		})
		if isSerializationFailure(err) {
			err = fmt.Errorf("%w: %v", ErrConflict, err)
		}
		if !errors.Is(err, ErrConflict) {
			return Wrap(err)
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%w: %v", common.ErrStoreUnavailable, ctxErr)
		}
	}
	return fmt.Errorf("%w: gave up after %d conflicting attempts", common.ErrStoreUnavailable, maxAttempts)
}

// Postgres aborts one side of a deadlock (40P01) or a serialization failure (40001);
// both are safe to re-run from scratch.
const (
	pgDeadlockDetected     = "40P01"
	pgSerializationFailure = "40001"
)

func isSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == pgDeadlockDetected || pgErr.Code == pgSerializationFailure
}

// CompareAndSwap applies updates to the row with the given id only while its version
// column still equals version, bumping the version on success.
func CompareAndSwap(tx *gorm.DB, model interface{}, id string, version int64, updates map[string]interface{}) error {
	fields := make(map[string]interface{}, len(updates)+1)
	for k, v := range updates {
		fields[k] = v
	}
	fields["version"] = version + 1

	res := tx.Model(model).Where("id = ? AND version = ?", id, version).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrConflict
	}
	return nil
}

// Wrap translates gorm and driver errors into the common taxonomy. Errors that are
// already part of it pass through untouched.
func Wrap(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return common.ErrNotFound
	case isTaxonomy(err):
		return err
	default:
		return fmt.Errorf("%w: %v", common.ErrStoreUnavailable, err)
	}
}

func isTaxonomy(err error) bool {
	for _, target := range []error{
		common.ErrNotFound,
		common.ErrStoreUnavailable,
		common.ErrValidation,
		common.ErrInsufficientBalance,
		common.ErrEventFull,
		common.ErrEventExpired,
		common.ErrForbidden,
		ErrConflict,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
