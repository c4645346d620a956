package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"

	"github.com/stayextras/upsell-service/internal/utils"
)

// EntityWithVersion is what the optimistic-locking loop needs from a row:
// identity, the version it was read at, and comparability so the zero
// value (nil for pointer entities) marks a missing row.
type EntityWithVersion interface {
	comparable
	GetID() string
	GetRowVersion() int64
	SetRowVersion(int64)
}

// UpdateIfVersionFunc writes the entity only while the stored row_version
// still equals expectedVersion; the command tag tells the loop whether
// the conditional write landed.
type UpdateIfVersionFunc[T EntityWithVersion] func(
	ctx context.Context,
	entity T,
	expectedVersion int64,
) (pgconn.CommandTag, error)

type GetByIDFunc[T EntityWithVersion] func(
	ctx context.Context,
	id string,
) (T, error)

// WithRetry re-reads, mutates, and conditionally writes the row until the
// write lands or maxRetries races are lost. Losing every attempt surfaces
// ErrRowVersionConflict.
func WithRetry[T EntityWithVersion](
	ctx context.Context,
	maxRetries int,
	id string,
	getByID GetByIDFunc[T],
	updateIfVersion UpdateIfVersionFunc[T],
	mutate func(T) error,
) error {
	for attempt := 0; attempt < maxRetries; attempt++ {
		current, err := getByID(ctx, id)
		if err != nil {
			return err
		}

		var zero T
		if current == zero {
			return pgx.ErrNoRows
		}

		oldVersion := current.GetRowVersion()

		if err := mutate(current); err != nil {
			return err
		}

		tag, err := updateIfVersion(ctx, current, oldVersion)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 1 {
			return nil
		}
		// a concurrent writer bumped row_version; re-read and try again
	}
	return fmt.Errorf("updating %q: %w", id, utils.ErrRowVersionConflict)
}
