package repositories

import (
	"context"
	"testing"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/stretchr/testify/require"

	"github.com/stayextras/upsell-service/internal/utils"
)

type versionedRow struct {
	id      string
	version int64
	note    string
}

func (r *versionedRow) GetID() string         { return r.id }
func (r *versionedRow) GetRowVersion() int64  { return r.version }
func (r *versionedRow) SetRowVersion(v int64) { r.version = v }

func TestWithRetrySucceedsFirstAttempt(t *testing.T) {
	row := &versionedRow{id: "row-1", version: 3}

	var writes int
	err := WithRetry(
		context.Background(), 3, "row-1",
		func(ctx context.Context, id string) (*versionedRow, error) {
			cp := *row
			return &cp, nil
		},
		func(ctx context.Context, e *versionedRow, expected int64) (pgconn.CommandTag, error) {
			writes++
			require.Equal(t, int64(3), expected)
			*row = *e
			return pgconn.CommandTag("UPDATE 1"), nil
		},
		func(e *versionedRow) error {
			e.note = "updated"
			return nil
		},
	)
	require.NoError(t, err)
	require.Equal(t, 1, writes)
	require.Equal(t, "updated", row.note)
}

func TestWithRetryReportsMissingRow(t *testing.T) {
	err := WithRetry(
		context.Background(), 3, "gone",
		func(ctx context.Context, id string) (*versionedRow, error) {
			return nil, nil
		},
		func(ctx context.Context, e *versionedRow, expected int64) (pgconn.CommandTag, error) {
			t.Fatal("no write expected for a missing row")
			return nil, nil
		},
		func(e *versionedRow) error { return nil },
	)
	require.ErrorIs(t, err, pgx.ErrNoRows)
}

func TestWithRetrySurfacesVersionConflict(t *testing.T) {
	var attempts int
	err := WithRetry(
		context.Background(), 3, "row-1",
		func(ctx context.Context, id string) (*versionedRow, error) {
			return &versionedRow{id: id, version: int64(attempts)}, nil
		},
		func(ctx context.Context, e *versionedRow, expected int64) (pgconn.CommandTag, error) {
			// Every conditional write loses the race.
			attempts++
			return pgconn.CommandTag("UPDATE 0"), nil
		},
		func(e *versionedRow) error { return nil },
	)
	require.ErrorIs(t, err, utils.ErrRowVersionConflict)
	require.Equal(t, 3, attempts)
}
