package repositories

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"

	"github.com/stayextras/upsell-service/internal/models"
)

type OrderRepository interface {
	Create(ctx context.Context, o *models.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	GetByStripeSessionID(ctx context.Context, sessionID string) (*models.Order, error)
	GetByStripePaymentIntentID(ctx context.Context, intentID string) (*models.Order, error)
	ListByHost(ctx context.Context, hostID uuid.UUID) ([]*models.Order, error)
	ListPendingCreatedBefore(ctx context.Context, cutoff time.Time) ([]*models.Order, error)
	UpdateIfVersion(ctx context.Context, o *models.Order, expected int64) (pgconn.CommandTag, error)
	UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Order) error) error
}

type orderRepo struct {
	*BaseVersionedRepo[*models.Order]
	db DB
}

func NewOrderRepository(db DB) OrderRepository {
	r := &orderRepo{db: db}
	selectStmt := baseSelectOrder() + " WHERE id=$1"
	r.BaseVersionedRepo = NewBaseRepo(db, selectStmt, r.scanOrder)
	return r
}

func (r *orderRepo) Create(ctx context.Context, o *models.Order) error {
	lines, err := json.Marshal(o.Services)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `
        INSERT INTO orders (
            id,host_id,property_id,
            services,total_amount_cents,status,
            guest_name,guest_email,arrival_date,
            stripe_session_id,stripe_payment_intent_id
        ) VALUES (
            $1,$2,$3,
            $4,$5,$6,
            $7,$8,$9,
            $10,$11
        )
    `,
		o.ID, o.HostID, o.PropertyID,
		lines, o.TotalAmountCents, o.Status,
		o.GuestName, o.GuestEmail, o.ArrivalDate,
		o.StripeSessionID, o.StripePaymentIntentID,
	)
	return err
}

func (r *orderRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return r.BaseVersionedRepo.GetByID(ctx, id.String())
}

func (r *orderRepo) GetByStripeSessionID(ctx context.Context, sessionID string) (*models.Order, error) {
	row := r.db.QueryRow(ctx, baseSelectOrder()+" WHERE stripe_session_id=$1 LIMIT 1", sessionID)
	return r.scanOrder(row)
}

func (r *orderRepo) GetByStripePaymentIntentID(ctx context.Context, intentID string) (*models.Order, error) {
	row := r.db.QueryRow(ctx, baseSelectOrder()+" WHERE stripe_payment_intent_id=$1 LIMIT 1", intentID)
	return r.scanOrder(row)
}

func (r *orderRepo) ListByHost(ctx context.Context, hostID uuid.UUID) ([]*models.Order, error) {
	rows, err := r.db.Query(ctx, baseSelectOrder()+" WHERE host_id=$1 ORDER BY created_at DESC", hostID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.collect(rows)
}

func (r *orderRepo) ListPendingCreatedBefore(ctx context.Context, cutoff time.Time) ([]*models.Order, error) {
	rows, err := r.db.Query(ctx, baseSelectOrder()+" WHERE status=$1 AND created_at < $2 ORDER BY created_at",
		models.OrderStatusPending, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.collect(rows)
}

func (r *orderRepo) collect(rows pgx.Rows) ([]*models.Order, error) {
	var out []*models.Order
	for rows.Next() {
		o, err := r.scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *orderRepo) UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Order) error) error {
	return r.BaseVersionedRepo.UpdateWithRetry(ctx, id.String(), mutate, r.UpdateIfVersion)
}

func (r *orderRepo) UpdateIfVersion(ctx context.Context, o *models.Order, expected int64) (pgconn.CommandTag, error) {
	// Line snapshots and the total are immutable after creation; only
	// status and Stripe references may change.
	return r.db.Exec(ctx, `
        UPDATE orders SET
            status=$1,
            stripe_session_id=$2,stripe_payment_intent_id=$3,
            row_version=row_version+1,
            updated_at=NOW()
        WHERE id=$4 AND row_version=$5
    `,
		o.Status, o.StripeSessionID, o.StripePaymentIntentID,
		o.ID, expected,
	)
}

func baseSelectOrder() string {
	return `
    SELECT
        id,host_id,property_id,
        services,total_amount_cents,status,
        guest_name,guest_email,arrival_date,
        stripe_session_id,stripe_payment_intent_id,
        row_version,created_at,updated_at
    FROM orders`
}

func (r *orderRepo) scanOrder(row pgx.Row) (*models.Order, error) {
	var o models.Order
	var status string
	var lines []byte

	err := row.Scan(
		&o.ID, &o.HostID, &o.PropertyID,
		&lines, &o.TotalAmountCents, &status,
		&o.GuestName, &o.GuestEmail, &o.ArrivalDate,
		&o.StripeSessionID, &o.StripePaymentIntentID,
		&o.RowVersion, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	o.Status = models.OrderStatusType(status)

	if len(lines) > 0 {
		if err := json.Unmarshal(lines, &o.Services); err != nil {
			return nil, err
		}
	}

	return &o, nil
}
