package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"github.com/stayextras/upsell-service/internal/models"
)

type HospitableConnectionRepository interface {
	Upsert(ctx context.Context, c *models.HospitableConnection) error
	GetByHost(ctx context.Context, hostID uuid.UUID) (*models.HospitableConnection, error)
	DeleteByHost(ctx context.Context, hostID uuid.UUID) error
}

type hospitableConnectionRepo struct {
	db DB
}

func NewHospitableConnectionRepository(db DB) HospitableConnectionRepository {
	return &hospitableConnectionRepo{db: db}
}

// Upsert replaces the host's grant; one row per host is enforced by the
// unique host_id constraint.
func (r *hospitableConnectionRepo) Upsert(ctx context.Context, c *models.HospitableConnection) error {
	_, err := r.db.Exec(ctx, `
        INSERT INTO hospitable_connections (
            id,host_id,customer_id,access_token,refresh_token,expires_at
        ) VALUES (
            $1,$2,$3,$4,$5,$6
        )
        ON CONFLICT (host_id) DO UPDATE SET
            customer_id=EXCLUDED.customer_id,
            access_token=EXCLUDED.access_token,
            refresh_token=EXCLUDED.refresh_token,
            expires_at=EXCLUDED.expires_at,
            row_version=hospitable_connections.row_version+1,
            updated_at=NOW()
    `,
		c.ID, c.HostID, c.CustomerID, c.AccessToken, c.RefreshToken, c.ExpiresAt,
	)
	return err
}

func (r *hospitableConnectionRepo) GetByHost(ctx context.Context, hostID uuid.UUID) (*models.HospitableConnection, error) {
	row := r.db.QueryRow(ctx, `
    SELECT
        id,host_id,customer_id,access_token,refresh_token,expires_at,
        row_version,created_at,updated_at
    FROM hospitable_connections WHERE host_id=$1`, hostID)

	var c models.HospitableConnection
	err := row.Scan(
		&c.ID, &c.HostID, &c.CustomerID, &c.AccessToken, &c.RefreshToken, &c.ExpiresAt,
		&c.RowVersion, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *hospitableConnectionRepo) DeleteByHost(ctx context.Context, hostID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM hospitable_connections WHERE host_id=$1`, hostID)
	return err
}
