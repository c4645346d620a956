package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"

	"github.com/stayextras/upsell-service/internal/models"
)

type ServiceRepository interface {
	Create(ctx context.Context, s *models.Service) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Service, error)
	ListByProperty(ctx context.Context, propertyID uuid.UUID) ([]*models.Service, error)
	UpdateIfVersion(ctx context.Context, s *models.Service, expected int64) (pgconn.CommandTag, error)
	UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Service) error) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type serviceRepo struct {
	*BaseVersionedRepo[*models.Service]
	db DB
}

func NewServiceRepository(db DB) ServiceRepository {
	r := &serviceRepo{db: db}
	selectStmt := baseSelectService() + " WHERE id=$1"
	r.BaseVersionedRepo = NewBaseRepo(db, selectStmt, r.scanService)
	return r
}

func (r *serviceRepo) Create(ctx context.Context, s *models.Service) error {
	_, err := r.db.Exec(ctx, `
        INSERT INTO services (
            id,property_id,host_id,name,description,price,icon
        ) VALUES (
            $1,$2,$3,$4,$5,$6,$7
        )
    `,
		s.ID, s.PropertyID, s.HostID, s.Name, s.Description, s.Price, s.Icon,
	)
	return err
}

func (r *serviceRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Service, error) {
	return r.BaseVersionedRepo.GetByID(ctx, id.String())
}

func (r *serviceRepo) ListByProperty(ctx context.Context, propertyID uuid.UUID) ([]*models.Service, error) {
	rows, err := r.db.Query(ctx, baseSelectService()+" WHERE property_id=$1 ORDER BY created_at", propertyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Service
	for rows.Next() {
		s, err := r.scanService(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *serviceRepo) UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Service) error) error {
	return r.BaseVersionedRepo.UpdateWithRetry(ctx, id.String(), mutate, r.UpdateIfVersion)
}

func (r *serviceRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM services WHERE id=$1`, id)
	return err
}

func (r *serviceRepo) UpdateIfVersion(ctx context.Context, s *models.Service, expected int64) (pgconn.CommandTag, error) {
	return r.db.Exec(ctx, `
        UPDATE services SET
            name=$1,description=$2,price=$3,icon=$4,
            row_version=row_version+1,
            updated_at=NOW()
        WHERE id=$5 AND row_version=$6
    `,
		s.Name, s.Description, s.Price, s.Icon,
		s.ID, expected,
	)
}

func baseSelectService() string {
	return `
    SELECT
        id,property_id,host_id,name,description,price,icon,
        row_version,created_at,updated_at
    FROM services`
}

func (r *serviceRepo) scanService(row pgx.Row) (*models.Service, error) {
	var s models.Service

	err := row.Scan(
		&s.ID, &s.PropertyID, &s.HostID, &s.Name, &s.Description, &s.Price, &s.Icon,
		&s.RowVersion, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return &s, nil
}
