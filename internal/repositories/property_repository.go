package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"

	"github.com/stayextras/upsell-service/internal/models"
)

type PropertyRepository interface {
	Create(ctx context.Context, p *models.Property) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Property, error)
	GetByHospitableID(ctx context.Context, hostID uuid.UUID, hospitableID string) (*models.Property, error)
	ListByHost(ctx context.Context, hostID uuid.UUID) ([]*models.Property, error)
	UpdateIfVersion(ctx context.Context, p *models.Property, expected int64) (pgconn.CommandTag, error)
	UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Property) error) error
}

type propertyRepo struct {
	*BaseVersionedRepo[*models.Property]
	db DB
}

func NewPropertyRepository(db DB) PropertyRepository {
	r := &propertyRepo{db: db}
	selectStmt := baseSelectProperty() + " WHERE id=$1"
	r.BaseVersionedRepo = NewBaseRepo(db, selectStmt, r.scanProperty)
	return r
}

func (r *propertyRepo) Create(ctx context.Context, p *models.Property) error {
	_, err := r.db.Exec(ctx, `
        INSERT INTO properties (
            id,host_id,name,address,image_url,
            contact_phone,contact_guide_url,
            hospitable_id,hospitable_platform_id
        ) VALUES (
            $1,$2,$3,$4,$5,
            $6,$7,
            $8,$9
        )
    `,
		p.ID, p.HostID, p.Name, p.Address, p.ImageURL,
		p.ContactPhone, p.ContactGuideURL,
		p.HospitableID, p.HospitablePlatformID,
	)
	return err
}

func (r *propertyRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Property, error) {
	return r.BaseVersionedRepo.GetByID(ctx, id.String())
}

func (r *propertyRepo) GetByHospitableID(ctx context.Context, hostID uuid.UUID, hospitableID string) (*models.Property, error) {
	row := r.db.QueryRow(ctx, baseSelectProperty()+" WHERE host_id=$1 AND hospitable_id=$2 LIMIT 1", hostID, hospitableID)
	return r.scanProperty(row)
}

func (r *propertyRepo) ListByHost(ctx context.Context, hostID uuid.UUID) ([]*models.Property, error) {
	rows, err := r.db.Query(ctx, baseSelectProperty()+" WHERE host_id=$1 ORDER BY created_at", hostID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Property
	for rows.Next() {
		p, err := r.scanProperty(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *propertyRepo) UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Property) error) error {
	return r.BaseVersionedRepo.UpdateWithRetry(ctx, id.String(), mutate, r.UpdateIfVersion)
}

func (r *propertyRepo) UpdateIfVersion(ctx context.Context, p *models.Property, expected int64) (pgconn.CommandTag, error) {
	// host_id is immutable and never part of the SET list.
	return r.db.Exec(ctx, `
        UPDATE properties SET
            name=$1,address=$2,image_url=$3,
            contact_phone=$4,contact_guide_url=$5,
            hospitable_id=$6,hospitable_platform_id=$7,
            row_version=row_version+1,
            updated_at=NOW()
        WHERE id=$8 AND row_version=$9
    `,
		p.Name, p.Address, p.ImageURL,
		p.ContactPhone, p.ContactGuideURL,
		p.HospitableID, p.HospitablePlatformID,
		p.ID, expected,
	)
}

func baseSelectProperty() string {
	return `
    SELECT
        id,host_id,name,address,image_url,
        contact_phone,contact_guide_url,
        hospitable_id,hospitable_platform_id,
        row_version,created_at,updated_at
    FROM properties`
}

func (r *propertyRepo) scanProperty(row pgx.Row) (*models.Property, error) {
	var p models.Property

	err := row.Scan(
		&p.ID, &p.HostID, &p.Name, &p.Address, &p.ImageURL,
		&p.ContactPhone, &p.ContactGuideURL,
		&p.HospitableID, &p.HospitablePlatformID,
		&p.RowVersion, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return &p, nil
}
