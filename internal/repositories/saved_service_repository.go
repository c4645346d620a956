package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"github.com/stayextras/upsell-service/internal/models"
)

// SavedServiceRepository is append/delete only; templates are replaced,
// not edited, so no versioned update path exists.
type SavedServiceRepository interface {
	Create(ctx context.Context, s *models.SavedService) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.SavedService, error)
	ListByHost(ctx context.Context, hostID uuid.UUID) ([]*models.SavedService, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type savedServiceRepo struct {
	db DB
}

func NewSavedServiceRepository(db DB) SavedServiceRepository {
	return &savedServiceRepo{db: db}
}

func (r *savedServiceRepo) Create(ctx context.Context, s *models.SavedService) error {
	_, err := r.db.Exec(ctx, `
        INSERT INTO saved_services (
            id,host_id,name,description,price,icon
        ) VALUES (
            $1,$2,$3,$4,$5,$6
        )
    `,
		s.ID, s.HostID, s.Name, s.Description, s.Price, s.Icon,
	)
	return err
}

func (r *savedServiceRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.SavedService, error) {
	row := r.db.QueryRow(ctx, baseSelectSavedService()+" WHERE id=$1", id)
	return r.scanSavedService(row)
}

func (r *savedServiceRepo) ListByHost(ctx context.Context, hostID uuid.UUID) ([]*models.SavedService, error) {
	rows, err := r.db.Query(ctx, baseSelectSavedService()+" WHERE host_id=$1 ORDER BY created_at", hostID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.SavedService
	for rows.Next() {
		s, err := r.scanSavedService(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *savedServiceRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM saved_services WHERE id=$1`, id)
	return err
}

func baseSelectSavedService() string {
	return `
    SELECT
        id,host_id,name,description,price,icon,
        row_version,created_at,updated_at
    FROM saved_services`
}

func (r *savedServiceRepo) scanSavedService(row pgx.Row) (*models.SavedService, error) {
	var s models.SavedService

	err := row.Scan(
		&s.ID, &s.HostID, &s.Name, &s.Description, &s.Price, &s.Icon,
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
