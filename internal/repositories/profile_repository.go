package repositories

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"

	"github.com/stayextras/upsell-service/internal/models"
)

type ProfileRepository interface {
	Create(ctx context.Context, p *models.Profile) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Profile, error)
	GetByStripeAccountID(ctx context.Context, acct string) (*models.Profile, error)
	UpdateIfVersion(ctx context.Context, p *models.Profile, expected int64) (pgconn.CommandTag, error)
	UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Profile) error) error
}

type profileRepo struct {
	*BaseVersionedRepo[*models.Profile]
	db DB
}

func NewProfileRepository(db DB) ProfileRepository {
	r := &profileRepo{db: db}
	selectStmt := baseSelectProfile() + " WHERE id=$1"
	r.BaseVersionedRepo = NewBaseRepo(db, selectStmt, r.scanProfile)
	return r
}

func (r *profileRepo) Create(ctx context.Context, p *models.Profile) error {
	reqJSON, err := marshalRequirements(p.StripeRequirements)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `
        INSERT INTO profiles (
            id,email,full_name,business_name,
            stripe_account_id,stripe_account_status,
            stripe_charges_enabled,stripe_payouts_enabled,stripe_requirements
        ) VALUES (
            $1,$2,$3,$4,
            $5,$6,
            $7,$8,$9
        )
    `,
		p.ID, p.Email, p.FullName, p.BusinessName,
		p.StripeAccountID, p.StripeAccountStatus,
		p.StripeChargesEnabled, p.StripePayoutsEnabled, reqJSON,
	)
	return err
}

func (r *profileRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	return r.BaseVersionedRepo.GetByID(ctx, id.String())
}

func (r *profileRepo) GetByStripeAccountID(ctx context.Context, acct string) (*models.Profile, error) {
	row := r.db.QueryRow(ctx, baseSelectProfile()+" WHERE stripe_account_id=$1", acct)
	return r.scanProfile(row)
}


func (r *profileRepo) UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Profile) error) error {
	return r.BaseVersionedRepo.UpdateWithRetry(ctx, id.String(), mutate, r.UpdateIfVersion)
}

func (r *profileRepo) UpdateIfVersion(ctx context.Context, p *models.Profile, expected int64) (pgconn.CommandTag, error) {
	reqJSON, err := marshalRequirements(p.StripeRequirements)
	if err != nil {
		return nil, err
	}

	return r.db.Exec(ctx, `
        UPDATE profiles SET
            email=$1,full_name=$2,business_name=$3,
            stripe_account_id=$4,stripe_account_status=$5,
            stripe_charges_enabled=$6,stripe_payouts_enabled=$7,
            stripe_requirements=$8,
            row_version=row_version+1,
            updated_at=NOW()
        WHERE id=$9 AND row_version=$10
    `,
		p.Email, p.FullName, p.BusinessName,
		p.StripeAccountID, p.StripeAccountStatus,
		p.StripeChargesEnabled, p.StripePayoutsEnabled,
		reqJSON,
		p.ID, expected,
	)
}

func baseSelectProfile() string {
	return `
    SELECT
        id,email,full_name,business_name,
        stripe_account_id,stripe_account_status,
        stripe_charges_enabled,stripe_payouts_enabled,stripe_requirements,
        row_version,created_at,updated_at
    FROM profiles`
}

func (r *profileRepo) scanProfile(row pgx.Row) (*models.Profile, error) {
	var p models.Profile
	var status string
	var reqJSON []byte

	err := row.Scan(
		&p.ID, &p.Email, &p.FullName, &p.BusinessName,
		&p.StripeAccountID, &status,
		&p.StripeChargesEnabled, &p.StripePayoutsEnabled, &reqJSON,
		&p.RowVersion, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	p.StripeAccountStatus = models.StripeAccountStatusType(status)

	if len(reqJSON) > 0 {
		var req models.StripeRequirements
		if err := json.Unmarshal(reqJSON, &req); err != nil {
			return nil, err
		}
		p.StripeRequirements = &req
	}

	return &p, nil
}

func marshalRequirements(req *models.StripeRequirements) ([]byte, error) {
	if req == nil {
		return nil, nil
	}
	return json.Marshal(req)
}
