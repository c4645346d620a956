package models

import (
	"time"

	"github.com/google/uuid"
)

type StripeAccountStatusType string

const (
	StripeAccountStatusNew          StripeAccountStatusType = "new"
	StripeAccountStatusPending      StripeAccountStatusType = "pending"
	StripeAccountStatusActive       StripeAccountStatusType = "active"
	StripeAccountStatusError        StripeAccountStatusType = "error"
	StripeAccountStatusDisconnected StripeAccountStatusType = "disconnected"
)

// Profile is the host account row. Its ID equals the auth provider's
// subject claim, so no separate user table exists. Profiles are never
// hard-deleted; a disconnected host keeps its row.
type Profile struct {
	Versioned

	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	FullName     string    `json:"full_name"`
	BusinessName string    `json:"business_name"`

	StripeAccountID      *string                 `json:"stripe_account_id,omitempty"`
	StripeAccountStatus  StripeAccountStatusType `json:"stripe_account_status"`
	StripeChargesEnabled bool                    `json:"stripe_charges_enabled"`
	StripePayoutsEnabled bool                    `json:"stripe_payouts_enabled"`
	StripeRequirements   *StripeRequirements     `json:"stripe_requirements,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p *Profile) GetID() string {
	return p.ID.String()
}
