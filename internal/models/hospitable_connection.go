package models

import (
	"time"

	"github.com/google/uuid"
)

// HospitableConnection stores a host's OAuth grant for the Hospitable
// listings API. One row per host.
type HospitableConnection struct {
	Versioned

	ID     uuid.UUID `json:"id"`
	HostID uuid.UUID `json:"host_id"`

	CustomerID   string     `json:"customer_id"`
	AccessToken  string     `json:"access_token"`
	RefreshToken *string    `json:"refresh_token,omitempty"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c *HospitableConnection) GetID() string {
	return c.ID.String()
}
