package models

import (
	"time"

	"github.com/google/uuid"
)

// DefaultPropertyImageURL is substituted whenever a property is stored or
// synced without a picture.
const DefaultPropertyImageURL = "https://images.unsplash.com/photo-1566073771259-6a8506099945?w=1200"

type Property struct {
	Versioned

	ID     uuid.UUID `json:"id"`
	HostID uuid.UUID `json:"host_id"`

	Name     string `json:"name"`
	Address  string `json:"address"`
	ImageURL string `json:"image_url"`

	ContactPhone    *string `json:"contact_phone,omitempty"`
	ContactGuideURL *string `json:"contact_guide_url,omitempty"`

	HospitableID         *string `json:"hospitable_id,omitempty"`
	HospitablePlatformID *string `json:"hospitable_platform_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p *Property) GetID() string {
	return p.ID.String()
}
