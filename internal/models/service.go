package models

import (
	"time"

	"github.com/google/uuid"
)

// ServiceIcons is the catalog of icon tags the dashboard can render.
var ServiceIcons = map[string]struct{}{
	"wine":      {},
	"car":       {},
	"utensils":  {},
	"bed":       {},
	"clock":     {},
	"sparkles":  {},
	"waves":     {},
	"mountain":  {},
	"baby":      {},
	"dog":       {},
	"key":       {},
	"luggage":   {},
	"flower":    {},
	"gift":      {},
	"snowflake": {},
}

func IsValidServiceIcon(icon string) bool {
	_, ok := ServiceIcons[icon]
	return ok
}

// Service is a purchasable add-on attached to a single property.
// Price is in decimal currency units; minor-unit conversion happens
// once, at order time.
type Service struct {
	Versioned

	ID         uuid.UUID `json:"id"`
	PropertyID uuid.UUID `json:"property_id"`
	HostID     uuid.UUID `json:"host_id"`

	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Icon        string  `json:"icon"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (s *Service) GetID() string {
	return s.ID.String()
}

// SavedService is a host-scoped template for quickly adding the same
// add-on to several properties. It is not purchasable by itself.
type SavedService struct {
	Versioned

	ID     uuid.UUID `json:"id"`
	HostID uuid.UUID `json:"host_id"`

	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Icon        string  `json:"icon"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (s *SavedService) GetID() string {
	return s.ID.String()
}
