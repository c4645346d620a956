package dtos

import (
	"time"

	"github.com/stayextras/upsell-service/internal/models"
)

// ----------------------------------------------------------------------
// Profile
// ----------------------------------------------------------------------

type Profile struct {
	ID                   string                         `json:"id"`
	Email                string                         `json:"email"`
	FullName             string                         `json:"full_name"`
	BusinessName         string                         `json:"business_name"`
	StripeAccountStatus  models.StripeAccountStatusType `json:"stripe_account_status"`
	StripeChargesEnabled bool                           `json:"stripe_charges_enabled"`
	StripePayoutsEnabled bool                           `json:"stripe_payouts_enabled"`
	StripeRequirements   *models.StripeRequirements     `json:"stripe_requirements,omitempty"`
	HasStripeAccount     bool                           `json:"has_stripe_account"`
}

func NewProfileFromModel(p *models.Profile) Profile {
	return Profile{
		ID:                   p.ID.String(),
		Email:                p.Email,
		FullName:             p.FullName,
		BusinessName:         p.BusinessName,
		StripeAccountStatus:  p.StripeAccountStatus,
		StripeChargesEnabled: p.StripeChargesEnabled,
		StripePayoutsEnabled: p.StripePayoutsEnabled,
		StripeRequirements:   p.StripeRequirements,
		HasStripeAccount:     p.StripeAccountID != nil && *p.StripeAccountID != "",
	}
}

// All fields as pointers, so that "null" or omission => no update
type ProfilePatchRequest struct {
	FullName     *string `json:"full_name,omitempty" validate:"omitempty,min=1,max=200"`
	BusinessName *string `json:"business_name,omitempty" validate:"omitempty,max=200"`
}

// ----------------------------------------------------------------------
// Properties
// ----------------------------------------------------------------------

type PropertyCreateRequest struct {
	Name            string  `json:"name" validate:"required,min=1,max=200"`
	Address         string  `json:"address" validate:"required,min=1,max=500"`
	ImageURL        string  `json:"image_url" validate:"omitempty,url"`
	ContactPhone    *string `json:"contact_phone,omitempty"`
	ContactGuideURL *string `json:"contact_guide_url,omitempty" validate:"omitempty,url"`
}

type PropertyPatchRequest struct {
	Name            *string `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Address         *string `json:"address,omitempty" validate:"omitempty,min=1,max=500"`
	ImageURL        *string `json:"image_url,omitempty" validate:"omitempty,url"`
	ContactPhone    *string `json:"contact_phone,omitempty"`
	ContactGuideURL *string `json:"contact_guide_url,omitempty" validate:"omitempty,url"`
}

// ----------------------------------------------------------------------
// Services
// ----------------------------------------------------------------------

type ServiceCreateRequest struct {
	Name           string  `json:"name" validate:"required,min=1,max=200"`
	Description    string  `json:"description" validate:"max=2000"`
	Price          float64 `json:"price" validate:"required,gt=0"`
	Icon           string  `json:"icon" validate:"required"`
	SaveAsTemplate bool    `json:"save_as_template"`
}

type ServicePatchRequest struct {
	Name        *string  `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Description *string  `json:"description,omitempty" validate:"omitempty,max=2000"`
	Price       *float64 `json:"price,omitempty" validate:"omitempty,gt=0"`
	Icon        *string  `json:"icon,omitempty"`
}

// ----------------------------------------------------------------------
// Orders
// ----------------------------------------------------------------------

type Order struct {
	ID               string              `json:"id"`
	PropertyID       string              `json:"property_id"`
	Services         []models.OrderLine  `json:"services"`
	TotalAmountCents int64               `json:"total_amount_cents"`
	Status           models.OrderStatusType `json:"status"`
	GuestName        string              `json:"guest_name"`
	GuestEmail       string              `json:"guest_email"`
	ArrivalDate      time.Time           `json:"arrival_date"`
	CreatedAt        time.Time           `json:"created_at"`
}

func NewOrderFromModel(o *models.Order) Order {
	return Order{
		ID:               o.ID.String(),
		PropertyID:       o.PropertyID.String(),
		Services:         o.Services,
		TotalAmountCents: o.TotalAmountCents,
		Status:           o.Status,
		GuestName:        o.GuestName,
		GuestEmail:       o.GuestEmail,
		ArrivalDate:      o.ArrivalDate,
		CreatedAt:        o.CreatedAt,
	}
}
