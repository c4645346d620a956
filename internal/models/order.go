package models

import (
	"time"

	"github.com/google/uuid"
)

type OrderStatusType string

const (
	OrderStatusPending   OrderStatusType = "pending"
	OrderStatusApproved  OrderStatusType = "approved"
	OrderStatusRejected  OrderStatusType = "rejected"
	OrderStatusPaid      OrderStatusType = "paid"
	OrderStatusCancelled OrderStatusType = "cancelled"
)

// OrderLine is the point-in-time snapshot of a purchased service. Later
// edits or deletions of the Service row never change an existing order.
type OrderLine struct {
	ServiceID   uuid.UUID `json:"service_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Icon        string    `json:"icon,omitempty"`
	PriceCents  int64     `json:"price_cents"`
}

// Order is a guest purchase awaiting host review. TotalAmountCents is
// fixed at creation from the line snapshots.
type Order struct {
	Versioned

	ID         uuid.UUID `json:"id"`
	HostID     uuid.UUID `json:"host_id"`
	PropertyID uuid.UUID `json:"property_id"`

	Services         []OrderLine     `json:"services"`
	TotalAmountCents int64           `json:"total_amount_cents"`
	Status           OrderStatusType `json:"status"`

	GuestName   string    `json:"guest_name"`
	GuestEmail  string    `json:"guest_email"`
	ArrivalDate time.Time `json:"arrival_date"`

	StripeSessionID       *string `json:"stripe_session_id,omitempty"`
	StripePaymentIntentID *string `json:"stripe_payment_intent_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (o *Order) GetID() string {
	return o.ID.String()
}

// IsTerminal reports whether the order can no longer change state.
// "approved" only occurs on rows imported from older data and is
// treated as settled.
func (o *Order) IsTerminal() bool {
	switch o.Status {
	case OrderStatusPaid, OrderStatusApproved, OrderStatusRejected, OrderStatusCancelled:
		return true
	}
	return false
}
