package dtos

type CheckoutGuestInfo struct {
	Name        string `json:"name" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	ArrivalDate string `json:"arrival_date" validate:"required"` // YYYY-MM-DD
}

type CreateCheckoutRequest struct {
	PropertyID string            `json:"property_id" validate:"required,uuid4"`
	ServiceIDs []string          `json:"service_ids" validate:"required,min=1,dive,uuid4"`
	GuestInfo  CheckoutGuestInfo `json:"guest_info" validate:"required"`
	SuccessURL string            `json:"success_url" validate:"required,url"`
	CancelURL  string            `json:"cancel_url" validate:"required,url"`
}

type CreateCheckoutResponse struct {
	OrderID         string `json:"order_id"`
	StripeSessionID string `json:"stripe_session_id"`
	CheckoutURL     string `json:"checkout_url"`
}
