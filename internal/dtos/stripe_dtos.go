package dtos

// ConnectFlowRequest starts Express onboarding. ReturnURL is where Stripe
// sends the host back; it must be https outside loopback.
type ConnectFlowRequest struct {
	ReturnURL string `json:"return_url" validate:"required,url"`
}

type ConnectFlowResponse struct {
	OnboardingURL string `json:"onboarding_url"`
}

type ConnectStatusResponse struct {
	Status         string `json:"status"`
	ChargesEnabled bool   `json:"charges_enabled"`
	PayoutsEnabled bool   `json:"payouts_enabled"`
}

type PollStatusResponse struct {
	PollStatus string `json:"poll_status"`
}

// ----------------------------------------------------------------------
// Analytics
// ----------------------------------------------------------------------

type AnalyticsPayment struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Created  int64  `json:"created"`
}

type AnalyticsResponse struct {
	TotalRevenueCents   int64              `json:"total_revenue_cents"`
	MonthlyRevenueCents int64              `json:"monthly_revenue_cents"`
	TotalTransactions   int                `json:"total_transactions"`
	RecentPayments      []AnalyticsPayment `json:"recent_payments"`
	Message             string             `json:"message,omitempty"`
}
