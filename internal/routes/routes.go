package routes

const (
	// Health
	Health = "/health"

	// ───────────────────────────────
	// Guest storefront (public)
	// ───────────────────────────────
	GuestProperty = "/api/v1/guest/{propertyId}"
	GuestCheckout = "/api/v1/guest/checkout"

	// ───────────────────────────────
	// Host profile
	// ───────────────────────────────
	HostProfile = "/api/v1/host/profile"

	// ───────────────────────────────
	// Host properties & services
	// ───────────────────────────────
	HostProperties        = "/api/v1/host/properties"
	HostProperty          = "/api/v1/host/properties/{propertyId}"
	HostPropertyServices  = "/api/v1/host/properties/{propertyId}/services"
	HostService           = "/api/v1/host/services/{serviceId}"
	HostSavedServices     = "/api/v1/host/saved-services"
	HostSavedService      = "/api/v1/host/saved-services/{savedServiceId}"

	// ───────────────────────────────
	// Host orders
	// ───────────────────────────────
	HostOrders       = "/api/v1/host/orders"
	HostOrderApprove = "/api/v1/host/orders/{orderId}/approve"
	HostOrderReject  = "/api/v1/host/orders/{orderId}/reject"

	// ───────────────────────────────
	// Host / Stripe
	// ───────────────────────────────
	HostStripeConnectFlowURL    = "/api/v1/host/stripe/connect-flow"
	HostStripeConnectFlowStatus = "/api/v1/host/stripe/connect-flow-status"
	HostStripeSync              = "/api/v1/host/stripe/sync"
	HostStripePollStart         = "/api/v1/host/stripe/poll"
	HostStripePollCancel        = "/api/v1/host/stripe/poll/cancel"
	HostStripeReset             = "/api/v1/host/stripe/reset"
	HostStripeAnalytics         = "/api/v1/host/stripe/analytics"

	// ───────────────────────────────
	// Hospitable sync
	// ───────────────────────────────
	HostHospitableConnect = "/api/v1/host/hospitable/connect"
	HostHospitableSync    = "/api/v1/host/hospitable/sync"

	// ───────────────────────────────
	// Stripe Webhook
	// ───────────────────────────────
	StripeWebhook      = "/api/v1/stripe/webhook"
	StripeWebhookCheck = "/api/v1/stripe/webhook/check"
)
