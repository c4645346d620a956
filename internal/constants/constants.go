package constants

import "time"

const (
	WebhookMetadataGeneratedByKey = "generated_by"
	WebhookMetadataOrderIDKey     = "order_id"
	WebhookMetadataPropertyIDKey  = "property_id"
	WebhookMetadataServiceIDsKey  = "service_ids"
	WebhookMetadataGuestNameKey   = "guest_name"
	WebhookMetadataGuestEmailKey  = "guest_email"
	WebhookMetadataHostIDKey      = "host_id"
)

// Platform economics
const (
	// PlatformFeePercent is applied to the order total in minor units,
	// rounded down: fee = total_cents * PlatformFeePercent / 100.
	PlatformFeePercent = 5

	Currency = "eur"
)

// Stripe-Specific Identifiers
const (
	StripeCapabilityCardPayments = "card_payments"
	StripeCapabilityTransfers    = "transfers"
	StripeCapabilityStatusActive = "active"
	StripeAccountCountry         = "FR"
)

// Activation polling
const (
	ActivationPollMaxAttempts = 24
	ActivationPollInterval    = 5 * time.Second
)

// Order authorization sweep. Manual-capture holds lapse around day 7;
// sweeping at day 6 voids them before Stripe does.
const (
	PendingOrderMaxAge     = 6 * 24 * time.Hour
	OrderSweepCronSpec     = "0 */2 * * *" // every 2 hours
	OrderSweepTimeout      = 10 * time.Minute
	HostStripeStartTimeout = 30 * time.Second
)

// Email identities and subjects
const (
	NotificationFromEmail = "orders@stayextras.app"
	NotificationFromName  = "StayExtras"

	EmailSubjectNewOrder       = "New guest order for %s"
	EmailSubjectOrderCancelled = "Guest order expired and was cancelled"
)
