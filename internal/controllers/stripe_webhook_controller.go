package controllers

import (
	"encoding/json"
	"io"
	"net/http"

	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"

	"github.com/stayextras/upsell-service/internal/services"
	"github.com/stayextras/upsell-service/internal/utils"
)

const webhookCheckParam = "id"

// maxWebhookBodyBytes caps the webhook payload size per Stripe's guidance.
const maxWebhookBodyBytes = 65536

type StripeWebhookController struct {
	webhookSecret        string
	connectWebhookSecret string
	stripeService        *services.HostStripeService
	checkoutService      *services.CheckoutService
	webhookCheckService  *services.StripeWebhookCheckService
}

func NewStripeWebhookController(
	webhookSecret string,
	connectWebhookSecret string,
	stripeService *services.HostStripeService,
	checkoutService *services.CheckoutService,
	webhookCheckService *services.StripeWebhookCheckService,
) *StripeWebhookController {
	return &StripeWebhookController{
		webhookSecret:        webhookSecret,
		connectWebhookSecret: connectWebhookSecret,
		stripeService:        stripeService,
		checkoutService:      checkoutService,
		webhookCheckService:  webhookCheckService,
	}
}

// WebhookHandler receives Stripe events for both the platform account and
// connected accounts. Handler errors are logged but never surfaced to Stripe;
// a non-2xx would only trigger redelivery of an event we already could not use.
func (c *StripeWebhookController) WebhookHandler(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBodyBytes))
	if err != nil {
		utils.Logger.WithError(err).Error("Failed to read Stripe webhook payload")
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Could not read payload", nil, err)
		return
	}

	event, err := c.constructEvent(payload, r.Header.Get("Stripe-Signature"))
	if err != nil {
		utils.Logger.WithError(err).Warn("Stripe webhook signature verification failed")
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeUnauthorized, "Invalid signature", nil, err)
		return
	}

	switch event.Type {
	case stripe.EventTypeCheckoutSessionCompleted:
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			utils.Logger.WithError(err).Error("Failed to parse checkout.session.completed payload")
			break
		}
		_ = c.checkoutService.HandleCheckoutSessionCompleted(&sess)

	case stripe.EventTypePaymentIntentCanceled:
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			utils.Logger.WithError(err).Error("Failed to parse payment_intent.canceled payload")
			break
		}
		_ = c.checkoutService.HandlePaymentIntentCanceled(&pi)

	case stripe.EventTypeAccountUpdated:
		var acct stripe.Account
		if err := json.Unmarshal(event.Data.Raw, &acct); err != nil {
			utils.Logger.WithError(err).Error("Failed to parse account.updated payload")
			break
		}
		_ = c.stripeService.HandleAccountUpdated(&acct)

	case stripe.EventTypeCapabilityUpdated:
		var capability stripe.Capability
		if err := json.Unmarshal(event.Data.Raw, &capability); err != nil {
			utils.Logger.WithError(err).Error("Failed to parse capability.updated payload")
			break
		}
		_ = c.stripeService.HandleCapabilityUpdated(&capability)

	case stripe.EventTypeAccountExternalAccountCreated,
		stripe.EventTypeAccountExternalAccountUpdated,
		stripe.EventTypeAccountExternalAccountDeleted,
		stripe.EventTypePersonCreated,
		stripe.EventTypePersonUpdated,
		stripe.EventTypePersonDeleted:
		_ = c.stripeService.HandleAccountContextEvent(string(event.Type), event.Account)

	case stripe.EventTypeAccountApplicationDeauthorized:
		_ = c.stripeService.HandleAccountDeauthorized(event.Account)

	case stripe.EventTypePaymentIntentCreated:
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			utils.Logger.WithError(err).Error("Failed to parse payment_intent.created payload")
			break
		}
		c.webhookCheckService.HandlePaymentIntentCreated(event.ID, &pi)

	default:
		utils.Logger.Debugf("Ignoring Stripe event type %s (ID=%s)", event.Type, event.ID)
	}

	w.WriteHeader(http.StatusOK)
}

// constructEvent verifies the signature against the platform endpoint secret
// first, then falls back to the Connect endpoint secret when one is configured.
func (c *StripeWebhookController) constructEvent(payload []byte, sigHeader string) (stripe.Event, error) {
	event, err := webhook.ConstructEvent(payload, sigHeader, c.webhookSecret)
	if err == nil {
		return event, nil
	}
	if c.connectWebhookSecret != "" {
		return webhook.ConstructEvent(payload, sigHeader, c.connectWebhookSecret)
	}
	return event, err
}

// WebhookCheckHandler reports whether a given webhook event was delivered.
func (c *StripeWebhookController) WebhookCheckHandler(w http.ResponseWriter, r *http.Request) {
	eventID := r.URL.Query().Get(webhookCheckParam)
	if eventID == "" {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, "Missing event id", nil, nil)
		return
	}

	received := c.webhookCheckService.ConsumeWebhookCheckEvent(eventID)
	utils.RespondWithJSON(w, http.StatusOK, map[string]bool{"received": received})
}
