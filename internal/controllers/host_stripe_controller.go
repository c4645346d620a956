package controllers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/stayextras/upsell-service/internal/dtos"
	"github.com/stayextras/upsell-service/internal/services"
	"github.com/stayextras/upsell-service/internal/utils"
)

type HostStripeController struct {
	stripeService    *services.HostStripeService
	activationPoller *services.ActivationPoller
	analyticsService *services.AnalyticsService
}

var stripeValidate = validator.New()

func NewHostStripeController(
	stripeService *services.HostStripeService,
	activationPoller *services.ActivationPoller,
	analyticsService *services.AnalyticsService,
) *HostStripeController {
	return &HostStripeController{
		stripeService:    stripeService,
		activationPoller: activationPoller,
		analyticsService: analyticsService,
	}
}

// POST /api/v1/host/stripe/connect-flow
func (c *HostStripeController) ConnectFlowHandler(w http.ResponseWriter, r *http.Request) {
	hostID, ok := hostIDFromRequest(w, r)
	if !ok {
		return
	}

	var req dtos.ConnectFlowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid JSON payload", nil, err)
		return
	}
	if err := stripeValidate.Struct(&req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, "Invalid return URL", nil, err)
		return
	}

	url, err := c.stripeService.InitiateOnboarding(r.Context(), hostID, req.ReturnURL)
	if err != nil {
		switch {
		case errors.Is(err, utils.ErrInsecureReturnURL):
			utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, "Return URL must use https", nil, err)
		case errors.Is(err, utils.ErrNotFound):
			utils.RespondErrorWithCode(w, http.StatusNotFound, utils.ErrCodeNotFound, "Profile not found", nil, err)
		default:
			utils.Logger.WithError(err).Error("Failed to start Stripe onboarding")
			utils.RespondErrorWithCode(w, http.StatusBadGateway, utils.ErrCodeExternalServiceFailure, "Could not start payment onboarding", nil, err)
		}
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, dtos.ConnectFlowResponse{OnboardingURL: url})
}

// GET /api/v1/host/stripe/connect-flow-status
func (c *HostStripeController) ConnectStatusHandler(w http.ResponseWriter, r *http.Request) {
	hostID, ok := hostIDFromRequest(w, r)
	if !ok {
		return
	}

	profile, err := c.stripeService.SyncAccountStatus(r.Context(), hostID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			utils.RespondErrorWithCode(w, http.StatusNotFound, utils.ErrCodeNotFound, "Profile not found", nil, err)
			return
		}
		utils.Logger.WithError(err).Error("Failed to sync Stripe account status")
		utils.RespondErrorWithCode(w, http.StatusBadGateway, utils.ErrCodeExternalServiceFailure, "Could not refresh account status", nil, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, dtos.ConnectStatusResponse{
		Status:         string(profile.StripeAccountStatus),
		ChargesEnabled: profile.StripeChargesEnabled,
		PayoutsEnabled: profile.StripePayoutsEnabled,
	})
}

// POST /api/v1/host/stripe/sync
func (c *HostStripeController) SyncHandler(w http.ResponseWriter, r *http.Request) {
	c.ConnectStatusHandler(w, r)
}

// POST /api/v1/host/stripe/poll
func (c *HostStripeController) StartPollHandler(w http.ResponseWriter, r *http.Request) {
	hostID, ok := hostIDFromRequest(w, r)
	if !ok {
		return
	}

	c.activationPoller.Start(hostID)
	utils.RespondWithJSON(w, http.StatusAccepted, dtos.PollStatusResponse{
		PollStatus: string(c.activationPoller.Status(hostID)),
	})
}

// GET /api/v1/host/stripe/poll
func (c *HostStripeController) PollStatusHandler(w http.ResponseWriter, r *http.Request) {
	hostID, ok := hostIDFromRequest(w, r)
	if !ok {
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, dtos.PollStatusResponse{
		PollStatus: string(c.activationPoller.Status(hostID)),
	})
}

// POST /api/v1/host/stripe/poll/cancel
func (c *HostStripeController) CancelPollHandler(w http.ResponseWriter, r *http.Request) {
	hostID, ok := hostIDFromRequest(w, r)
	if !ok {
		return
	}

	c.activationPoller.Cancel(hostID)
	utils.RespondWithJSON(w, http.StatusOK, dtos.PollStatusResponse{
		PollStatus: string(c.activationPoller.Status(hostID)),
	})
}

// POST /api/v1/host/stripe/reset
func (c *HostStripeController) ResetHandler(w http.ResponseWriter, r *http.Request) {
	hostID, ok := hostIDFromRequest(w, r)
	if !ok {
		return
	}

	c.activationPoller.Cancel(hostID)
	if err := c.stripeService.Reset(r.Context(), hostID); err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			utils.RespondErrorWithCode(w, http.StatusNotFound, utils.ErrCodeNotFound, "Profile not found", nil, err)
			return
		}
		utils.Logger.WithError(err).Error("Failed to reset Stripe linkage")
		utils.RespondErrorWithCode(w, http.StatusInternalServerError, utils.ErrCodeInternal, "Could not reset payment setup", nil, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GET /api/v1/host/stripe/analytics
func (c *HostStripeController) AnalyticsHandler(w http.ResponseWriter, r *http.Request) {
	hostID, ok := hostIDFromRequest(w, r)
	if !ok {
		return
	}

	resp, err := c.analyticsService.RevenueSummary(r.Context(), hostID)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}
