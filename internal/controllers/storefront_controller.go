package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"github.com/stayextras/upsell-service/internal/dtos"
	"github.com/stayextras/upsell-service/internal/services"
	"github.com/stayextras/upsell-service/internal/utils"
)

// StorefrontController serves the guest-facing endpoints. No auth; the
// property id in the link is the only credential a guest has.
type StorefrontController struct {
	storefrontService *services.StorefrontService
	checkoutService   *services.CheckoutService
}

var storefrontValidate = validator.New()

func NewStorefrontController(storefrontService *services.StorefrontService, checkoutService *services.CheckoutService) *StorefrontController {
	return &StorefrontController{
		storefrontService: storefrontService,
		checkoutService:   checkoutService,
	}
}

// GET /api/v1/guest/{propertyId}
func (c *StorefrontController) GetPropertyHandler(w http.ResponseWriter, r *http.Request) {
	propertyID, ok := pathUUID(w, mux.Vars(r), "propertyId")
	if !ok {
		return
	}

	property, err := c.storefrontService.GetProperty(r.Context(), propertyID)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, property)
}

// POST /api/v1/guest/checkout
func (c *StorefrontController) CreateCheckoutHandler(w http.ResponseWriter, r *http.Request) {
	var req dtos.CreateCheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid JSON payload", nil, err)
		return
	}
	if err := storefrontValidate.Struct(&req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, "Invalid checkout fields", nil, err)
		return
	}

	resp, err := c.checkoutService.CreateSession(r.Context(), req)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, resp)
}
