package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"github.com/stayextras/upsell-service/internal/dtos"
	"github.com/stayextras/upsell-service/internal/models"
	"github.com/stayextras/upsell-service/internal/services"
	"github.com/stayextras/upsell-service/internal/utils"
)

type PropertyController struct {
	propertyService *services.PropertyService
}

var propertyValidate = validator.New()

func NewPropertyController(propertyService *services.PropertyService) *PropertyController {
	return &PropertyController{propertyService: propertyService}
}

// GET /api/v1/host/properties
func (c *PropertyController) ListPropertiesHandler(w http.ResponseWriter, r *http.Request) {
	hostID, ok := hostIDFromRequest(w, r)
	if !ok {
		return
	}

	properties, err := c.propertyService.List(r.Context(), hostID)
	if err != nil {
		utils.Logger.WithError(err).Error("Failed to list properties")
		utils.HandleAppError(w, err)
		return
	}
	if properties == nil {
		properties = []*models.Property{}
	}
	utils.RespondWithJSON(w, http.StatusOK, properties)
}

// POST /api/v1/host/properties
func (c *PropertyController) CreatePropertyHandler(w http.ResponseWriter, r *http.Request) {
	hostID, ok := hostIDFromRequest(w, r)
	if !ok {
		return
	}

	var req dtos.PropertyCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid JSON payload", nil, err)
		return
	}
	if err := propertyValidate.Struct(&req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, "Invalid property fields", nil, err)
		return
	}

	property, err := c.propertyService.Create(r.Context(), hostID, req)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, property)
}

// PATCH /api/v1/host/properties/{propertyId}
func (c *PropertyController) PatchPropertyHandler(w http.ResponseWriter, r *http.Request) {
	hostID, ok := hostIDFromRequest(w, r)
	if !ok {
		return
	}
	propertyID, ok := pathUUID(w, mux.Vars(r), "propertyId")
	if !ok {
		return
	}

	var req dtos.PropertyPatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid JSON payload", nil, err)
		return
	}
	if err := propertyValidate.Struct(&req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, "Invalid property fields", nil, err)
		return
	}

	property, err := c.propertyService.Patch(r.Context(), hostID, propertyID, req)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, property)
}
