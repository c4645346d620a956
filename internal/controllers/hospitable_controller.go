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

type HospitableController struct {
	hospitableService *services.HospitableService
}

var hospitableValidate = validator.New()

func NewHospitableController(hospitableService *services.HospitableService) *HospitableController {
	return &HospitableController{hospitableService: hospitableService}
}

// POST /api/v1/host/hospitable/connect
func (c *HospitableController) ConnectHandler(w http.ResponseWriter, r *http.Request) {
	hostID, ok := hostIDFromRequest(w, r)
	if !ok {
		return
	}

	var req dtos.HospitableConnectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid JSON payload", nil, err)
		return
	}
	if err := hospitableValidate.Struct(&req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, "Authorization code is required", nil, err)
		return
	}

	resp, err := c.hospitableService.Connect(r.Context(), hostID, req.Code, req.RedirectURI)
	if err != nil {
		if errors.Is(err, utils.ErrExternalServiceFailure) {
			utils.RespondErrorWithCode(w, http.StatusBadGateway, utils.ErrCodeExternalServiceFailure, "Could not complete the Hospitable connection", nil, err)
			return
		}
		utils.HandleAppError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// DELETE /api/v1/host/hospitable/connect
func (c *HospitableController) DisconnectHandler(w http.ResponseWriter, r *http.Request) {
	hostID, ok := hostIDFromRequest(w, r)
	if !ok {
		return
	}

	if err := c.hospitableService.Disconnect(r.Context(), hostID); err != nil {
		utils.Logger.WithError(err).Error("Failed to disconnect Hospitable")
		utils.HandleAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// POST /api/v1/host/hospitable/sync
func (c *HospitableController) SyncHandler(w http.ResponseWriter, r *http.Request) {
	hostID, ok := hostIDFromRequest(w, r)
	if !ok {
		return
	}

	resp, err := c.hospitableService.SyncProperties(r.Context(), hostID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			utils.RespondErrorWithCode(w, http.StatusNotFound, utils.ErrCodeNotFound, "Hospitable account is not connected", nil, err)
			return
		}
		utils.HandleAppError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, resp)
}
