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

type CatalogController struct {
	catalogService *services.CatalogService
}

var catalogValidate = validator.New()

func NewCatalogController(catalogService *services.CatalogService) *CatalogController {
	return &CatalogController{catalogService: catalogService}
}

// GET /api/v1/host/properties/{propertyId}/services
func (c *CatalogController) ListServicesHandler(w http.ResponseWriter, r *http.Request) {
	hostID, ok := hostIDFromRequest(w, r)
	if !ok {
		return
	}
	propertyID, ok := pathUUID(w, mux.Vars(r), "propertyId")
	if !ok {
		return
	}

	svcs, err := c.catalogService.ListByProperty(r.Context(), hostID, propertyID)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	if svcs == nil {
		svcs = []*models.Service{}
	}
	utils.RespondWithJSON(w, http.StatusOK, svcs)
}

// POST /api/v1/host/properties/{propertyId}/services
func (c *CatalogController) CreateServiceHandler(w http.ResponseWriter, r *http.Request) {
	hostID, ok := hostIDFromRequest(w, r)
	if !ok {
		return
	}
	propertyID, ok := pathUUID(w, mux.Vars(r), "propertyId")
	if !ok {
		return
	}

	var req dtos.ServiceCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid JSON payload", nil, err)
		return
	}
	if err := catalogValidate.Struct(&req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, "Invalid service fields", nil, err)
		return
	}

	svc, err := c.catalogService.Create(r.Context(), hostID, propertyID, req)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, svc)
}

// PATCH /api/v1/host/services/{serviceId}
func (c *CatalogController) PatchServiceHandler(w http.ResponseWriter, r *http.Request) {
	hostID, ok := hostIDFromRequest(w, r)
	if !ok {
		return
	}
	serviceID, ok := pathUUID(w, mux.Vars(r), "serviceId")
	if !ok {
		return
	}

	var req dtos.ServicePatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid JSON payload", nil, err)
		return
	}
	if err := catalogValidate.Struct(&req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, "Invalid service fields", nil, err)
		return
	}

	svc, err := c.catalogService.Patch(r.Context(), hostID, serviceID, req)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, svc)
}

// DELETE /api/v1/host/services/{serviceId}
func (c *CatalogController) DeleteServiceHandler(w http.ResponseWriter, r *http.Request) {
	hostID, ok := hostIDFromRequest(w, r)
	if !ok {
		return
	}
	serviceID, ok := pathUUID(w, mux.Vars(r), "serviceId")
	if !ok {
		return
	}

	if err := c.catalogService.Delete(r.Context(), hostID, serviceID); err != nil {
		utils.HandleAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GET /api/v1/host/saved-services
func (c *CatalogController) ListSavedServicesHandler(w http.ResponseWriter, r *http.Request) {
	hostID, ok := hostIDFromRequest(w, r)
	if !ok {
		return
	}

	saved, err := c.catalogService.ListSaved(r.Context(), hostID)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	if saved == nil {
		saved = []*models.SavedService{}
	}
	utils.RespondWithJSON(w, http.StatusOK, saved)
}

// POST /api/v1/host/saved-services
func (c *CatalogController) CreateSavedServiceHandler(w http.ResponseWriter, r *http.Request) {
	hostID, ok := hostIDFromRequest(w, r)
	if !ok {
		return
	}

	var req dtos.ServiceCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid JSON payload", nil, err)
		return
	}
	if err := catalogValidate.Struct(&req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, "Invalid service fields", nil, err)
		return
	}

	tmpl, err := c.catalogService.CreateSaved(r.Context(), hostID, req)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, tmpl)
}

// DELETE /api/v1/host/saved-services/{savedServiceId}
func (c *CatalogController) DeleteSavedServiceHandler(w http.ResponseWriter, r *http.Request) {
	hostID, ok := hostIDFromRequest(w, r)
	if !ok {
		return
	}
	savedServiceID, ok := pathUUID(w, mux.Vars(r), "savedServiceId")
	if !ok {
		return
	}

	if err := c.catalogService.DeleteSaved(r.Context(), hostID, savedServiceID); err != nil {
		utils.HandleAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
