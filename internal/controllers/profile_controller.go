package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/stayextras/upsell-service/internal/dtos"
	"github.com/stayextras/upsell-service/internal/middleware"
	"github.com/stayextras/upsell-service/internal/services"
	"github.com/stayextras/upsell-service/internal/utils"
)

type ProfileController struct {
	profileService *services.ProfileService
}

var profileValidate = validator.New()

func NewProfileController(profileService *services.ProfileService) *ProfileController {
	return &ProfileController{profileService: profileService}
}

// GET /api/v1/host/profile
func (c *ProfileController) GetProfileHandler(w http.ResponseWriter, r *http.Request) {
	hostID, ok := hostIDFromRequest(w, r)
	if !ok {
		return
	}

	profile, err := c.profileService.GetOrCreate(r.Context(), hostID, middleware.UserEmailFromContext(r.Context()))
	if err != nil {
		utils.Logger.WithError(err).Error("Failed to retrieve profile")
		utils.HandleAppError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, dtos.NewProfileFromModel(profile))
}

// PATCH /api/v1/host/profile
func (c *ProfileController) PatchProfileHandler(w http.ResponseWriter, r *http.Request) {
	hostID, ok := hostIDFromRequest(w, r)
	if !ok {
		return
	}

	var patchReq dtos.ProfilePatchRequest
	if err := json.NewDecoder(r.Body).Decode(&patchReq); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid JSON payload", nil, err)
		return
	}
	if err := profileValidate.Struct(&patchReq); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, "Invalid profile fields", nil, err)
		return
	}

	profile, err := c.profileService.Patch(r.Context(), hostID, patchReq)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, dtos.NewProfileFromModel(profile))
}
