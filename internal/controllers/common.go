package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/stayextras/upsell-service/internal/middleware"
	"github.com/stayextras/upsell-service/internal/utils"
)

// hostIDFromRequest pulls the authenticated host id out of the request
// context. A false return means the 401 has already been written.
func hostIDFromRequest(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	sub, ok := middleware.UserIDFromContext(r.Context())
	if !ok || sub == "" {
		utils.RespondErrorWithCode(w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Missing userID in context", nil)
		return uuid.Nil, false
	}
	hostID, err := uuid.Parse(sub)
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Subject is not a valid id", nil, err)
		return uuid.Nil, false
	}
	return hostID, true
}

// pathUUID parses a mux path variable as a UUID, writing the 400 itself
// on failure.
func pathUUID(w http.ResponseWriter, vars map[string]string, name string) (uuid.UUID, bool) {
	raw := vars[name]
	id, err := uuid.Parse(raw)
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, "Invalid "+name, nil, err)
		return uuid.Nil, false
	}
	return id, true
}
