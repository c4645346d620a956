package routes

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"
)

func TestGuestRoutesDispatch(t *testing.T) {
	router := mux.NewRouter()

	var gotPropertyID string
	router.HandleFunc(GuestProperty, func(w http.ResponseWriter, r *http.Request) {
		gotPropertyID = mux.Vars(r)["propertyId"]
	}).Methods(http.MethodGet)

	var checkoutHit bool
	router.HandleFunc(GuestCheckout, func(w http.ResponseWriter, r *http.Request) {
		checkoutHit = true
	}).Methods(http.MethodPost)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/guest/7b5a1c02-4a48-4f1f-9d7e-2a2f0c9a4b5c", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "7b5a1c02-4a48-4f1f-9d7e-2a2f0c9a4b5c", gotPropertyID)

	// The storefront path sits directly under /guest; checkout still
	// dispatches to its own handler.
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/guest/checkout", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, checkoutHit)
	require.Equal(t, "7b5a1c02-4a48-4f1f-9d7e-2a2f0c9a4b5c", gotPropertyID)
}
