package controllers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/stayextras/upsell-service/internal/dtos"
	"github.com/stayextras/upsell-service/internal/services"
	"github.com/stayextras/upsell-service/internal/utils"
)

type OrderController struct {
	checkoutService *services.CheckoutService
}

func NewOrderController(checkoutService *services.CheckoutService) *OrderController {
	return &OrderController{checkoutService: checkoutService}
}

// GET /api/v1/host/orders
func (c *OrderController) ListOrdersHandler(w http.ResponseWriter, r *http.Request) {
	hostID, ok := hostIDFromRequest(w, r)
	if !ok {
		return
	}

	orders, err := c.checkoutService.ListOrders(r.Context(), hostID)
	if err != nil {
		utils.Logger.WithError(err).Error("Failed to list orders")
		utils.HandleAppError(w, err)
		return
	}

	out := make([]dtos.Order, 0, len(orders))
	for _, o := range orders {
		out = append(out, dtos.NewOrderFromModel(o))
	}
	utils.RespondWithJSON(w, http.StatusOK, out)
}

// POST /api/v1/host/orders/{orderId}/approve
func (c *OrderController) ApproveOrderHandler(w http.ResponseWriter, r *http.Request) {
	hostID, ok := hostIDFromRequest(w, r)
	if !ok {
		return
	}
	orderID, ok := pathUUID(w, mux.Vars(r), "orderId")
	if !ok {
		return
	}

	order, err := c.checkoutService.Approve(r.Context(), hostID, orderID)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.NewOrderFromModel(order))
}

// POST /api/v1/host/orders/{orderId}/reject
func (c *OrderController) RejectOrderHandler(w http.ResponseWriter, r *http.Request) {
	hostID, ok := hostIDFromRequest(w, r)
	if !ok {
		return
	}
	orderID, ok := pathUUID(w, mux.Vars(r), "orderId")
	if !ok {
		return
	}

	order, err := c.checkoutService.Reject(r.Context(), hostID, orderID)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.NewOrderFromModel(order))
}
