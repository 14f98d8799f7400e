package controller

import (
	"net/http"

	"github.com/commercekit/checkout/internal/domain/money"
	"github.com/commercekit/checkout/internal/domain/order"
	"github.com/commercekit/checkout/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// OrderController handles order-related HTTP requests.
type OrderController struct {
	checkout *service.CheckoutService
}

// NewOrderController creates a new OrderController.
func NewOrderController(checkout *service.CheckoutService) *OrderController {
	return &OrderController{checkout: checkout}
}

// Create handles POST /api/v1/orders
func (h *OrderController) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	o, err := h.checkout.CreateOrder(r.Context(), req.Currency)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, FromOrder(o))
}

// Get handles GET /api/v1/orders/{id}
func (h *OrderController) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := orderID(w, r)
	if !ok {
		return
	}

	o, err := h.checkout.GetOrder(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, FromOrder(o))
}

// AddItem handles POST /api/v1/orders/{id}/items
func (h *OrderController) AddItem(w http.ResponseWriter, r *http.Request) {
	id, ok := orderID(w, r)
	if !ok {
		return
	}

	var req AddItemRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	o, err := h.checkout.AddItem(r.Context(), id, service.AddItemRequest{
		SKU:         req.SKU,
		Description: req.Description,
		UnitPrice:   floatToCents(req.UnitPrice),
		Quantity:    req.Quantity,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, FromOrder(o))
}

// RemoveItem handles DELETE /api/v1/orders/{id}/items/{sku}
func (h *OrderController) RemoveItem(w http.ResponseWriter, r *http.Request) {
	id, ok := orderID(w, r)
	if !ok {
		return
	}

	o, err := h.checkout.RemoveItem(r.Context(), id, chi.URLParam(r, "sku"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, FromOrder(o))
}

// SetShipping handles PUT /api/v1/orders/{id}/shipping
func (h *OrderController) SetShipping(w http.ResponseWriter, r *http.Request) {
	id, ok := orderID(w, r)
	if !ok {
		return
	}

	var req SetShippingRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	o, err := h.checkout.GetOrder(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	method := order.ShippingMethod{
		Code: req.Code,
		Name: req.Name,
		Cost: money.New(floatToCents(req.Cost), o.Currency),
	}
	o, err = h.checkout.SetShipping(r.Context(), id, method)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, FromOrder(o))
}

// Transition handles POST /api/v1/orders/{id}/transition
func (h *OrderController) Transition(w http.ResponseWriter, r *http.Request) {
	id, ok := orderID(w, r)
	if !ok {
		return
	}

	var req TransitionRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	o, err := h.checkout.ApplyOrderTransition(r.Context(), id, req.Transition)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, FromOrder(o))
}

func orderID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid order id", Code: "invalid_id"})
		return uuid.Nil, false
	}
	return id, true
}
