package controller

import (
	"net/http"

	"github.com/commercekit/checkout/internal/domain/payment"
	"github.com/commercekit/checkout/internal/service"
	"github.com/go-chi/chi/v5"
)

// PaymentController handles payment-related HTTP requests.
type PaymentController struct {
	checkout    *service.CheckoutService
	paymentRepo payment.Repository
}

// NewPaymentController creates a new PaymentController.
func NewPaymentController(checkout *service.CheckoutService, paymentRepo payment.Repository) *PaymentController {
	return &PaymentController{checkout: checkout, paymentRepo: paymentRepo}
}

// Attach handles POST /api/v1/orders/{id}/payments
func (h *PaymentController) Attach(w http.ResponseWriter, r *http.Request) {
	id, ok := orderID(w, r)
	if !ok {
		return
	}

	var req AttachPaymentRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	var amount *int64
	if req.Amount != nil {
		cents := floatToCents(*req.Amount)
		amount = &cents
	}

	p, err := h.checkout.AttachPaymentMethod(r.Context(), id, req.Method, amount)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, FromPayment(p))
}

// Detach handles DELETE /api/v1/orders/{id}/payments/{paymentID}
func (h *PaymentController) Detach(w http.ResponseWriter, r *http.Request) {
	id, ok := orderID(w, r)
	if !ok {
		return
	}

	if err := h.checkout.DetachPayment(r.Context(), id, chi.URLParam(r, "paymentID")); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Process handles POST /api/v1/orders/{id}/payments/{paymentID}/process
func (h *PaymentController) Process(w http.ResponseWriter, r *http.Request) {
	id, ok := orderID(w, r)
	if !ok {
		return
	}
	paymentID := chi.URLParam(r, "paymentID")

	var req ProcessPaymentRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	resp, err := h.checkout.ProcessPayment(r.Context(), id, paymentID, req.Action)
	if err != nil {
		writeError(w, err)
		return
	}

	p, err := h.paymentRepo.GetByIdentifier(r.Context(), paymentID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ProcessResponse{
		Response: FromProviderResponse(resp),
		Payment:  FromPayment(p),
	})
}

// Get handles GET /api/v1/payments/{id}
func (h *PaymentController) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.paymentRepo.GetByIdentifier(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, FromPayment(p))
}
