package controller

import (
	"time"

	"github.com/commercekit/checkout/internal/domain/order"
	"github.com/commercekit/checkout/internal/domain/payment"
	"github.com/commercekit/checkout/internal/providers"
)

// --- Request DTOs ---
// These DTOs handle HTTP/JSON concerns (float64 for money, string for IDs,
// validation tags). Controllers convert them before calling business logic.

// CreateOrderRequest holds the input for opening a new order.
type CreateOrderRequest struct {
	Currency string `json:"currency" validate:"required,len=3"`
}

// AddItemRequest holds the input for placing a line on an order.
type AddItemRequest struct {
	SKU         string  `json:"sku" validate:"required"`
	Description string  `json:"description"`
	UnitPrice   float64 `json:"unit_price" validate:"required,gt=0"`
	Quantity    int     `json:"quantity" validate:"required,gt=0"`
}

// SetShippingRequest holds the input for choosing a shipping method.
type SetShippingRequest struct {
	Code string  `json:"code" validate:"required"`
	Name string  `json:"name"`
	Cost float64 `json:"cost" validate:"gte=0"`
}

// AttachPaymentRequest holds the input for attaching a payment method.
// Amount is optional: when absent the payment settles the order balance
// at processing time.
type AttachPaymentRequest struct {
	Method string   `json:"method" validate:"required"`
	Amount *float64 `json:"amount,omitempty" validate:"omitempty,gt=0"`
}

// ProcessPaymentRequest holds the action to run against the provider.
type ProcessPaymentRequest struct {
	Action string `json:"action" validate:"required,oneof=purchase authorize capture void credit"`
}

// TransitionRequest holds a named order state transition.
type TransitionRequest struct {
	Transition string `json:"transition" validate:"required"`
}

// --- Response DTOs ---

// OrderResponse represents an order in API responses.
type OrderResponse struct {
	ID          string               `json:"id"`
	Currency    string               `json:"currency"`
	State       string               `json:"state"`
	Items       []ItemResponse       `json:"items"`
	Adjustments []AdjustmentResponse `json:"adjustments"`
	Shipments   []ShipmentResponse   `json:"shipments"`
	Payments    []PaymentRefResponse `json:"payments"`
	ItemsTotal  float64              `json:"items_total"`
	Total       float64              `json:"total"`
	Balance     *float64             `json:"balance,omitempty"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
}

// ItemResponse represents one order line.
type ItemResponse struct {
	SKU         string  `json:"sku"`
	Description string  `json:"description"`
	UnitPrice   float64 `json:"unit_price"`
	Quantity    int     `json:"quantity"`
	Total       float64 `json:"total"`
}

// AdjustmentResponse represents one ledger entry.
type AdjustmentResponse struct {
	Label  string  `json:"label"`
	Amount float64 `json:"amount"`
}

// ShipmentResponse represents a shipment and the lines it carries.
type ShipmentResponse struct {
	ID         string   `json:"id"`
	MethodCode string   `json:"method_code"`
	MethodName string   `json:"method_name"`
	Cost       float64  `json:"cost"`
	SKUs       []string `json:"skus"`
}

// PaymentRefResponse is the order's view of an attached payment.
type PaymentRefResponse struct {
	ID            string   `json:"id"`
	SettledAmount *float64 `json:"settled_amount,omitempty"`
}

// PaymentResponse represents a payment aggregate in API responses.
type PaymentResponse struct {
	ID           string                `json:"id"`
	State        string                `json:"state"`
	Amount       *float64              `json:"amount,omitempty"`
	Currency     string                `json:"currency,omitempty"`
	Frozen       bool                  `json:"frozen"`
	Method       string                `json:"method,omitempty"`
	Transactions []TransactionResponse `json:"transactions"`
	LastResponse *ProviderResponse     `json:"last_response,omitempty"`
	CreatedAt    time.Time             `json:"created_at"`
	UpdatedAt    time.Time             `json:"updated_at"`
}

// TransactionResponse represents one ledger record of a provider exchange.
type TransactionResponse struct {
	Amount        float64   `json:"amount"`
	Currency      string    `json:"currency"`
	TransactionID string    `json:"transaction_id,omitempty"`
	Status        string    `json:"status"`
	Reason        string    `json:"reason,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// ProviderResponse represents the provider's answer to an action.
type ProviderResponse struct {
	Status        string `json:"status"`
	TransactionID string `json:"transaction_id,omitempty"`
	RedirectURL   string `json:"redirect_url,omitempty"`
	Reason        string `json:"reason,omitempty"`
}

// ProcessResponse pairs the provider outcome with the updated payment.
type ProcessResponse struct {
	Response ProviderResponse `json:"response"`
	Payment  *PaymentResponse `json:"payment"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// --- Conversion helpers ---

// FromOrder converts a domain order to API response.
func FromOrder(o *order.Order) *OrderResponse {
	resp := &OrderResponse{
		ID:          o.ID.String(),
		Currency:    o.Currency,
		State:       string(o.State),
		Items:       make([]ItemResponse, 0, len(o.Items)),
		Adjustments: make([]AdjustmentResponse, 0, len(o.Adjustments)),
		Shipments:   make([]ShipmentResponse, 0, len(o.Shipments)),
		Payments:    make([]PaymentRefResponse, 0, len(o.Payments)),
		ItemsTotal:  centsToFloat(o.ItemsTotal.Amount),
		Total:       centsToFloat(o.Total.Amount),
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
	}

	for _, item := range o.Items {
		resp.Items = append(resp.Items, ItemResponse{
			SKU:         item.SKU,
			Description: item.Description,
			UnitPrice:   centsToFloat(item.UnitPrice.Amount),
			Quantity:    item.Quantity,
			Total:       centsToFloat(item.Total.Amount),
		})
	}
	for _, adj := range o.Adjustments {
		resp.Adjustments = append(resp.Adjustments, AdjustmentResponse{
			Label:  adj.Label,
			Amount: centsToFloat(adj.Amount.Amount),
		})
	}
	for _, s := range o.Shipments {
		sr := ShipmentResponse{
			ID:         s.Identifier,
			MethodCode: s.Method.Code,
			MethodName: s.Method.Name,
			Cost:       centsToFloat(s.Method.Cost.Amount),
			SKUs:       make([]string, 0, len(s.Items)),
		}
		for _, item := range s.Items {
			sr.SKUs = append(sr.SKUs, item.SKU)
		}
		resp.Shipments = append(resp.Shipments, sr)
	}
	for _, p := range o.Payments {
		ref := PaymentRefResponse{ID: p.Identifier()}
		if settled, ok := p.SettledAmount(); ok {
			f := centsToFloat(settled.Amount)
			ref.SettledAmount = &f
		}
		resp.Payments = append(resp.Payments, ref)
	}

	if balance, err := o.Balance(); err == nil {
		f := centsToFloat(balance.Amount)
		resp.Balance = &f
	}
	return resp
}

// FromPayment converts a domain payment to API response.
func FromPayment(p *payment.Payment) *PaymentResponse {
	resp := &PaymentResponse{
		ID:           p.ID,
		State:        string(p.State),
		Frozen:       p.Frozen,
		Transactions: make([]TransactionResponse, 0, len(p.Transactions)),
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
	if p.Amount != nil {
		f := centsToFloat(p.Amount.Amount)
		resp.Amount = &f
		resp.Currency = p.Amount.Currency
	}
	if p.Method != nil {
		resp.Method = p.Method.Code
	}
	for _, tx := range p.Transactions {
		resp.Transactions = append(resp.Transactions, TransactionResponse{
			Amount:        centsToFloat(tx.Amount.Amount),
			Currency:      tx.Amount.Currency,
			TransactionID: tx.TransactionID,
			Status:        string(tx.Status),
			Reason:        tx.Reason,
			CreatedAt:     tx.CreatedAt,
		})
	}
	if p.LastResponse != nil {
		r := FromProviderResponse(p.LastResponse)
		resp.LastResponse = &r
	}
	return resp
}

// FromProviderResponse converts a provider response to its API shape.
func FromProviderResponse(r *providers.Response) ProviderResponse {
	return ProviderResponse{
		Status:        string(r.Status),
		TransactionID: r.TransactionID,
		RedirectURL:   r.RedirectURL,
		Reason:        r.Reason,
	}
}

// floatToCents converts a float major-unit amount to minor units.
func floatToCents(f float64) int64 {
	return int64(f*100 + 0.5)
}

// centsToFloat converts minor units to a float major-unit amount.
func centsToFloat(cents int64) float64 {
	return float64(cents) / 100.0
}
