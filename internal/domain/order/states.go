package order

import "github.com/commercekit/checkout/pkg/fsm"

// State is the lifecycle state of an order.
type State string

const (
	StateCart        State = "cart"
	StateCheckout    State = "checkout"
	StatePartialPaid State = "partial_paid"
	StatePaid        State = "paid"
	StateProcessing  State = "processing"
	StateSent        State = "sent"
	StateDelivered   State = "delivered"
	StateCancelled   State = "cancelled"
	StateReturned    State = "returned"
)

// Transition names accepted by Apply.
const (
	TransitionCheckout     = "checkout"
	TransitionPartiallyPay = "partially_pay"
	TransitionPay          = "pay"
	TransitionProcess      = "process"
	TransitionShip         = "ship"
	TransitionDeliver      = "deliver"
	TransitionCancel       = "cancel"
	TransitionReturn       = "return"
)

// Transitions is the order state table. Cancellation is reachable from any
// non-terminal state; a return only from a delivered order.
var Transitions = fsm.Table[State]{
	TransitionCheckout:     {StateCart: StateCheckout},
	TransitionPartiallyPay: {StateCheckout: StatePartialPaid},
	TransitionPay: {
		StateCheckout:    StatePaid,
		StatePartialPaid: StatePaid,
	},
	TransitionProcess: {StatePaid: StateProcessing},
	TransitionShip:    {StateProcessing: StateSent},
	TransitionDeliver: {StateSent: StateDelivered},
	TransitionCancel: {
		StateCart:        StateCancelled,
		StateCheckout:    StateCancelled,
		StatePartialPaid: StateCancelled,
		StatePaid:        StateCancelled,
		StateProcessing:  StateCancelled,
		StateSent:        StateCancelled,
	},
	TransitionReturn: {StateDelivered: StateReturned},
}

// IsTerminal reports whether the state admits no further transitions.
// Delivered is not terminal: a delivered order can still be returned.
func (s State) IsTerminal() bool {
	return s == StateCancelled || s == StateReturned
}
