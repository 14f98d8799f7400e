package payment

import (
	"github.com/commercekit/checkout/internal/providers"
	"github.com/commercekit/checkout/pkg/fsm"
)

// State is the lifecycle state of a payment.
type State string

const (
	StateUnpaid     State = "unpaid"
	StateInProgress State = "in_progress"
	StateAuthorized State = "authorized"
	StatePaid       State = "paid"
	StateRefunded   State = "refunded"
)

// TransitionRedirect is applied when a provider returns a redirect-style
// pending outcome; the provider actions double as the other transition
// names.
const TransitionRedirect = "redirect"

// Transitions is the payment state table. Refunded is terminal. Void has
// two arcs: it releases an uncaptured hold back to unpaid and reverses a
// captured payment to refunded.
var Transitions = fsm.Table[State]{
	providers.ActionPurchase: {
		StateUnpaid:     StatePaid,
		StateInProgress: StatePaid,
	},
	providers.ActionAuthorize: {
		StateUnpaid:     StateAuthorized,
		StateInProgress: StateAuthorized,
	},
	providers.ActionCapture: {
		StateAuthorized: StatePaid,
	},
	providers.ActionVoid: {
		StateAuthorized: StateUnpaid,
		StatePaid:       StateRefunded,
	},
	providers.ActionCredit: {
		StatePaid: StateRefunded,
	},
	TransitionRedirect: {
		StateUnpaid: StateInProgress,
	},
}

// IsTerminal reports whether the state admits no further transitions.
func (s State) IsTerminal() bool {
	return s == StateRefunded
}
