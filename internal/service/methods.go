package service

import (
	"fmt"

	domainErrors "github.com/commercekit/checkout/internal/domain/errors"
	"github.com/commercekit/checkout/internal/domain/payment"
)

// MethodRegistry resolves payment method codes to configured methods.
// Built at startup from configuration plus the provider factory.
type MethodRegistry struct {
	methods map[string]*payment.Method
}

func NewMethodRegistry(methods ...*payment.Method) *MethodRegistry {
	r := &MethodRegistry{methods: make(map[string]*payment.Method)}
	for _, m := range methods {
		r.methods[m.Code] = m
	}
	return r
}

// Resolve implements payment.Resolver.
func (r *MethodRegistry) Resolve(code string) (*payment.Method, error) {
	m, ok := r.methods[code]
	if !ok {
		return nil, fmt.Errorf("payment method %q: %w", code, domainErrors.ErrPaymentMethodUnknown)
	}
	return m, nil
}

// Codes lists the registered method codes.
func (r *MethodRegistry) Codes() []string {
	codes := make([]string, 0, len(r.methods))
	for code := range r.methods {
		codes = append(codes, code)
	}
	return codes
}
