package verifier

import (
	"context"
	"net/http"
)

// Chain is an ordered sequence of verifiers, assembled once at startup and
// immutable for the process lifetime.
//
// Verifiers run strictly sequentially, never in parallel: later verifiers
// may observe context state attached by earlier ones, and pre-body checks
// must be able to short-circuit before the expensive post-body work begins.
type Chain struct {
	verifiers []Verifier
}

// NewChain creates a chain running the given verifiers in order.
func NewChain(verifiers ...Verifier) *Chain {
	return &Chain{verifiers: verifiers}
}

// Run executes the verifiers of the given phase in registration order,
// threading the context through each. It stops at the first rejection and
// returns the rejecting verifier's error; on a full pass it returns the
// accumulated context and a nil error.
func (c *Chain) Run(ctx context.Context, r *http.Request, phase Phase, body []byte) (context.Context, error) {
	for _, v := range c.verifiers {
		if v.Phase() != phase {
			continue
		}
		next, err := v.Verify(ctx, r, body)
		if err != nil {
			return ctx, err
		}
		if next != nil {
			ctx = next
		}
	}
	return ctx, nil
}

// Len reports the number of registered verifiers.
func (c *Chain) Len() int {
	return len(c.verifiers)
}
