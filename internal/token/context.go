package token

import "context"

// capabilityKey is a context key type for storing decoded capabilities.
type capabilityKey struct{}

// WithCapability stores a decoded capability in the context.
// This is typically called by the token verifier after successful validation
// so downstream handlers can record the issuer as creator/editor.
func WithCapability(ctx context.Context, capability *Capability) context.Context {
	return context.WithValue(ctx, capabilityKey{}, capability)
}

// CapabilityFrom retrieves a decoded capability from the context.
// Returns (capability, true) if present, or (nil, false) if no capability was set.
func CapabilityFrom(ctx context.Context) (*Capability, bool) {
	capability, ok := ctx.Value(capabilityKey{}).(*Capability)
	return capability, ok
}
