// Package verifier implements the upload verification chain: an ordered set
// of independent checks that run against every inbound write request before
// the body is persisted. Verifiers are composable and ignorant of each
// other, except via state they explicitly attach to the request context
// (such as the decoded capability token).
package verifier

import (
	"context"
	"net/http"
)

// Phase declares when a verifier runs relative to body buffering.
type Phase int

const (
	// PhasePreBody verifiers run before the request body is buffered, so
	// they can reject a request without the payload ever being
	// materialized in memory. They receive a nil body.
	PhasePreBody Phase = iota

	// PhasePostBody verifiers require the complete buffered content.
	PhasePostBody
)

// Verifier is a single independent check against an inbound request.
//
// Verify returns a possibly-extended context and a nil error to pass, or a
// domain taxonomy error to reject. Rejections are values, never panics; the
// caller maps them to HTTP statuses. The returned context carries any state
// the verifier wants to hand to later verifiers or handlers.
type Verifier interface {
	// Name identifies the verifier in the startup registry and in logs.
	Name() string

	// Phase reports whether the verifier runs before or after body buffering.
	Phase() Phase

	// Verify checks the request. body is nil for pre-body verifiers.
	Verify(ctx context.Context, r *http.Request, body []byte) (context.Context, error)
}
