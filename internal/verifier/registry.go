package verifier

import (
	"fmt"
	"log/slog"

	"github.com/neoskop/hostit/internal/token"
)

// Deps carries the startup-configured collaborators verifier factories may use.
type Deps struct {
	// Logger is the structured application logger.
	Logger *slog.Logger
	// Codec decodes capability tokens. May be nil when no secret is
	// configured; the token verifier then passes every request.
	Codec *token.Codec
	// ClamAVCommand is the scanner binary name to look up on PATH.
	ClamAVCommand string
	// ScanObserver records scan outcomes. May be nil.
	ScanObserver ScanObserver
}

// factories is the closed set of known verifier implementations. Verifiers
// are selected by name from configuration and resolved exactly once at
// startup; there is no dynamic loading.
var factories = map[string]func(deps Deps) Verifier{
	"token": func(deps Deps) Verifier {
		return NewTokenVerifier(deps.Codec, deps.Logger)
	},
	"clamav": func(deps Deps) Verifier {
		return NewClamAVVerifier(deps.ClamAVCommand, deps.Logger, deps.ScanObserver)
	},
}

// BuildChain resolves the named verifiers and assembles them into a chain,
// preserving order. Unknown names are a startup error.
func BuildChain(names []string, deps Deps) (*Chain, error) {
	verifiers := make([]Verifier, 0, len(names))
	for _, name := range names {
		factory, ok := factories[name]
		if !ok {
			return nil, fmt.Errorf("unknown verifier: %q", name)
		}
		verifiers = append(verifiers, factory(deps))
	}
	return NewChain(verifiers...), nil
}
