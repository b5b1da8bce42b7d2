// Package upload implements the orchestration point for every write request:
// content-type and size pre-checks followed by the verifier chain, before any
// byte reaches the persistence layer.
package upload

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"

	apperrors "github.com/neoskop/hostit/internal/errors"
	"github.com/neoskop/hostit/internal/verifier"
)

// wildcardType accepts every content type when present in the allow-list.
const wildcardType = "*/*"

// Gate validates inbound writes. It is configured once at startup and is
// immutable afterwards, so it is safe for concurrent use.
type Gate struct {
	acceptedTypes map[string]struct{}
	acceptAll     bool
	limit         int64
	chain         *verifier.Chain
	logger        *slog.Logger
}

// NewGate creates a gate with the given accepted MIME types, byte ceiling
// and verifier chain.
func NewGate(acceptedTypes []string, limit int64, chain *verifier.Chain, logger *slog.Logger) *Gate {
	gate := &Gate{
		acceptedTypes: make(map[string]struct{}, len(acceptedTypes)),
		limit:         limit,
		chain:         chain,
		logger:        logger,
	}
	for _, t := range acceptedTypes {
		if t == wildcardType {
			gate.acceptAll = true
			continue
		}
		gate.acceptedTypes[t] = struct{}{}
	}
	return gate
}

// AcceptsType reports whether the declared content type is allow-listed.
// Media type parameters (charset etc.) are ignored for the comparison.
func (g *Gate) AcceptsType(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	if g.acceptAll {
		return true
	}
	_, ok := g.acceptedTypes[mediaType]
	return ok
}

// Accept runs the full validation pipeline for a raw upload:
//
//  1. content-type allow-list (before any verifier runs),
//  2. pre-body verifiers (so an unauthorized upload is rejected without the
//     payload ever being buffered),
//  3. bounded buffering within the configured ceiling,
//  4. post-body verifiers against the buffered bytes.
//
// On a full pass it returns the validated bytes and the context accumulated
// by the verifiers (carrying the decoded capability, if any).
func (g *Gate) Accept(ctx context.Context, r *http.Request) (context.Context, []byte, error) {
	contentType := r.Header.Get("Content-Type")
	if !g.AcceptsType(contentType) {
		g.logger.Debug("upload refused: content type not accepted",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("content_type", contentType))
		return ctx, nil, apperrors.ErrUnsupportedMediaType
	}

	ctx, err := g.chain.Run(ctx, r, verifier.PhasePreBody, nil)
	if err != nil {
		return ctx, nil, err
	}

	body, err := g.buffer(r)
	if err != nil {
		return ctx, nil, err
	}

	ctx, err = g.chain.Run(ctx, r, verifier.PhasePostBody, body)
	if err != nil {
		return ctx, nil, err
	}

	g.logger.Debug("upload accepted",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("content_type", contentType),
		slog.Int("size", len(body)))

	return ctx, body, nil
}

// Authorize runs only the pre-body verifiers. It is used for writes whose
// body is structured (tags, info) or absent (delete), where the raw-upload
// buffering and scanning do not apply but authorization still does.
func (g *Gate) Authorize(ctx context.Context, r *http.Request) (context.Context, error) {
	return g.chain.Run(ctx, r, verifier.PhasePreBody, nil)
}

// Limit reports the configured byte ceiling.
func (g *Gate) Limit() int64 {
	return g.limit
}

// buffer reads the request body up to the configured ceiling. It never
// materializes attacker-controlled input past the limit.
func (g *Gate) buffer(r *http.Request) ([]byte, error) {
	reader := http.MaxBytesReader(nil, r.Body, g.limit)
	body, err := io.ReadAll(reader)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return nil, apperrors.ErrPayloadTooLarge
		}
		// Client disconnects land here; no outcome is produced.
		return nil, apperrors.Wrap(err, "failed to read request body")
	}
	return body, nil
}
