package verifier

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	apperrors "github.com/neoskop/hostit/internal/errors"
	"github.com/neoskop/hostit/internal/token"
)

// TokenVerifier authorizes mutating requests with capability tokens.
//
// Reads are unauthenticated: any method outside {POST, PUT, DELETE} passes
// untouched. For mutations the verifier extracts a bearer token, decodes it
// and applies the scope rule for the targeted file. A missing credential is
// an unauthorized rejection; an invalid or insufficient one is forbidden.
//
// On success the decoded capability is attached to the returned context so
// handlers can record the issuer as creator/editor.
type TokenVerifier struct {
	codec  *token.Codec
	logger *slog.Logger
}

// NewTokenVerifier creates a token verifier. When codec is nil (no secret
// configured) the verifier passes every request; this fail-open mode is
// announced with a single prominent warning at startup.
func NewTokenVerifier(codec *token.Codec, logger *slog.Logger) *TokenVerifier {
	if codec == nil {
		logger.Warn("no token secret configured, all access allowed")
	}
	return &TokenVerifier{codec: codec, logger: logger}
}

// Name implements Verifier.
func (v *TokenVerifier) Name() string { return "token" }

// Phase implements Verifier. Authorization runs before the body is buffered
// so unauthorized uploads are rejected without reading the stream.
func (v *TokenVerifier) Phase() Phase { return PhasePreBody }

// Verify implements Verifier.
func (v *TokenVerifier) Verify(ctx context.Context, r *http.Request, _ []byte) (context.Context, error) {
	if v.codec == nil {
		return ctx, nil
	}

	switch r.Method {
	case http.MethodPost, http.MethodPut, http.MethodDelete:
	default:
		return ctx, nil
	}

	tokenString := extractToken(r)
	if tokenString == "" {
		v.logger.Debug("token verifier: no credential presented",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path))
		return ctx, apperrors.ErrUnauthorized
	}

	capability, ok := v.codec.Verify(tokenString)
	if !ok {
		// The codec does not say why; neither do we.
		v.logger.Debug("token verifier: invalid token",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path))
		return ctx, apperrors.ErrForbidden
	}

	ctx = token.WithCapability(ctx, capability)

	switch r.Method {
	case http.MethodPut:
		if capability.Admin {
			return ctx, nil
		}
		if capability.Put != "" && capability.Put == targetID(r.URL.Path) {
			return ctx, nil
		}
		return ctx, apperrors.ErrForbidden

	case http.MethodDelete:
		if capability.Admin {
			return ctx, nil
		}
		if capability.Del != "" && capability.Del == targetID(r.URL.Path) {
			return ctx, nil
		}
		return ctx, apperrors.ErrForbidden
	}

	// POST: the file does not exist yet, so no resource-scoped check
	// applies; a structurally valid, unexpired token suffices.
	return ctx, nil
}

// extractToken reads the bearer token from the Authorization header
// (case-insensitive) or, as a fallback, from the "token" query parameter.
func extractToken(r *http.Request) string {
	const bearerPrefix = "bearer "
	authHeader := r.Header.Get("Authorization")
	if len(authHeader) >= len(bearerPrefix) &&
		strings.EqualFold(authHeader[:len(bearerPrefix)], bearerPrefix) {
		return authHeader[len(bearerPrefix):]
	}
	return r.URL.Query().Get("token")
}

// targetID extracts the targeted file id from the request path: the first
// path segment, so both /abc and /abc/tags target "abc". The scope must
// equal the id exactly; a scope that is merely a substring of a different
// id grants nothing.
func targetID(path string) string {
	path = strings.TrimPrefix(path, "/")
	if i := strings.IndexByte(path, '/'); i >= 0 {
		return path[:i]
	}
	return path
}
