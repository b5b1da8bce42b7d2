package verifier

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/neoskop/hostit/internal/errors"
	"github.com/neoskop/hostit/internal/token"
)

func newTokenVerifier(t *testing.T) (*TokenVerifier, *token.Codec) {
	t.Helper()
	codec, err := token.NewCodec("123456")
	require.NoError(t, err)
	return NewTokenVerifier(codec, slog.New(slog.DiscardHandler)), codec
}

func issue(t *testing.T, codec *token.Codec, scopes token.Scopes) string {
	t.Helper()
	signed, err := codec.Issue(scopes)
	require.NoError(t, err)
	return signed
}

func TestTokenVerifierPassesReads(t *testing.T) {
	v, _ := newTokenVerifier(t)

	for _, method := range []string{http.MethodGet, http.MethodHead, http.MethodOptions} {
		req := httptest.NewRequest(method, "/abc", nil)
		_, err := v.Verify(context.Background(), req, nil)
		assert.NoError(t, err, method)
	}
}

func TestTokenVerifierRejectsMissingCredential(t *testing.T) {
	v, _ := newTokenVerifier(t)

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	_, err := v.Verify(context.Background(), req, nil)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestTokenVerifierRejectsInvalidToken(t *testing.T) {
	v, _ := newTokenVerifier(t)

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	_, err := v.Verify(context.Background(), req, nil)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestTokenVerifierRejectsForeignSecret(t *testing.T) {
	v, _ := newTokenVerifier(t)
	other, err := token.NewCodec("654321")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("Authorization", "Bearer "+issue(t, other, token.Scopes{Admin: true}))
	_, verifyErr := v.Verify(context.Background(), req, nil)
	assert.ErrorIs(t, verifyErr, apperrors.ErrForbidden)
}

func TestTokenVerifierCreateRequiresOnlyValidToken(t *testing.T) {
	v, codec := newTokenVerifier(t)

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("Authorization", "Bearer "+issue(t, codec, token.Scopes{}))
	ctx, err := v.Verify(context.Background(), req, nil)
	require.NoError(t, err)

	capability, ok := token.CapabilityFrom(ctx)
	require.True(t, ok)
	assert.Equal(t, token.DefaultIssuer, capability.Issuer)
}

func TestTokenVerifierUpdateScope(t *testing.T) {
	v, codec := newTokenVerifier(t)

	t.Run("no scopes is forbidden", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPut, "/anyid", nil)
		req.Header.Set("Authorization", "Bearer "+issue(t, codec, token.Scopes{}))
		_, err := v.Verify(context.Background(), req, nil)
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
	})

	t.Run("matching put scope passes", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPut, "/abc", nil)
		req.Header.Set("Authorization", "Bearer "+issue(t, codec, token.Scopes{Put: "abc"}))
		_, err := v.Verify(context.Background(), req, nil)
		assert.NoError(t, err)
	})

	t.Run("mismatched put scope is forbidden", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPut, "/xyz", nil)
		req.Header.Set("Authorization", "Bearer "+issue(t, codec, token.Scopes{Put: "abc"}))
		_, err := v.Verify(context.Background(), req, nil)
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
	})

	t.Run("scope that is a substring of the id grants nothing", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPut, "/1234/tags", nil)
		req.Header.Set("Authorization", "Bearer "+issue(t, codec, token.Scopes{Put: "1"}))
		_, err := v.Verify(context.Background(), req, nil)
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
	})

	t.Run("put scope covers subresource paths of the same id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPut, "/abc/tags", nil)
		req.Header.Set("Authorization", "Bearer "+issue(t, codec, token.Scopes{Put: "abc"}))
		_, err := v.Verify(context.Background(), req, nil)
		assert.NoError(t, err)
	})

	t.Run("del scope does not authorize update", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPut, "/abc", nil)
		req.Header.Set("Authorization", "Bearer "+issue(t, codec, token.Scopes{Del: "abc"}))
		_, err := v.Verify(context.Background(), req, nil)
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
	})
}

func TestTokenVerifierDeleteScope(t *testing.T) {
	v, codec := newTokenVerifier(t)

	t.Run("matching del scope passes", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, "/abc", nil)
		req.Header.Set("Authorization", "Bearer "+issue(t, codec, token.Scopes{Del: "abc"}))
		_, err := v.Verify(context.Background(), req, nil)
		assert.NoError(t, err)
	})

	t.Run("put scope does not authorize delete", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, "/abc", nil)
		req.Header.Set("Authorization", "Bearer "+issue(t, codec, token.Scopes{Put: "abc"}))
		_, err := v.Verify(context.Background(), req, nil)
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
	})
}

func TestTokenVerifierAdminSupersedesScopes(t *testing.T) {
	v, codec := newTokenVerifier(t)
	admin := issue(t, codec, token.Scopes{Admin: true})

	for _, tt := range []struct {
		method string
		path   string
	}{
		{http.MethodPut, "/anything"},
		{http.MethodDelete, "/anything"},
		{http.MethodDelete, "/else"},
	} {
		req := httptest.NewRequest(tt.method, tt.path, nil)
		req.Header.Set("Authorization", "Bearer "+admin)
		_, err := v.Verify(context.Background(), req, nil)
		assert.NoError(t, err, "%s %s", tt.method, tt.path)
	}
}

func TestTokenVerifierQueryParameterFallback(t *testing.T) {
	v, codec := newTokenVerifier(t)

	req := httptest.NewRequest(http.MethodPut, "/abc?token="+issue(t, codec, token.Scopes{Put: "abc"}), nil)
	_, err := v.Verify(context.Background(), req, nil)
	assert.NoError(t, err)
}

func TestTokenVerifierBearerPrefixIsCaseInsensitive(t *testing.T) {
	v, codec := newTokenVerifier(t)

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("Authorization", "bearer "+issue(t, codec, token.Scopes{}))
	_, err := v.Verify(context.Background(), req, nil)
	assert.NoError(t, err)
}

func TestTokenVerifierAttachesCapabilityToContext(t *testing.T) {
	v, codec := newTokenVerifier(t)

	signed, err := codec.Issue(token.Scopes{Put: "abc"}, token.IssueOptions{Issuer: "alice"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPut, "/abc", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	ctx, verifyErr := v.Verify(context.Background(), req, nil)
	require.NoError(t, verifyErr)

	capability, ok := token.CapabilityFrom(ctx)
	require.True(t, ok)
	assert.Equal(t, "alice", capability.Issuer)
	assert.Equal(t, "abc", capability.Put)
}

func TestTokenVerifierWithoutSecretPassesEverything(t *testing.T) {
	v := NewTokenVerifier(nil, slog.New(slog.DiscardHandler))

	req := httptest.NewRequest(http.MethodDelete, "/abc", nil)
	_, err := v.Verify(context.Background(), req, nil)
	assert.NoError(t, err)
}

func TestTokenVerifierIsPreBody(t *testing.T) {
	v, _ := newTokenVerifier(t)
	assert.Equal(t, PhasePreBody, v.Phase())
	assert.Equal(t, "token", v.Name())
}
