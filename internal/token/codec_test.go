package token

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

const testSecret = "123456"

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestCodec(t *testing.T, opts ...CodecOption) *Codec {
	t.Helper()
	codec, err := NewCodec(testSecret, opts...)
	require.NoError(t, err)
	return codec
}

func TestNewCodec(t *testing.T) {
	t.Run("rejects empty secret", func(t *testing.T) {
		_, err := NewCodec("")
		assert.Error(t, err)
	})

	t.Run("rejects non-HMAC algorithm", func(t *testing.T) {
		_, err := NewCodec(testSecret, WithAlgorithm("RS256"))
		assert.Error(t, err)
	})

	t.Run("rejects unknown algorithm", func(t *testing.T) {
		_, err := NewCodec(testSecret, WithAlgorithm("HS1024"))
		assert.Error(t, err)
	})

	t.Run("accepts HMAC family", func(t *testing.T) {
		for _, alg := range []string{"HS256", "HS384", "HS512"} {
			_, err := NewCodec(testSecret, WithAlgorithm(alg))
			assert.NoError(t, err, alg)
		}
	})
}

func TestIssueCreatesToken(t *testing.T) {
	codec := newTestCodec(t)

	signed, err := codec.Issue(Scopes{})
	require.NoError(t, err)
	assert.NotEmpty(t, signed)
}

func TestVerifyRoundTrip(t *testing.T) {
	codec := newTestCodec(t)
	before := time.Now()

	signed, err := codec.Issue(Scopes{Put: "abc", Del: "def", Admin: true})
	require.NoError(t, err)

	capability, ok := codec.Verify(signed)
	require.True(t, ok)
	assert.Equal(t, "abc", capability.Put)
	assert.Equal(t, "def", capability.Del)
	assert.True(t, capability.Admin)
	assert.Equal(t, Audience, capability.Audience)
	assert.Equal(t, DefaultIssuer, capability.Issuer)
	assert.WithinDuration(t, before, capability.IssuedAt, time.Second)
	assert.WithinDuration(t, before.Add(DefaultTTL), capability.ExpiresAt, time.Second)
}

func TestVerifyRefusesTokenWithDifferentSecret(t *testing.T) {
	codec := newTestCodec(t)
	other, err := NewCodec("654321")
	require.NoError(t, err)

	signed, err := other.Issue(Scopes{Admin: true})
	require.NoError(t, err)

	capability, ok := codec.Verify(signed)
	assert.False(t, ok)
	assert.Nil(t, capability)
}

func TestVerifyRefusesTokenWithWrongAudience(t *testing.T) {
	codec := newTestCodec(t)

	claims := jwt.MapClaims{
		"iat": jwt.NewNumericDate(time.Now()),
		"exp": jwt.NewNumericDate(time.Now().Add(30 * time.Minute)),
		"aud": "urn:foobar",
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, ok := codec.Verify(signed)
	assert.False(t, ok)
}

func TestVerifyRefusesExpiredToken(t *testing.T) {
	codec := newTestCodec(t)

	signed, err := codec.Issue(Scopes{}, IssueOptions{TTL: -time.Minute})
	require.NoError(t, err)

	_, ok := codec.Verify(signed)
	assert.False(t, ok)
}

func TestVerifyRefusesMalformedToken(t *testing.T) {
	codec := newTestCodec(t)

	for _, tokenString := range []string{"", "garbage", "a.b.c"} {
		_, ok := codec.Verify(tokenString)
		assert.False(t, ok, tokenString)
	}
}

func TestVerifyRefusesTokenWithoutExpiry(t *testing.T) {
	codec := newTestCodec(t)

	claims := jwt.MapClaims{
		"iat": jwt.NewNumericDate(time.Now()),
		"aud": Audience,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, ok := codec.Verify(signed)
	assert.False(t, ok)
}

func TestVerifyAlgorithmAllowList(t *testing.T) {
	codec := newTestCodec(t)

	claims := jwt.MapClaims{
		"iat": jwt.NewNumericDate(time.Now()),
		"exp": jwt.NewNumericDate(time.Now().Add(30 * time.Minute)),
		"aud": Audience,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS384, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	// Configured algorithm only: HS384 token refused.
	_, ok := codec.Verify(signed)
	assert.False(t, ok)

	// Widened allow-list accepts it, and the configured algorithm stays included.
	_, ok = codec.Verify(signed, VerifyOptions{Algorithms: []string{"HS384"}})
	assert.True(t, ok)

	own, err := codec.Issue(Scopes{})
	require.NoError(t, err)
	_, ok = codec.Verify(own, VerifyOptions{Algorithms: []string{"HS384"}})
	assert.True(t, ok)
}

func TestIssueExtraClaimsCannotOverrideRegisteredClaims(t *testing.T) {
	codec := newTestCodec(t)

	signed, err := codec.Issue(Scopes{Put: "abc"}, IssueOptions{
		Extra: map[string]any{
			"aud":    "urn:evil",
			"put":    "everything",
			"rollno": 7,
		},
	})
	require.NoError(t, err)

	capability, ok := codec.Verify(signed)
	require.True(t, ok)
	assert.Equal(t, Audience, capability.Audience)
	assert.Equal(t, "abc", capability.Put)
}

func TestIssueOverridesIssuer(t *testing.T) {
	codec := newTestCodec(t)

	signed, err := codec.Issue(Scopes{}, IssueOptions{Issuer: "alice"})
	require.NoError(t, err)

	capability, ok := codec.Verify(signed)
	require.True(t, ok)
	assert.Equal(t, "alice", capability.Issuer)
}

func TestCapabilityContext(t *testing.T) {
	ctx := context.Background()

	_, ok := CapabilityFrom(ctx)
	assert.False(t, ok)

	capability := &Capability{Issuer: "alice", Admin: true}
	ctx = WithCapability(ctx, capability)

	got, ok := CapabilityFrom(ctx)
	require.True(t, ok)
	assert.Equal(t, capability, got)
}
