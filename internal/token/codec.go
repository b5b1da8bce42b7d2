// Package token implements the capability token codec. Tokens are compact
// signed strings (JWT, HMAC family) carrying the put/del/adm scopes that
// authorize mutations on hosted files. Possession of a validly signed,
// unexpired token is the sole authorization artifact; tokens are never
// stored server-side and cannot be revoked before expiry.
package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/neoskop/hostit/internal/errors"
)

// Audience is the fixed audience claim identifying this service. Tokens
// minted for any other audience are invalid here.
const Audience = "urn:hostit"

// DefaultIssuer is the issuer claim used when none is configured.
const DefaultIssuer = "urn:hostit"

// DefaultTTL is the lifetime of issued tokens when no override is given.
const DefaultTTL = 30 * time.Minute

// defaultAlgorithm is the single declared signing algorithm of the codec.
const defaultAlgorithm = "HS256"

// Scopes describes the permissions encoded into a capability token.
type Scopes struct {
	// Put grants permission to update exactly the file with this id.
	Put string
	// Del grants permission to delete exactly the file with this id.
	Del string
	// Admin grants permission to update or delete any file, superseding Put/Del.
	Admin bool
}

// Capability is the decoded form of a verified capability token.
type Capability struct {
	IssuedAt  time.Time
	ExpiresAt time.Time
	Audience  string
	Issuer    string
	Put       string
	Del       string
	Admin     bool
}

// Codec issues and verifies capability tokens with a shared secret.
// A Codec is immutable and safe for concurrent use.
type Codec struct {
	secret    []byte
	algorithm string
	issuer    string
	ttl       time.Duration
}

// CodecOption configures a Codec.
type CodecOption func(*Codec)

// WithTTL overrides the default token lifetime.
func WithTTL(ttl time.Duration) CodecOption {
	return func(c *Codec) { c.ttl = ttl }
}

// WithIssuer overrides the default issuer claim.
func WithIssuer(issuer string) CodecOption {
	return func(c *Codec) { c.issuer = issuer }
}

// WithAlgorithm overrides the signing algorithm. Only the HMAC family
// (HS256, HS384, HS512) is supported.
func WithAlgorithm(algorithm string) CodecOption {
	return func(c *Codec) { c.algorithm = algorithm }
}

// NewCodec creates a codec for the given shared secret.
// An empty secret is a programmer error and is rejected.
func NewCodec(secret string, opts ...CodecOption) (*Codec, error) {
	if secret == "" {
		return nil, apperrors.New("token codec requires a non-empty secret")
	}

	codec := &Codec{
		secret:    []byte(secret),
		algorithm: defaultAlgorithm,
		issuer:    DefaultIssuer,
		ttl:       DefaultTTL,
	}
	for _, opt := range opts {
		opt(codec)
	}

	if jwt.GetSigningMethod(codec.algorithm) == nil {
		return nil, apperrors.New("unknown signing algorithm: " + codec.algorithm)
	}
	if _, ok := jwt.GetSigningMethod(codec.algorithm).(*jwt.SigningMethodHMAC); !ok {
		return nil, apperrors.New("unsupported signing algorithm: " + codec.algorithm)
	}

	return codec, nil
}

// IssueOptions carries per-token overrides for Issue.
type IssueOptions struct {
	// TTL overrides the codec's default lifetime when non-zero. Negative
	// values produce an already-expired token (useful in tests).
	TTL time.Duration
	// Issuer overrides the codec's default issuer when non-empty.
	Issuer string
	// Extra adds additional payload claims. Registered claims and scope
	// claims always win over extras.
	Extra map[string]any
}

// Issue creates a signed capability token for the given scopes.
func (c *Codec) Issue(scopes Scopes, opts ...IssueOptions) (string, error) {
	var options IssueOptions
	if len(opts) > 0 {
		options = opts[0]
	}

	ttl := c.ttl
	if options.TTL != 0 {
		ttl = options.TTL
	}
	issuer := c.issuer
	if options.Issuer != "" {
		issuer = options.Issuer
	}

	now := time.Now()
	claims := jwt.MapClaims{}
	for k, v := range options.Extra {
		claims[k] = v
	}
	if scopes.Put != "" {
		claims["put"] = scopes.Put
	}
	if scopes.Del != "" {
		claims["del"] = scopes.Del
	}
	if scopes.Admin {
		claims["adm"] = true
	}
	claims["iat"] = jwt.NewNumericDate(now)
	claims["exp"] = jwt.NewNumericDate(now.Add(ttl))
	claims["aud"] = Audience
	claims["iss"] = issuer

	signed, err := jwt.NewWithClaims(jwt.GetSigningMethod(c.algorithm), claims).SignedString(c.secret)
	if err != nil {
		return "", apperrors.Wrap(err, "failed to sign capability token")
	}
	return signed, nil
}

// VerifyOptions carries per-verification options for Verify.
type VerifyOptions struct {
	// Algorithms widens the allowed-algorithms list. The codec's configured
	// algorithm is always included, so callers cannot accidentally disable it,
	// and an attacker-chosen "none" or RSA header never validates against the
	// HMAC secret.
	Algorithms []string
}

// Verify validates the signature, expiry and audience of a token string and
// returns its decoded capability. The boolean result deliberately carries no
// failure reason: bad signature, expiry, wrong audience and malformed input
// are indistinguishable to the caller.
func (c *Codec) Verify(tokenString string, opts ...VerifyOptions) (*Capability, bool) {
	var options VerifyOptions
	if len(opts) > 0 {
		options = opts[0]
	}
	algorithms := append([]string{}, options.Algorithms...)
	algorithms = append(algorithms, c.algorithm)

	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(t *jwt.Token) (any, error) { return c.secret, nil },
		jwt.WithValidMethods(algorithms),
		jwt.WithAudience(Audience),
		jwt.WithIssuedAt(),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !parsed.Valid {
		return nil, false
	}

	capability := &Capability{Audience: Audience}
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		capability.IssuedAt = iat.Time
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		capability.ExpiresAt = exp.Time
	}
	if iss, err := claims.GetIssuer(); err == nil {
		capability.Issuer = iss
	}
	if put, ok := claims["put"].(string); ok {
		capability.Put = put
	}
	if del, ok := claims["del"].(string); ok {
		capability.Del = del
	}
	if adm, ok := claims["adm"].(bool); ok {
		capability.Admin = adm
	}

	return capability, true
}
