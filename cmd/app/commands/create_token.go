package commands

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/neoskop/hostit/internal/config"
	"github.com/neoskop/hostit/internal/token"
)

// RunCreateToken issues a signed capability token for the given scopes and
// writes it to the command output.
//
// Requirements: TOKEN_SECRET must be set; the token must grant at least one
// scope.
func RunCreateToken(
	put string,
	del string,
	adm bool,
	ttl time.Duration,
	issuer string,
	format string,
	io IOTuple,
) error {
	cfg := config.Load()

	if cfg.TokenSecret == "" {
		return fmt.Errorf("TOKEN_SECRET must be set to issue capability tokens")
	}

	if put == "" && del == "" && !adm {
		return fmt.Errorf("token would grant nothing: set --put, --del or --adm")
	}

	codec, err := token.NewCodec(
		cfg.TokenSecret,
		token.WithTTL(cfg.TokenTTL),
		token.WithIssuer(cfg.TokenIssuer),
	)
	if err != nil {
		return fmt.Errorf("failed to create token codec: %w", err)
	}

	signed, err := codec.Issue(
		token.Scopes{Put: put, Del: del, Admin: adm},
		token.IssueOptions{TTL: ttl, Issuer: issuer},
	)
	if err != nil {
		return fmt.Errorf("failed to issue token: %w", err)
	}

	effectiveTTL := cfg.TokenTTL
	if ttl != 0 {
		effectiveTTL = ttl
	}

	switch format {
	case "json":
		output := map[string]string{
			"token":      signed,
			"expires_at": time.Now().Add(effectiveTTL).UTC().Format(time.RFC3339),
		}
		encoder := json.NewEncoder(io.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(output); err != nil {
			return fmt.Errorf("failed to encode output: %w", err)
		}
	case "text":
		fmt.Fprintln(io.Writer, signed)
	default:
		return fmt.Errorf("invalid format: %s (valid options: text, json)", format)
	}

	return nil
}
