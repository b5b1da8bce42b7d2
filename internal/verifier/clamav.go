package verifier

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/exec"
	"time"

	apperrors "github.com/neoskop/hostit/internal/errors"
)

// detectionMarker is the substring the scanner prints when it flags content.
const detectionMarker = "FOUND"

// ScanObserver records scan outcomes for instrumentation.
type ScanObserver interface {
	ObserveScan(ctx context.Context, duration time.Duration, infected bool)
}

// ClamAVVerifier rejects uploads whose content matches a known-malicious
// signature by piping the buffered bytes to an external ClamAV binary.
//
// A scanner reporting "infected" is a verifier decision (not acceptable);
// a scanner crashing is a system fault and propagates as one. If the binary
// cannot be located at startup the verifier degrades to a no-op rather than
// blocking all uploads.
type ClamAVVerifier struct {
	binary   string
	logger   *slog.Logger
	observer ScanObserver
}

// NewClamAVVerifier creates a scan verifier for the given scanner command
// (typically "clamdscan" or "clamscan"). The binary is resolved on PATH
// once; a miss is logged once and leaves the verifier as a permanent no-op.
func NewClamAVVerifier(scanCommand string, logger *slog.Logger, observer ScanObserver) *ClamAVVerifier {
	binary, err := exec.LookPath(scanCommand)
	if err != nil {
		logger.Warn("scan command not available, uploads will not be scanned",
			slog.String("command", scanCommand))
		binary = ""
	} else {
		logger.Debug("scan command resolved", slog.String("binary", binary))
	}

	return &ClamAVVerifier{binary: binary, logger: logger, observer: observer}
}

// Name implements Verifier.
func (v *ClamAVVerifier) Name() string { return "clamav" }

// Phase implements Verifier. Scanning requires the complete buffered content.
func (v *ClamAVVerifier) Phase() Phase { return PhasePostBody }

// Verify implements Verifier. The request context is handed to the child
// process, so a client disconnect mid-scan kills the scanner instead of
// leaving an orphan.
func (v *ClamAVVerifier) Verify(ctx context.Context, _ *http.Request, body []byte) (context.Context, error) {
	if v.binary == "" || len(body) == 0 {
		return ctx, nil
	}

	start := time.Now()

	cmd := exec.CommandContext(ctx, v.binary, "-", "--no-summary")
	cmd.Stdin = bytes.NewReader(body)
	output, err := cmd.CombinedOutput()
	duration := time.Since(start)

	infected := false
	defer func() {
		if v.observer != nil {
			v.observer.ObserveScan(ctx, duration, infected)
		}
	}()

	v.logger.Debug("scan finished",
		slog.Int("size", len(body)),
		slog.Duration("duration", duration))

	if err == nil {
		return ctx, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && bytes.Contains(output, []byte(detectionMarker)) {
		infected = true
		return ctx, apperrors.ErrNotAcceptable
	}

	return ctx, apperrors.Wrap(err, "scanner failed")
}
