package upload

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/neoskop/hostit/internal/httputil"
)

// bodyKey is the gin context key under which the validated body is stored.
const bodyKey = "hostit/upload/body"

// Body retrieves the validated upload body stored by the gate middleware.
func Body(c *gin.Context) []byte {
	if body, ok := c.Get(bodyKey); ok {
		if bytes, ok := body.([]byte); ok {
			return bytes
		}
	}
	return nil
}

// Middleware runs the full upload gate for raw file writes (create, update).
// On a pass the validated body is stored on the gin context and the request
// context carries any verifier-attached state; on a rejection the request is
// aborted with the mapped status and the handler never runs.
func Middleware(gate *Gate, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, body, err := gate.Accept(c.Request.Context(), c.Request)
		if err != nil {
			httputil.HandleErrorGin(c, err, logger)
			c.Abort()
			return
		}

		c.Request = c.Request.WithContext(ctx)
		c.Set(bodyKey, body)
		c.Next()
	}
}

// AuthorizeMiddleware runs only the pre-body verifiers, for writes whose
// body is structured JSON (tags, info) or absent (delete). The body reader
// is still capped at the gate's ceiling so structured payloads cannot grow
// unbounded either.
func AuthorizeMiddleware(gate *Gate, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, err := gate.Authorize(c.Request.Context(), c.Request)
		if err != nil {
			httputil.HandleErrorGin(c, err, logger)
			c.Abort()
			return
		}

		c.Request = c.Request.WithContext(ctx)
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, gate.Limit())
		}
		c.Next()
	}
}
