package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scrape renders the provider's Prometheus endpoint into a string.
func scrape(t *testing.T, provider *Provider) string {
	t.Helper()

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	provider.Handler().ServeHTTP(recorder, request)
	require.Equal(t, http.StatusOK, recorder.Code)

	body, err := io.ReadAll(recorder.Body)
	require.NoError(t, err)
	return string(body)
}

func TestNewProvider(t *testing.T) {
	provider, err := NewProvider("hostit")
	require.NoError(t, err)
	assert.NotNil(t, provider.MeterProvider())

	t.Cleanup(func() {
		_ = provider.Shutdown(context.Background())
	})

	output := scrape(t, provider)
	assert.NotEmpty(t, output)
}

func TestBusinessMetrics(t *testing.T) {
	provider, err := NewProvider("hostit")
	require.NoError(t, err)

	bm, err := NewBusinessMetrics(provider.MeterProvider(), "hostit")
	require.NoError(t, err)

	bm.RecordOperation(context.Background(), "files", "file_create", "success")
	bm.RecordOperation(context.Background(), "files", "file_create", "error")
	bm.RecordDuration(context.Background(), "files", "file_create", 25*time.Millisecond, "success")

	output := scrape(t, provider)
	assert.Regexp(t, `hostit_operations_total\{[^}]*operation="file_create"[^}]*status="error"[^}]*\} 1`, output)
	assert.Regexp(t, `hostit_operations_total\{[^}]*operation="file_create"[^}]*status="success"[^}]*\} 1`, output)
	assert.Regexp(t, `hostit_operation_duration_seconds_count\{[^}]*operation="file_create"[^}]*\} 1`, output)
}

func TestNoOpBusinessMetrics(t *testing.T) {
	bm := NewNoOpBusinessMetrics()

	// Must be safe without a backing provider.
	bm.RecordOperation(context.Background(), "files", "file_get", "success")
	bm.RecordDuration(context.Background(), "files", "file_get", time.Millisecond, "success")
}

func TestHTTPMetricsMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	provider, err := NewProvider("hostit")
	require.NoError(t, err)

	router := gin.New()
	router.Use(HTTPMetricsMiddleware(provider.MeterProvider(), "hostit"))
	router.GET("/:id/meta", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/abc/meta", nil))
	require.Equal(t, http.StatusOK, recorder.Code)

	output := scrape(t, provider)
	assert.Regexp(t, `hostit_http_requests_total\{[^}]*method="GET"[^}]*path="/:id/meta"[^}]*status_code="200"[^}]*\} 1`, output)
}

func TestScanMetrics(t *testing.T) {
	provider, err := NewProvider("hostit")
	require.NoError(t, err)

	sm, err := NewScanMetrics(provider.MeterProvider(), "hostit")
	require.NoError(t, err)

	sm.ObserveScan(context.Background(), 10*time.Millisecond, false)
	sm.ObserveScan(context.Background(), 15*time.Millisecond, true)

	output := scrape(t, provider)
	assert.Regexp(t, `hostit_upload_scans_total\{[^}]*infected="false"[^}]*\} 1`, output)
	assert.Regexp(t, `hostit_upload_scans_total\{[^}]*infected="true"[^}]*\} 1`, output)
}
