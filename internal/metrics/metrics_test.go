package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordGenerate(t *testing.T) {
	m := &Metrics{}

	m.RecordGenerate(true, false, 12)
	m.RecordGenerate(true, true, 30)
	m.RecordGenerate(false, false, 3)

	assert.Equal(t, int64(3), m.GenerateAttempts.Load())
	assert.Equal(t, int64(2), m.LevelsCreated.Load())
	assert.Equal(t, int64(1), m.LevelsExisting.Load())
	assert.Equal(t, int64(1), m.FallbackLevels.Load())
	assert.Equal(t, int64(3), m.LastGenerateDurationMs.Load())
}

func TestRecordCronRequest(t *testing.T) {
	m := &Metrics{}

	m.RecordCronRequest(true)
	m.RecordCronRequest(false)
	m.RecordCronRequest(false)

	assert.Equal(t, int64(3), m.CronRequests.Load())
	assert.Equal(t, int64(2), m.CronUnauthorized.Load())
}

func TestRecordStoreError(t *testing.T) {
	m := &Metrics{}
	m.RecordStoreError()
	assert.Equal(t, int64(1), m.StoreErrors.Load())
}

func TestHandlerExposition(t *testing.T) {
	m := &Metrics{}
	m.RecordGenerate(true, false, 7)
	m.RecordCronRequest(false)
	m.RecordStoreError()

	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	m.Handler()(rec, req)

	require.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/plain")

	body := rec.Body.String()
	for _, line := range []string{
		"rutacat_generate_attempts_total 1",
		"rutacat_levels_created_total 1",
		"rutacat_levels_existing_total 0",
		"rutacat_fallback_levels_total 0",
		"rutacat_store_errors_total 1",
		"rutacat_cron_requests_total 1",
		"rutacat_cron_unauthorized_total 1",
		"rutacat_last_generate_duration_ms 7",
	} {
		assert.True(t, strings.Contains(body, line), line)
	}
}

func TestGlobalSingleton(t *testing.T) {
	assert.Same(t, Global(), Global())
}
