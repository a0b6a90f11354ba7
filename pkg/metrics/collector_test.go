package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, c *Collector) string {
	t.Helper()
	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(body)
}

func TestCollectorObserveScan(t *testing.T) {
	c := NewCollector()

	c.ObserveScan(SCAN_FORWARD, 2, time.Millisecond)
	c.ObserveScan(SCAN_FORWARD, 0, time.Millisecond)
	c.ObserveScan(SCAN_INITIAL_ASSIGNMENT, 3, time.Millisecond)

	body := scrape(t, c)
	assert.Contains(t, body, `transitmatch_reports_processed_total{scan="forward"} 2`)
	assert.Contains(t, body, `transitmatch_reports_processed_total{scan="initial_assignment"} 1`)
	assert.Contains(t, body, `transitmatch_reports_no_match_total{scan="forward"} 1`)
	assert.NotContains(t, body, `transitmatch_reports_no_match_total{scan="initial_assignment"}`)
	assert.Contains(t, body, "transitmatch_spatial_matches_per_report_count 3")
}

func TestCollectorTrackedVehicles(t *testing.T) {
	c := NewCollector()
	c.TrackedVehicles.Set(3)

	assert.Contains(t, scrape(t, c), "transitmatch_tracked_vehicles 3")
}
