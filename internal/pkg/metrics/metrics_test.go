//go:build unit

package metrics_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"space-booking/internal/pkg/metrics"
	"space-booking/internal/usecase/shared"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ shared.Metrics = (*metrics.Metrics)(nil)

func TestMetricsHandler(t *testing.T) {
	m := metrics.New()
	m.ObserveHTTP("/api/reservations", http.MethodPost, http.StatusCreated, 12*time.Millisecond)
	m.ObserveAdmission("ACCEPTED", "", 3*time.Millisecond)
	m.ObserveAdmission("REJECTED", "OVERLAP_SLOT_JUST_TAKEN", time.Millisecond)
	m.ObserveQuote("ok")
	m.ObserveExpired(2)
	m.ObserveExpired(0)
	m.ObserveCache("location", "hit")

	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	body, err := io.ReadAll(rr.Body)
	require.NoError(t, err)
	out := string(body)
	assert.Contains(t, out, "space_booking_http_requests_total")
	assert.Contains(t, out, `space_booking_admissions_total{decision="ACCEPTED",reason="none"} 1`)
	assert.Contains(t, out, `space_booking_admissions_total{decision="REJECTED",reason="OVERLAP_SLOT_JUST_TAKEN"} 1`)
	assert.Contains(t, out, `space_booking_cache_events_total{cache="location",event="hit"} 1`)
	assert.Contains(t, out, "space_booking_pending_expired_total 2")
}

func TestMetricsRegistryIsolated(t *testing.T) {
	a := metrics.New()
	b := metrics.New()
	a.ObserveQuote("ok")

	assert.Equal(t, 1, quoteSeries(t, a))
	assert.Zero(t, quoteSeries(t, b))
}

func quoteSeries(t *testing.T, m *metrics.Metrics) int {
	t.Helper()
	families, err := m.Registry().Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() == "space_booking_quotes_total" {
			return len(f.GetMetric())
		}
	}
	return 0
}
