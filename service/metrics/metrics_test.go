package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestMetrics() Metrics {
	return New(Params{ServiceName: "analytics"})
}

func TestBumpCountExposedByHandler(t *testing.T) {
	m := newTestMetrics()

	require.NoError(t, m.BumpCount("events_recorded_total", 1, "name", "link_click"))
	require.NoError(t, m.BumpCount("events_recorded_total", 1, "name", "link_click"))
	require.NoError(t, m.BumpCount("events_recorded_total", 1, "name", "page_view"))

	recorder := httptest.NewRecorder()
	m.Handler().ServeHTTP(recorder, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(recorder.Result().Body)
	require.NoError(t, err)
	require.Contains(t, string(body), `analytics_events_recorded_total{name="link_click"} 2`)
	require.Contains(t, string(body), `analytics_events_recorded_total{name="page_view"} 1`)
}

func TestBumpCountOddTags(t *testing.T) {
	m := newTestMetrics()
	require.Error(t, m.BumpCount("events_recorded_total", 1, "name"))
}

func TestBumpTime(t *testing.T) {
	m := newTestMetrics()

	timer, err := m.BumpTime("persist_duration_seconds", "store", "memory")
	require.NoError(t, err)
	timer.End()

	// same key again reuses the registered histogram
	timer, err = m.BumpTime("persist_duration_seconds", "store", "memory")
	require.NoError(t, err)
	timer.End()

	_, err = m.BumpTime("persist_duration_seconds", "store")
	require.Error(t, err)
}
