package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/smallhouse123/biolink-analytics/service/kvstore"
	"github.com/smallhouse123/biolink-analytics/service/metrics"
	"github.com/smallhouse123/biolink-analytics/service/page"
	"github.com/smallhouse123/biolink-analytics/service/summary"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	store := kvstore.NewMemory()
	p := page.New(page.Options{Store: store})
	t.Cleanup(p.Close)

	return NewServer(
		p,
		summary.New(summary.Options{Store: store}),
		metrics.New(metrics.Params{ServiceName: "test_analytics"}),
		zap.NewNop().Sugar(),
		"127.0.0.1:0",
	)
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t)

	recorder := httptest.NewRecorder()
	s.routes().ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, recorder.Code)
	require.Equal(t, "ok", recorder.Body.String())
}

func TestEventsRequirePost(t *testing.T) {
	s := newTestServer(t)

	recorder := httptest.NewRecorder()
	s.routes().ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/events", nil))
	require.Equal(t, http.StatusMethodNotAllowed, recorder.Code)
}

func TestEventsRejectBadJSON(t *testing.T) {
	s := newTestServer(t)

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodPost, "/events", strings.NewReader(`{broken`))
	s.routes().ServeHTTP(recorder, request)
	require.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestEventsIngestThenSummary(t *testing.T) {
	s := newTestServer(t)
	mux := s.routes()

	body := `{"events":[
		{"name":"link_click","data":{"category":"music","title":"Latest Single"}},
		{"name":"link_click","data":{"category":"music"}},
		{"name":"link_click","data":{"category":"social"}}
	]}`
	recorder := httptest.NewRecorder()
	mux.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/events", strings.NewReader(body)))
	require.Equal(t, http.StatusNoContent, recorder.Code)

	recorder = httptest.NewRecorder()
	mux.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/summary", nil))
	require.Equal(t, http.StatusOK, recorder.Code)

	var report summary.Report
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &report))
	require.Equal(t, 3, report.TotalClicks)
	require.Equal(t, map[string]int{"music": 2, "social": 1}, report.Categories)
	require.Equal(t, 4, report.TotalEvents) // page_view + 3 clicks
}

func TestEventsRejectedBatchRecordsNothing(t *testing.T) {
	s := newTestServer(t)

	body := `{"events":[
		{"name":"link_click","data":{"category":"music"}},
		{"data":{"category":"social"}}
	]}`
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodPost, "/events", strings.NewReader(body))
	s.routes().ServeHTTP(recorder, request)
	require.Equal(t, http.StatusBadRequest, recorder.Code)

	// the nameless second record must not leave the first one behind
	events := s.page.Tracker().Events()
	require.Len(t, events, 1) // only the automatic page_view
}

func TestEventsEmptyBatch(t *testing.T) {
	s := newTestServer(t)

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodPost, "/events", strings.NewReader(`{"events":[]}`))
	s.routes().ServeHTTP(recorder, request)
	require.Equal(t, http.StatusNoContent, recorder.Code)
}

func TestExportDownload(t *testing.T) {
	s := newTestServer(t)

	recorder := httptest.NewRecorder()
	s.routes().ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/export", nil))
	require.Equal(t, http.StatusOK, recorder.Code)

	disposition := recorder.Header().Get("Content-Disposition")
	require.Contains(t, disposition, "analytics-export-")
	require.Contains(t, disposition, ".json")

	var events []json.RawMessage
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &events))
	require.Len(t, events, 1) // the automatic page_view
}
