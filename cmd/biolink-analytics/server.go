package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/smallhouse123/biolink-analytics/service/event"
	"github.com/smallhouse123/biolink-analytics/service/metrics"
	"github.com/smallhouse123/biolink-analytics/service/page"
	"github.com/smallhouse123/biolink-analytics/service/summary"
)

type Server struct {
	page    *page.Page
	summ    summary.Summarizer
	metrics metrics.Metrics
	sugar   *zap.SugaredLogger
	server  *http.Server
}

type eventRecord struct {
	Name event.Name     `json:"name"`
	Data map[string]any `json:"data"`
}

type eventBatch struct {
	Events []eventRecord `json:"events"`
}

func NewServer(p *page.Page, summ summary.Summarizer, m metrics.Metrics, sugar *zap.SugaredLogger, address string) *Server {
	s := &Server{
		page:    p,
		summ:    summ,
		metrics: m,
		sugar:   sugar,
	}
	s.server = &http.Server{
		Addr:         address,
		Handler:      s.routes(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}
	return s
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.HandleFunc("/events", s.handleEvents)
	mux.HandleFunc("/summary", s.handleSummary)
	mux.HandleFunc("/export", s.handleExport)
	mux.Handle("/metrics", s.metrics.Handler())
	return mux
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.Write([]byte("ok"))
}

func (s *Server) handleEvents(w http.ResponseWriter, request *http.Request) {
	if request.Method != http.MethodPost {
		http.Error(w, "POST only", http.StatusMethodNotAllowed)
		return
	}
	var batch eventBatch
	if err := json.NewDecoder(request.Body).Decode(&batch); err != nil {
		http.Error(w, "Invalid JSON format", http.StatusBadRequest)
		return
	}
	if len(batch.Events) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	// validate the whole batch first; a rejected batch records nothing
	payloads := make([]event.Payload, 0, len(batch.Events))
	for _, record := range batch.Events {
		if record.Name == "" {
			http.Error(w, "event name required", http.StatusBadRequest)
			return
		}
		payload, err := event.PayloadFromMap(record.Name, record.Data)
		if err != nil {
			s.sugar.Warnw("drop malformed event", "name", record.Name, "err", err)
			continue
		}
		payloads = append(payloads, payload)
	}

	trk := s.page.Tracker()
	for _, payload := range payloads {
		trk.Record(payload)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSummary(w http.ResponseWriter, request *http.Request) {
	report := s.summ.Summarize(request.Context())
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(report); err != nil {
		s.sugar.Warnw("write summary failed", "err", err)
	}
}

func (s *Server) handleExport(w http.ResponseWriter, request *http.Request) {
	path, err := s.summ.Export(request.Context(), os.TempDir())
	if err != nil {
		s.sugar.Errorw("export failed", "err", err)
		http.Error(w, "Failed to export events", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", "attachment; filename=\""+filepath.Base(path)+"\"")
	http.ServeFile(w, request, path)
}

func (s *Server) Start() {
	go func() {
		s.sugar.Infow("analytics agent listening", "address", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.sugar.Fatalw("server failed", "err", err)
		}
	}()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
