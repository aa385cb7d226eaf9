// Package server exposes collected data over a small HTTP API.
package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/elonfeng/mppilot/internal/store"
	"github.com/elonfeng/mppilot/pkg/collect"
)

var log = logrus.WithField("component", "server")

// Server provides the HTTP API.
type Server struct {
	files       *store.Files
	archive     *store.Archive
	pipeline    *collect.Pipeline
	collectOpts collect.Options
	port        int
}

// New creates a new HTTP server.
func New(files *store.Files, archive *store.Archive, pipeline *collect.Pipeline, collectOpts collect.Options, port int) *Server {
	if port == 0 {
		port = 8080
	}
	return &Server{
		files:       files,
		archive:     archive,
		pipeline:    pipeline,
		collectOpts: collectOpts,
		port:        port,
	}
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/api/v1/snapshot", s.handleSnapshot)
	mux.HandleFunc("/api/v1/items", s.handleItems)
	mux.HandleFunc("/api/v1/sources", s.handleSources)
	mux.HandleFunc("/api/v1/collect", s.handleCollect)

	addr := fmt.Sprintf(":%d", s.port)
	log.Infof("listening on %s", addr)
	return http.ListenAndServe(addr, mux)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	writeJSON(w, http.StatusOK, s.files.LoadSnapshot())
}

func (s *Server) handleItems(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	opts := store.ArchiveListOpts{Limit: 100}
	if src := r.URL.Query().Get("source"); src != "" {
		opts.Source = collect.SourceType(src)
	}
	if since := r.URL.Query().Get("since"); since != "" {
		if t, err := time.Parse(time.RFC3339, since); err == nil {
			opts.Since = t
		}
	}

	items, err := s.archive.ListItems(r.Context(), opts)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"data":  items,
		"count": len(items),
	})
}

func (s *Server) handleSources(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	counts, err := s.archive.CountBySource(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"data":  counts,
		"count": len(counts),
	})
}

func (s *Server) handleCollect(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	snap := s.pipeline.Run(r.Context(), s.collectOpts)
	if err := s.files.SaveSnapshot(snap); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if s.archive != nil {
		if err := s.archive.UpsertItems(r.Context(), snap.Items); err != nil {
			log.Errorf("archive items: %v", err)
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{"collected": len(snap.Items)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Errorf("write response: %v", err)
	}
}
