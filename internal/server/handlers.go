// Package server exposes the receiver's statistics and recent diagnostics
// over HTTP for reporting consumers. Handlers only read snapshots; nothing
// here influences framing, decoding or statistics.
package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"example.com/radgate/internal/icd"
	"example.com/radgate/internal/stats"
)

// Server holds the read-side view of the pipeline.
type Server struct {
	stats *stats.Aggregator
	ring  *outcomeRing
}

// Options configures server creation.
type Options struct {
	Stats *stats.Aggregator

	// RecentCapacity bounds how many outcomes the /recent endpoint can
	// return. Zero selects a default of 256.
	RecentCapacity int
}

// NewServer wires a server onto the shared aggregator.
func NewServer(opts Options) *Server {
	return &Server{
		stats: opts.Stats,
		ring:  newOutcomeRing(opts.RecentCapacity),
	}
}

// Submit publishes an outcome to the recent-outcome ring. It never blocks the
// reception paths.
func (s *Server) Submit(o icd.DecodeOutcome) {
	s.ring.add(&o)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	view := NewStatsView(s.stats.Snapshot(), time.Now())
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(view)
}

func (s *Server) handleRecent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}
	w.Header().Set("Content-Type", "application/x-ndjson")
	out := NewNDJSONWriter(w)
	for _, o := range s.ring.recent(limit) {
		if err := out.WriteObject(NewOutcomeView(o)); err != nil {
			return
		}
	}
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}` + "\n"))
}
