package server

import "net/http"

// NewRouter wires HTTP routes to the server's handlers.
func NewRouter(s *Server) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/stats", s.handleStats)
	mux.HandleFunc("/recent", s.handleRecent)
	mux.HandleFunc("/healthz", s.handleHealthz)
	return mux
}
