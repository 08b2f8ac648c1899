// Package server exposes a small HTTP surface for health checks and
// operational status.
package server

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"mkowalczyk/olxwatch/internal/store"
	"mkowalczyk/olxwatch/logger"
)

// SourceLister reports the active search sources
type SourceLister interface {
	Sources() []string
}

// Server serves /healthz and /status
type Server struct {
	seen        *store.SeenStore
	subscribers *store.SubscriberStore
	sources     SourceLister
	log         *logger.Logger
}

// New creates a status server
func New(seen *store.SeenStore, subscribers *store.SubscriberStore, sources SourceLister) *Server {
	return &Server{
		seen:        seen,
		subscribers: subscribers,
		sources:     sources,
		log:         logger.ForServer(),
	}
}

// Router builds the HTTP routes
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/status", s.handleStatus).Methods(http.MethodGet)
	return r
}

// Start listens on addr; it blocks and is meant to run in its own goroutine
func (s *Server) Start(addr string) error {
	s.log.Info().Str("addr", addr).Msg("Status server listening")
	return http.ListenAndServe(addr, s.Router())
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

type statusResponse struct {
	SeenOffers  int      `json:"seen_offers"`
	Subscribers int      `json:"subscribers"`
	Sources     []string `json:"sources"`
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, statusResponse{
		SeenOffers:  s.seen.Count(),
		Subscribers: s.subscribers.Count(),
		Sources:     s.sources.Sources(),
	})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(v)
}
