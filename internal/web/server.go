// Package web provides an HTTP status server for the rc-lights daemon.
package web

import (
	"context"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/sweeney/rc-lights/internal/logic"
	"github.com/sweeney/rc-lights/internal/status"
)

// Server serves the status page, the JSON status and the role table.
type Server struct {
	httpServer *http.Server
	tracker    *status.Tracker
	roles      []byte
}

// New creates a Server that reads state from the given tracker. roles is
// the effective role table as JSON, served verbatim at /roles.json.
func New(addr string, tracker *status.Tracker, roles []byte) *Server {
	s := &Server{tracker: tracker, roles: roles}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/index.html", s.handleIndex)
	mux.HandleFunc("/index.json", s.handleJSON)
	mux.HandleFunc("/roles.json", s.handleRoles)
	mux.HandleFunc("/healthz", s.handleHealth)

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Handler returns the request router. Useful for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// ListenAndServe starts listening. It blocks until the server is shut down.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Serve accepts connections on the given listener.
func (s *Server) Serve(ln net.Listener) error {
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" && r.URL.Path != "/index.html" {
		http.NotFound(w, r)
		return
	}
	snap := s.tracker.Snapshot()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := renderHTML(w, snap); err != nil {
		log.Printf("web: render status page: %v", err)
	}
}

func (s *Server) handleJSON(w http.ResponseWriter, r *http.Request) {
	snap := s.tracker.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	w.Write(status.FormatJSON(snap))
}

func (s *Server) handleRoles(w http.ResponseWriter, r *http.Request) {
	if s.roles == nil {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(s.roles)
}

// handleHealth answers 200 while actuators follow the receiver and 503
// while they are held at failsafe or before the first tick.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	mode := s.tracker.Snapshot().Mode
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if mode != logic.ModeLive {
		w.WriteHeader(http.StatusServiceUnavailable)
		if mode == "" {
			mode = "STARTING"
		}
	}
	w.Write([]byte(string(mode) + "\n"))
}
