// internal/server/server.go
//
// HTTP server helper with robust timeouts.
//
// Production hardening recommends:
//
//   • ReadTimeout   – abort slow-loris headers (10 s)
//   • WriteTimeout  – cap total response time (15 s)
//   • IdleTimeout   – close keep-alives on idle clients (60 s)
//
// Binding and serving are split so the lifecycle coordinator can report a
// port conflict as a startup failure before it declares the service ready.
//

package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"
)

// Server owns the listening socket and the *http.Server on top of it.
type Server struct {
	http *http.Server
	ln   net.Listener
}

// New constructs a Server with sensible defaults.  Nothing is bound yet.
func New(addr string, handler http.Handler) *Server {
	return &Server{http: &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}}
}

// Listen binds the TCP socket.
func (s *Server) Listen() error {
	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return err
	}
	s.ln = ln
	return nil
}

// Serve blocks until Shutdown.  A clean shutdown returns nil.
func (s *Server) Serve() error {
	if s.ln == nil {
		return errors.New("server: Serve called before Listen")
	}
	if err := s.http.Serve(s.ln); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown closes the listener and waits for in-flight requests until ctx
// ends.  A socket that was bound but never served is closed as well.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.http.Shutdown(ctx)
	if s.ln != nil {
		_ = s.ln.Close() // already closed when Serve ran
	}
	return err
}

// Addr is the bound address (useful with ":0"), or the configured one
// before Listen.
func (s *Server) Addr() string {
	if s.ln != nil {
		return s.ln.Addr().String()
	}
	return s.http.Addr
}
