// ABOUTME: HTTP server lifecycle for the veilnote web surface
// ABOUTME: Owns listening, graceful shutdown, and the expired-session sweeper

package web

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/veilnote/veilnote/internal/store"
)

// sweepInterval is how often expired session records are purged. Expired
// sessions are already invisible to lookups; the sweep only reclaims rows.
const sweepInterval = time.Hour

// Server runs the HTTP surface and the background session sweeper.
type Server struct {
	httpServer *http.Server
	sessions   store.SessionStore
	logger     *slog.Logger
}

// NewServer wraps the handler in an HTTP server bound to addr.
func NewServer(addr string, handler http.Handler, sessions store.SessionStore) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		sessions: sessions,
		logger:   slog.Default().With("component", "server"),
	}
}

// Run starts the server and blocks until the context is canceled or the
// server fails. Returns nil on graceful shutdown.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.httpServer.Addr, err)
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", "addr", ln.Addr().String())
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server: %w", err)
		}
	}()

	go s.sweepLoop(ctx)

	var serverErr error
	select {
	case <-ctx.Done():
		s.logger.Info("context canceled, initiating shutdown")
	case serverErr = <-errCh:
		s.logger.Error("server error", "error", serverErr)
	}

	shutdownErr := s.gracefulShutdown()
	if serverErr != nil {
		return serverErr
	}
	return shutdownErr
}

// gracefulShutdown performs shutdown with a fresh context and timeout.
// Uses context.Background() intentionally since the run context is already canceled.
func (s *Server) gracefulShutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}

// sweepLoop purges expired session records once at startup and then on a
// fixed interval until the context is canceled.
func (s *Server) sweepLoop(ctx context.Context) {
	s.sweep(ctx)

	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Server) sweep(ctx context.Context) {
	if err := s.sessions.DeleteExpiredSessions(ctx); err != nil {
		s.logger.Error("session sweep failed", "error", err)
	}
}
