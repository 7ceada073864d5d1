package panel

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/louisbranch/restpanel/internal/platform/timeouts"
)

// Config defines the inputs for the panel process.
type Config struct {
	HTTPAddr string
	// ProviderTimeout bounds each call to the inspected endpoint.
	ProviderTimeout time.Duration
	// RecordsPath and TotalPath read enveloped list responses when set.
	RecordsPath string
	TotalPath   string
}

// Server hosts the panel UI.
type Server struct {
	httpAddr   string
	httpServer *http.Server
}

// NewServer creates a configured panel server.
func NewServer(config Config) (*Server, error) {
	httpAddr := strings.TrimSpace(config.HTTPAddr)
	if httpAddr == "" {
		return nil, errors.New("http address is required")
	}
	if config.ProviderTimeout <= 0 {
		config.ProviderTimeout = timeouts.ProviderRequest
	}

	handler := NewHandler(HandlerConfig{
		ProviderTimeout: config.ProviderTimeout,
		RecordsPath:     config.RecordsPath,
		TotalPath:       config.TotalPath,
	})
	httpServer := &http.Server{
		Addr:              httpAddr,
		Handler:           handler,
		ReadHeaderTimeout: timeouts.ReadHeader,
	}

	return &Server{
		httpAddr:   httpAddr,
		httpServer: httpServer,
	}, nil
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	if s == nil {
		return ""
	}
	return s.httpAddr
}

// ListenAndServe runs the HTTP server until the context ends.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if s == nil {
		return errors.New("panel server is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	serveErr := make(chan error, 1)
	log.Printf("panel listening on %s", s.httpAddr)
	go func() {
		serveErr <- s.httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		err := s.httpServer.Shutdown(shutdownCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	}
}

// Close releases server resources without waiting for in-flight requests.
func (s *Server) Close() {
	if s == nil || s.httpServer == nil {
		return
	}
	if err := s.httpServer.Close(); err != nil {
		log.Printf("close panel http server: %v", err)
	}
}
