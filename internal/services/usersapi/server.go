package usersapi

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/louisbranch/restpanel/internal/platform/timeouts"
	"github.com/louisbranch/restpanel/internal/services/usersapi/storage/sqlite"
)

// Config defines the inputs for the users API process.
type Config struct {
	HTTPAddr string
	DBPath   string
	// SeedFile is an optional YAML fixture applied to an empty database.
	SeedFile string
}

// Server hosts the users API.
type Server struct {
	httpAddr   string
	httpServer *http.Server
	store      *sqlite.Store
}

// NewServer opens storage, applies the seed and builds the HTTP server.
func NewServer(ctx context.Context, config Config) (*Server, error) {
	httpAddr := strings.TrimSpace(config.HTTPAddr)
	if httpAddr == "" {
		return nil, errors.New("http address is required")
	}
	dbPath := strings.TrimSpace(config.DBPath)
	if dbPath == "" {
		return nil, errors.New("db path is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	store, err := sqlite.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open users store: %w", err)
	}
	if seedPath := strings.TrimSpace(config.SeedFile); seedPath != "" {
		users, err := LoadSeedFile(seedPath)
		if err != nil {
			_ = store.Close()
			return nil, err
		}
		added, err := Seed(ctx, store, users, 0)
		if err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("seed users: %w", err)
		}
		if added > 0 {
			log.Printf("seeded %d users from %s", added, seedPath)
		}
	}

	handler, err := NewHandler(HandlerConfig{Store: store})
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	httpServer := &http.Server{
		Addr:              httpAddr,
		Handler:           handler,
		ReadHeaderTimeout: timeouts.ReadHeader,
	}

	return &Server{
		httpAddr:   httpAddr,
		httpServer: httpServer,
		store:      store,
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
		return errors.New("users api server is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	serveErr := make(chan error, 1)
	log.Printf("users api listening on %s", s.httpAddr)
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

// Close stops the HTTP server and closes storage.
func (s *Server) Close() {
	if s == nil {
		return
	}
	if s.httpServer != nil {
		if err := s.httpServer.Close(); err != nil {
			log.Printf("close users api http server: %v", err)
		}
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			log.Printf("close users store: %v", err)
		}
	}
}
