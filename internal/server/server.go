// Package server exposes the matching pipeline over HTTP. Handlers are thin:
// they translate JSON to pipeline requests and map error classes to status
// codes.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/arnavj/consultmatch/internal/ai"
	"github.com/arnavj/consultmatch/internal/pipeline"
)

const shutdownTimeout = 10 * time.Second

// Directory is the consultant pool behind the HTTP surface. Implemented by
// store.Store.
type Directory interface {
	ListProfiles(ctx context.Context) ([]ai.Profile, error)
	Ping(ctx context.Context) error
}

type Server struct {
	httpServer *http.Server
	pipeline   *pipeline.Pipeline
	store      Directory
	logger     *zap.Logger
}

type Config struct {
	Listen string
}

func New(cfg Config, pipe *pipeline.Pipeline, st Directory, logger *zap.Logger) *Server {
	if cfg.Listen == "" {
		cfg.Listen = ":8080"
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		pipeline: pipe,
		store:    st,
		logger:   logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/compare", s.handleCompare)
	mux.HandleFunc("GET /health", s.handleHealth)

	s.httpServer = &http.Server{
		Addr:              cfg.Listen,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      5 * time.Minute,
	}

	return s
}

// Start serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info("http server listening", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	s.logger.Info("shutting down http server")
	return s.httpServer.Shutdown(shutdownCtx)
}
