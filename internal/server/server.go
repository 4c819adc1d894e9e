package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/senzo-zwelihle-masango/elysian-emporium/internal/config"
	"github.com/senzo-zwelihle-masango/elysian-emporium/internal/handler"
	"github.com/senzo-zwelihle-masango/elysian-emporium/internal/services/jwttoken"
	"go.uber.org/zap"
)

type Server struct {
	config config.Config
	mux    chi.Router
	server *http.Server
	tokens *jwttoken.Manager
}

func NewServer(config config.Config, handler *handler.Handler, tokens *jwttoken.Manager) *Server {
	mux := chi.NewMux()

	s := &Server{
		config: config,
		mux:    mux,
		tokens: tokens,
		server: &http.Server{
			Addr:              config.Address,
			Handler:           mux,
			ReadTimeout:       5 * time.Second,
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      10 * time.Second,
			IdleTimeout:       30 * time.Second,
		},
	}

	s.setupRoutes(handler)

	return s
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) Start() error {
	zap.L().Info("starting server", zap.String("address", s.config.Address))

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("error starting server: %w", err)
	}

	return nil
}

func (s *Server) Stop() error {
	zap.L().Info("stopping server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("error stopping server: %w", err)
	}

	return nil
}
