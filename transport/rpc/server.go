package rpc

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/rocketscienceinc/duel-backend/internal/config"
)

type Server struct {
	httpServer *http.Server
}

func NewServer(conf *config.Config, router *Router) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:         ":" + conf.HTTPPort,
			Handler:      router.Handler(),
			ReadTimeout:  conf.HTTP.ReadTimeout,
			WriteTimeout: conf.HTTP.WriteTimeout,
			IdleTimeout:  conf.HTTP.IdleTimeout,
		},
	}
}

// Start - serves until Shutdown is called.
func (that *Server) Start() error {
	if err := that.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

func (that *Server) Shutdown(ctx context.Context) error {
	if err := that.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	return nil
}
