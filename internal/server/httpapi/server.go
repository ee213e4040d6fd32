package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dmitrijs2005/cvgenius/internal/logging"
)

// HTTPServer owns the net/http server around the gin engine.
type HTTPServer struct {
	server *http.Server
	log    logging.Logger
}

func NewHTTPServer(addr string, handler http.Handler, log logging.Logger) *HTTPServer {
	return &HTTPServer{
		server: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      15 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		log: log,
	}
}

// Start blocks until the server stops. A graceful shutdown returns nil.
func (s *HTTPServer) Start(ctx context.Context) error {
	s.log.Info(ctx, "http server starting", "addr", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen and serve: %w", err)
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	s.log.Info(ctx, "http server shutting down")
	return s.server.Shutdown(ctx)
}
