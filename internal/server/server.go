package server

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/pageza/foodgram/backend/config"
)

// Server represents the HTTP server
type Server struct {
	router *gin.Engine
	http   *http.Server
	log    *zap.SugaredLogger
	addr   net.Addr
}

// NewServer creates the HTTP server and ties its lifetime to lc: it starts
// listening on start and drains in-flight requests on stop.
func NewServer(lc fx.Lifecycle, cfg *config.Config, router *gin.Engine, log *zap.SugaredLogger) *Server {
	s := &Server{
		router: router,
		log:    log,
		http: &http.Server{
			Addr:              cfg.Addr(),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return s.Start()
		},
		OnStop: func(ctx context.Context) error {
			stopCtx, cancel := context.WithTimeout(ctx, cfg.ShutdownTimeout)
			defer cancel()
			return s.Stop(stopCtx)
		},
	})
	return s
}

// Start binds the listen address and serves in the background.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return errors.Wrapf(err, "failed to listen on %s", s.http.Addr)
	}
	s.addr = ln.Addr()
	s.log.Infow("starting HTTP server", "addr", s.addr.String())

	go func() {
		if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Errorw("HTTP server stopped unexpectedly", "error", err)
		}
	}()
	return nil
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	s.log.Info("stopping HTTP server")
	return s.http.Shutdown(ctx)
}

// Addr is the bound address, available once started.
func (s *Server) Addr() net.Addr {
	return s.addr
}
