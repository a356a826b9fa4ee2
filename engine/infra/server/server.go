package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/toolforge-ai/toolforge/engine/catalog"
	"github.com/toolforge-ai/toolforge/engine/infra/store"
	"github.com/toolforge-ai/toolforge/engine/platform"
	"github.com/toolforge-ai/toolforge/engine/tool"
	toolrouter "github.com/toolforge-ai/toolforge/engine/tool/router"
	"github.com/toolforge-ai/toolforge/pkg/config"
	"github.com/toolforge-ai/toolforge/pkg/logger"
	"go.opentelemetry.io/otel"
)

const shutdownTimeout = 5 * time.Second

// Server assembles the HTTP surface: catalog and platform clients, the
// tool repository, and the gin router.
type Server struct {
	cfg        *config.Config
	log        logger.Logger
	db         *store.DB
	router     *gin.Engine
	httpServer *http.Server
}

func New(ctx context.Context, cfg *config.Config, db *store.DB) (*Server, error) {
	s := &Server{cfg: cfg, log: logger.FromContext(ctx), db: db}
	if err := s.buildRouter(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Server) buildRouter(ctx context.Context) error {
	if s.cfg.Log.JSON {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(loggerMiddleware(s.log))

	metrics, err := tool.NewMetrics(ctx, otel.Meter("toolforge/tool"))
	if err != nil {
		return fmt.Errorf("failed to initialize tool metrics: %w", err)
	}
	repo := tool.NewPostgresRepository(s.db.Pool())
	catalogClient := catalog.NewClient(&s.cfg.Catalog)
	platformClient := platform.NewClient(&s.cfg.Platform)
	handlers := toolrouter.NewHandlers(repo, catalogClient, platformClient, metrics, s.cfg.Callback.BaseURL)

	r.GET("/healthz", s.healthz)
	api := r.Group("/api")
	toolrouter.RegisterCallback(api, handlers)
	toolrouter.Register(api.Group("/v0"), handlers)

	s.router = r
	return nil
}

func (s *Server) healthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if err := s.db.Pool().Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Run serves until the context is canceled, then drains in-flight
// requests before returning.
func (s *Server) Run(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Server.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("server listening", "addr", addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	s.log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return <-errCh
}

// Router exposes the assembled handler for tests.
func (s *Server) Router() http.Handler {
	return s.router
}
