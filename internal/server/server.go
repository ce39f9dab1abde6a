package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/danmuck/liveurl/internal/config"
	"github.com/danmuck/liveurl/internal/nav"
	"github.com/danmuck/liveurl/internal/observability"
)

// Service is the navigation demo host: an HTTP surface over the session
// manager. Each managed session journals its host instructions so
// clients can inspect what their navigation requests produced.
type Service struct {
	cfg      config.ServiceConfig
	log      zerolog.Logger
	engine   *gin.Engine
	manager  *Manager
	base     nav.URL
	appeared time.Time
}

func NewService(cfg config.ServiceConfig, log zerolog.Logger) (*Service, error) {
	cfg = config.WithDefaults(cfg)
	if err := config.ValidateServiceConfig(cfg); err != nil {
		return nil, err
	}
	base, err := config.BaseURL(cfg.Endpoint)
	if err != nil {
		return nil, err
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(observability.RequestLogger(log))
	engine.Use(observability.RequestMetrics())
	if len(cfg.CorsOrigins) > 0 {
		corsCfg := cors.DefaultConfig()
		corsCfg.AllowOrigins = cfg.CorsOrigins
		engine.Use(cors.New(corsCfg))
	}

	svc := &Service{
		cfg:      cfg,
		log:      log,
		engine:   engine,
		manager:  NewManager(log),
		base:     base,
		appeared: time.Now(),
	}
	svc.registerRoutes()
	return svc, nil
}

// Handler exposes the router, mostly for httptest.
func (s *Service) Handler() http.Handler {
	return s.engine
}

// Run serves until the context is canceled, then drains sessions and
// shuts the listener down within the configured grace period.
func (s *Service) Run(ctx context.Context) error {
	srv := &http.Server{Addr: s.cfg.Addr, Handler: s.engine}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.ListenAndServe()
	}()
	s.log.Info().Str("addr", s.cfg.Addr).Msg("service listening")

	select {
	case err := <-serveErr:
		s.manager.Shutdown()
		return err
	case <-ctx.Done():
	}

	grace := time.Duration(s.cfg.ShutdownGraceMS) * time.Millisecond
	shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	s.manager.Shutdown()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	if serveResult := <-serveErr; serveResult != nil && !errors.Is(serveResult, http.ErrServerClosed) {
		return serveResult
	}
	s.log.Info().Msg("service stopped")
	return nil
}
