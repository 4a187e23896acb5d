package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/go-chi/chi/v5"

	"deflect-hq/roicalc/pkg/analytics"
	"deflect-hq/roicalc/pkg/calculator"
	"deflect-hq/roicalc/pkg/config"
	"deflect-hq/roicalc/pkg/costmodel"
	"deflect-hq/roicalc/pkg/plans"
	"deflect-hq/roicalc/pkg/server/handlers"
	"deflect-hq/roicalc/pkg/server/middleware"
	"deflect-hq/roicalc/pkg/sessions"
	"deflect-hq/roicalc/pkg/telemetry/health"
	"deflect-hq/roicalc/pkg/telemetry/metrics"
)

// BuildInfo is reported by /version.
type BuildInfo struct {
	Version   string
	Commit    string
	BuildTime string
}

// Options supplies optional collaborators. Zero values are built from the
// configuration.
type Options struct {
	Logger *slog.Logger

	// Source overrides the catalog loaded from Catalog.Path.
	Source *plans.Source

	Collector *metrics.Collector
	Tracker   analytics.Tracker
	Build     BuildInfo
}

// Server is the calculator HTTP server.
type Server struct {
	config    *config.Config
	logger    *slog.Logger
	build     BuildInfo
	source    *plans.Source
	collector *metrics.Collector
	tracker   analytics.Tracker

	preset       costmodel.Preset
	teaserPreset costmodel.TeaserPreset

	store   *sessions.Store
	sweeper *sessions.Sweeper
	limiter *middleware.RateLimiter
	health  *health.Checker
	api     *handlers.API
	handler http.Handler

	httpServer   *http.Server
	shutdownChan chan struct{}
	shutdownOnce sync.Once
	background   sync.WaitGroup
	stopBg       context.CancelFunc
	mu           sync.RWMutex
	isRunning    bool
}

// New builds a server from cfg. Nothing listens until Start.
func New(cfg *config.Config, opts Options) (*Server, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	preset, err := costmodel.PresetByName(cfg.Calculator.Preset)
	if err != nil {
		return nil, err
	}
	teaserPreset, err := costmodel.TeaserPresetByName(cfg.Calculator.TeaserPreset)
	if err != nil {
		return nil, err
	}

	source := opts.Source
	if source == nil {
		catalog, err := plans.LoadOrDefault(cfg.Catalog.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to load plan catalog: %w", err)
		}
		source = plans.NewSource(catalog)
	}

	collector := opts.Collector
	if collector == nil {
		collector = metrics.NewCollector(cfg.Telemetry.Metrics, nil)
	}

	tracker := opts.Tracker
	if tracker == nil {
		if tracker, err = analytics.FromConfig(cfg.Analytics, logger, collector); err != nil {
			return nil, err
		}
	}

	s := &Server{
		config:       cfg,
		logger:       logger.With("component", "server"),
		build:        opts.Build,
		source:       source,
		collector:    collector,
		tracker:      tracker,
		preset:       preset,
		teaserPreset: teaserPreset,
		shutdownChan: make(chan struct{}),
	}

	if err := s.checkCatalog(source.Catalog()); err != nil {
		return nil, fmt.Errorf("invalid calculator settings: %w", err)
	}

	s.store = sessions.NewStore(s.newSessionController, sessions.Config{
		IdleTimeout: cfg.Sessions.IdleTimeout,
		MaxSessions: cfg.Sessions.MaxSessions,
		Logger:      logger,
		Collector:   collector,
	})
	s.sweeper = sessions.NewSweeper(s.store, cfg.Sessions.SweepSchedule, logger)

	if cfg.Server.RateLimit.Enabled {
		if s.limiter, err = middleware.NewRateLimiter(cfg.Server.RateLimit, collector); err != nil {
			return nil, fmt.Errorf("invalid rate limit settings: %w", err)
		}
	}

	s.health = health.New(0)
	s.health.Register("catalog", func(context.Context) error {
		c := s.source.Catalog()
		if c == nil || c.Len() == 0 {
			return errors.New("no plan catalog loaded")
		}
		return s.checkCatalog(c)
	})
	s.health.Register("sessions", func(context.Context) error {
		if s.store.Full() {
			return sessions.ErrFull
		}
		return nil
	})

	s.api = handlers.New(handlers.Config{
		Source:         source,
		Sessions:       s.store,
		NewController:  s.newWidgetController,
		Preset:         preset,
		TeaserPreset:   teaserPreset,
		FrameInterval:  cfg.Calculator.FrameInterval,
		AllowedOrigins: cfg.Server.CORS.AllowedOrigins,
		Logger:         logger,
		Collector:      collector,
	})

	s.handler = s.setupRoutes()
	return s, nil
}

// controllerOptions are the calculator settings shared by every surface.
func (s *Server) controllerOptions() []calculator.Option {
	c := s.config.Calculator
	return []calculator.Option{
		calculator.WithPreset(s.preset),
		calculator.WithTeaserPreset(s.teaserPreset),
		calculator.WithSlider(c.Slider.Min, c.Slider.Max, c.Slider.Step),
		calculator.WithDefaults(c.DefaultPlan, c.DefaultVolume),
		calculator.WithDuration(c.AnimationDuration),
		calculator.WithLogger(s.logger),
	}
}

// checkCatalog reports whether a calculator can be built on c with the
// configured settings.
func (s *Server) checkCatalog(c *plans.Catalog) error {
	ctrl, err := calculator.New(c, s.controllerOptions()...)
	if err != nil {
		return err
	}
	ctrl.Close()
	return nil
}

// newSessionController reads the catalog current now, so catalog reloads
// reach new sessions only.
func (s *Server) newSessionController() (*calculator.Controller, error) {
	opts := append(s.controllerOptions(),
		calculator.WithTracker(s.tracker),
		calculator.WithDebounce(s.config.Analytics.Debounce),
		calculator.WithMetrics(s.collector, metrics.SourceSession),
	)
	return calculator.New(s.source.Catalog(), opts...)
}

// newWidgetController backs one page render. It emits no analytics since
// it is discarded before any debounce could fire.
func (s *Server) newWidgetController() (*calculator.Controller, error) {
	opts := append(s.controllerOptions(),
		calculator.WithMetrics(s.collector, metrics.SourceAPI),
	)
	return calculator.New(s.source.Catalog(), opts...)
}

// Start serves until ctx is cancelled, a signal arrives, or Shutdown is
// called. It also runs the session sweeper, the rate limiter cleanup and,
// when configured, the catalog watcher.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}
	s.isRunning = true
	s.mu.Unlock()

	bgCtx, stopBg := context.WithCancel(context.Background())
	s.stopBg = stopBg
	if err := s.startBackground(bgCtx); err != nil {
		stopBg()
		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()
		return err
	}

	cfg := s.config.Server
	s.httpServer = &http.Server{
		Addr:           cfg.ListenAddress,
		Handler:        s.handler,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxHeaderBytes: cfg.MaxHeaderBytes,
	}
	s.httpServer.RegisterOnShutdown(s.api.Close)

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("starting calculator server",
			"address", cfg.ListenAddress,
			"catalog_version", s.source.Catalog().Version(),
			"metrics_enabled", s.config.Telemetry.Metrics.Enabled,
		)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case <-ctx.Done():
		s.logger.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case sig := <-sigChan:
		s.logger.Info("received shutdown signal", "signal", sig.String())
		return s.Shutdown(context.Background())
	case err := <-errChan:
		_ = s.Shutdown(context.Background())
		return err
	case <-s.shutdownChan:
		s.logger.Info("shutdown requested")
		return s.Shutdown(context.Background())
	}
}

func (s *Server) startBackground(ctx context.Context) error {
	if err := s.sweeper.Start(ctx); err != nil {
		return err
	}
	if next := s.sweeper.NextRun(); next != nil {
		s.logger.Debug("session sweeper scheduled", "next_sweep", *next)
	}

	if s.limiter != nil {
		s.background.Add(1)
		go func() {
			defer s.background.Done()
			s.limiter.Run(ctx.Done(), s.config.Server.RateLimit.StaleAfter)
		}()
	}

	if s.config.Catalog.Watch && s.config.Catalog.Path != "" {
		w, err := plans.NewWatcher(s.config.Catalog.Path, s.source, s.config.Catalog.WatchDebounce, s.logger)
		if err != nil {
			s.sweeper.Stop()
			return err
		}
		w.Validate = s.checkCatalog
		w.OnReload = func(*plans.Catalog) {
			s.collector.RecordCatalogReload(true)
		}
		w.OnError = func(error) {
			s.collector.RecordCatalogReload(false)
		}

		s.background.Add(1)
		go func() {
			defer s.background.Done()
			if err := w.Watch(ctx); err != nil {
				s.logger.Error("catalog watcher stopped", "error", err)
			}
		}()
	}

	return nil
}

// Shutdown stops accepting requests, closes frame streams and waits up to
// the shutdown timeout for in-flight requests. Sessions are discarded.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		if !s.isRunning {
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()

		s.logger.Info("initiating graceful shutdown", "timeout", s.config.Server.ShutdownTimeout.String())

		shutdownCtx, cancel := context.WithTimeout(ctx, s.config.Server.ShutdownTimeout)
		defer cancel()

		if s.httpServer != nil {
			if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
				s.logger.Error("error during server shutdown", "error", err)
				shutdownErr = fmt.Errorf("server shutdown error: %w", err)
			}
		}
		s.api.Close()

		if s.stopBg != nil {
			s.stopBg()
		}
		s.sweeper.Stop()
		s.background.Wait()
		s.store.Close()

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		s.logger.Info("calculator server stopped")
	})

	return shutdownErr
}

// Stop asks a running Start to shut down.
func (s *Server) Stop() {
	select {
	case <-s.shutdownChan:
	default:
		close(s.shutdownChan)
	}
}

// setupRoutes builds the router and middleware chain.
func (s *Server) setupRoutes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(s.logger))
	r.Use(middleware.Logging(s.logger, s.collector))
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS(s.config.Server.CORS))
	if s.limiter != nil {
		r.Use(s.limiter.Middleware)
	}

	r.NotFound(handlers.NotFound)
	r.MethodNotAllowed(handlers.MethodNotAllowed)

	r.Get("/health", s.health.LivenessHandler())
	r.Get("/ready", s.health.ReadinessHandler())
	r.Get("/version", health.VersionHandler(s.build.Version, s.build.Commit, s.build.BuildTime))

	if m := s.config.Telemetry.Metrics; m.Enabled {
		r.Method(http.MethodGet, m.Path, s.collector.Handler())
	}

	s.api.Routes(r)
	return r
}

// IsRunning reports whether Start is serving.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Handler returns the configured HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Sessions returns the session store.
func (s *Server) Sessions() *sessions.Store {
	return s.store
}

// Source returns the catalog source.
func (s *Server) Source() *plans.Source {
	return s.source
}
