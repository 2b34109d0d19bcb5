// Package worker serves the resonance scoring engine over HTTP.
package worker

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"gorm.io/gorm/logger"

	"github.com/thebtf/resonance/internal/config"
	"github.com/thebtf/resonance/internal/db"
	gormdb "github.com/thebtf/resonance/internal/db/gorm"
	"github.com/thebtf/resonance/internal/db/sqlite"
	"github.com/thebtf/resonance/internal/maintenance"
	"github.com/thebtf/resonance/internal/resonance"
	"github.com/thebtf/resonance/internal/watcher"
	"github.com/thebtf/resonance/internal/worker/sse"
)

const (
	// DefaultHTTPTimeout is the default timeout for HTTP requests.
	DefaultHTTPTimeout = 30 * time.Second

	// ReadyPollInterval is how often WaitReady checks initialization status.
	ReadyPollInterval = 50 * time.Millisecond
)

// ErrLedgerDisabled is returned by ledger routes when no ledger is configured.
var ErrLedgerDisabled = errors.New("score ledger disabled")

// Service is the worker: engine, ledger, event stream and HTTP router.
type Service struct {
	version string
	config  *config.Config

	// Current engine; replaced whole on table reload
	engine atomic.Pointer[resonance.Engine]

	// Nil when the ledger driver is "none"
	ledger db.ScoreLedger

	sseBroadcaster *sse.Broadcaster
	metrics        *Metrics
	tokenAuth      *TokenAuth
	rateLimiter    *PerClientRateLimiter
	tablesWatcher  *watcher.TablesWatcher
	maintenance    *maintenance.Service

	router    *chi.Mux
	server    *http.Server
	startTime time.Time

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	ready     atomic.Bool
	initError error
	initMu    sync.RWMutex
}

// NewService creates the worker from the global configuration and starts
// initializing it in the background. Routes that need the engine answer
// 503 until initialization finishes.
func NewService(version string) (*Service, error) {
	s, err := newService(version, config.Get())
	if err != nil {
		return nil, err
	}
	go s.initializeAsync()
	return s, nil
}

// newService builds the router without initializing the engine or ledger.
func newService(version string, cfg *config.Config) (*Service, error) {
	metrics, err := NewMetrics(otel.GetMeterProvider())
	if err != nil {
		return nil, fmt.Errorf("register metrics: %w", err)
	}

	token := cfg.AuthToken
	if token == config.AuthTokenAuto {
		if token, err = GenerateToken(); err != nil {
			return nil, fmt.Errorf("generate auth token: %w", err)
		}
		log.Warn().Str("token", token).Msg("Generated worker auth token")
	}

	ctx, cancel := context.WithCancel(context.Background())

	s := &Service{
		version:        version,
		config:         cfg,
		sseBroadcaster: sse.NewBroadcaster(),
		metrics:        metrics,
		tokenAuth:      NewTokenAuth(token),
		router:         chi.NewRouter(),
		startTime:      time.Now(),
		ctx:            ctx,
		cancel:         cancel,
	}
	if cfg.RateLimit > 0 {
		s.rateLimiter = NewPerClientRateLimiter(cfg.RateLimit, cfg.RateBurst)
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s, nil
}

// initializeAsync runs initialize and records its outcome.
func (s *Service) initializeAsync() {
	if err := s.initialize(); err != nil {
		log.Error().Err(err).Msg("Worker initialization failed")
		s.setInitError(err)
		return
	}
	log.Info().
		Str("ledger", s.config.LedgerDriver).
		Str("tables", s.config.TablesPath).
		Dur("took", time.Since(s.startTime)).
		Msg("Worker ready")
}

func (s *Service) initialize() error {
	engine, err := s.buildEngine(s.config.TablesPath)
	if err != nil {
		return err
	}
	s.engine.Store(engine)

	ledger, err := openLedger(s.config)
	if err != nil {
		return err
	}
	s.ledger = ledger

	if ledger != nil && s.config.LedgerRetentionDays > 0 {
		s.maintenance = maintenance.NewService(ledger, s.config, log.Logger)
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.maintenance.Start(s.ctx)
		}()
	}

	if s.config.TablesPath != "" {
		if err := s.startWatchers(); err != nil {
			// The engine is loaded; only live reload is lost.
			log.Warn().Err(err).Str("path", s.config.TablesPath).Msg("Scoring tables watcher not started")
		}
	}

	s.ready.Store(true)
	return nil
}

// buildEngine loads tables from path, or the defaults when path is empty.
func (s *Service) buildEngine(path string) (*resonance.Engine, error) {
	b := resonance.NewBuilder()
	if path != "" {
		tables, err := config.LoadTables(path)
		if err != nil {
			return nil, err
		}
		b = b.WithConfig(tables)
	}
	engine, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("build engine: %w", err)
	}
	return engine, nil
}

// openLedger opens the configured score ledger. The "none" driver yields nil.
func openLedger(cfg *config.Config) (db.ScoreLedger, error) {
	switch cfg.LedgerDriver {
	case config.LedgerNone:
		return nil, nil
	case config.LedgerPostgres:
		if cfg.PostgresDSN == "" {
			return nil, fmt.Errorf("open postgres ledger: RESONANCE_POSTGRES_DSN not set")
		}
		store, err := gormdb.NewStore(gormdb.Config{
			DSN:      cfg.PostgresDSN,
			MaxConns: cfg.MaxConns,
			LogLevel: logger.Silent,
		})
		if err != nil {
			return nil, fmt.Errorf("open postgres ledger: %w", err)
		}
		return gormdb.NewScoreStore(store), nil
	default:
		if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0750); err != nil {
			return nil, fmt.Errorf("create ledger directory: %w", err)
		}
		store, err := sqlite.NewStore(sqlite.StoreConfig{Path: cfg.DBPath, MaxConns: cfg.MaxConns})
		if err != nil {
			return nil, fmt.Errorf("open sqlite ledger: %w", err)
		}
		return sqlite.NewScoreStore(store), nil
	}
}

// startWatchers reloads the engine whenever the tables file changes.
func (s *Service) startWatchers() error {
	tw, err := watcher.New(s.config.TablesPath, s.reloadTables)
	if err != nil {
		return err
	}
	if err := tw.Start(s.ctx); err != nil {
		return err
	}
	s.tablesWatcher = tw
	return nil
}

// reloadTables rebuilds the engine from path and swaps it in. On error the
// running engine stays in place.
func (s *Service) reloadTables(path string) error {
	engine, err := s.buildEngine(path)
	s.metrics.RecordReload(s.ctx, err == nil)
	if err != nil {
		return err
	}
	s.engine.Store(engine)
	s.sseBroadcaster.Broadcast(sse.Event{Type: sse.EventTablesReloaded})
	return nil
}

func (s *Service) setInitError(err error) {
	s.initMu.Lock()
	defer s.initMu.Unlock()
	s.initError = err
}

// GetInitError returns the initialization error, if any.
func (s *Service) GetInitError() error {
	s.initMu.RLock()
	defer s.initMu.RUnlock()
	return s.initError
}

// WaitReady blocks until the service is ready, initialization fails or ctx ends.
func (s *Service) WaitReady(ctx context.Context) error {
	ticker := time.NewTicker(ReadyPollInterval)
	defer ticker.Stop()
	for {
		if s.ready.Load() {
			return nil
		}
		if err := s.GetInitError(); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Engine returns the engine currently serving requests, or nil before
// initialization.
func (s *Service) Engine() *resonance.Engine {
	return s.engine.Load()
}

func (s *Service) setupMiddleware() {
	s.router.Use(middleware.RealIP)
	s.router.Use(RequestID)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(DefaultHTTPTimeout))
	s.router.Use(SecurityHeaders)
	s.router.Use(MaxBodySize(s.config.MaxBodyBytes))
	s.router.Use(s.tokenAuth.Middleware)
}

func (s *Service) setupRoutes() {
	s.router.Get("/health", s.handleHealth)
	s.router.Get("/api/health", s.handleHealth)
	s.router.Get("/api/ready", s.handleReady)
	s.router.Get("/api/version", s.handleVersion)
	s.router.Get("/api/events", s.sseBroadcaster.HandleSSE)

	s.router.Group(func(r chi.Router) {
		r.Use(s.requireReady)

		r.Get("/api/frequencies", s.handleGetFrequencies)
		r.Get("/api/scores/recent", s.handleGetRecentScores)
		r.Get("/api/scores/stats", s.handleGetScoreStats)
		r.Get("/api/stats", s.handleGetStats)

		r.Group(func(r chi.Router) {
			r.Use(RequireJSONContentType)
			if s.rateLimiter != nil {
				r.Use(PerClientRateLimitMiddleware(s.rateLimiter))
			}

			r.Post("/api/resonance/dna", s.handleDNAResonance)
			r.Post("/api/resonance/sigil", s.handleSigilResonance)
			r.Post("/api/devices/compatibility", s.handleDeviceCompatibility)
			r.Post("/api/playlists/analyze", s.handleAnalyzePlaylist)
			r.Post("/api/playlists/analyze/batch", s.handleAnalyzePlaylists)
			r.Post("/api/cosmic/alignment", s.handleCosmicAlignment)
		})
	})
}

// Start begins serving HTTP in the background.
func (s *Service) Start() error {
	port := s.config.Port()

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("HTTP server error")
		}
	}()

	log.Info().Int("port", port).Msg("Worker HTTP server started")
	return nil
}

// Shutdown stops the watcher, the maintenance loop, the HTTP server and the ledger.
func (s *Service) Shutdown(ctx context.Context) error {
	s.cancel()

	if s.tablesWatcher != nil {
		s.tablesWatcher.Stop()
	}

	if s.server != nil {
		if err := s.server.Shutdown(ctx); err != nil {
			log.Error().Err(err).Msg("HTTP server shutdown error")
		}
	}

	s.wg.Wait()

	if s.ready.Load() && s.ledger != nil {
		if err := s.ledger.Close(); err != nil {
			log.Error().Err(err).Msg("Score ledger close error")
		}
	}

	log.Info().Msg("Worker service shutdown complete")
	return nil
}
