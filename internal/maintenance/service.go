// Package maintenance prunes the score ledger on a schedule.
package maintenance

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/thebtf/resonance/internal/config"
	"github.com/thebtf/resonance/internal/db"
)

// DefaultInitialDelay lets the worker settle before the first run.
const DefaultInitialDelay = 5 * time.Minute

// Service deletes ledger records older than the retention period.
type Service struct {
	log          zerolog.Logger
	ledger       db.ScoreWriter
	retention    time.Duration
	interval     time.Duration
	initialDelay time.Duration
	now          func() time.Time
	stopCh       chan struct{}
	doneCh       chan struct{}

	mu              sync.Mutex
	running         bool
	stopped         bool
	lastRunTime     time.Time
	lastRunDuration time.Duration
	lastError       error
	totalPruned     int64
	totalRuns       int64
	totalOptimized  int64
}

// Option configures a Service.
type Option func(*Service)

// WithInitialDelay overrides DefaultInitialDelay.
func WithInitialDelay(d time.Duration) Option {
	return func(s *Service) { s.initialDelay = d }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a maintenance service for ledger. Retention and interval
// come from cfg; the interval is at least one hour.
func NewService(ledger db.ScoreWriter, cfg *config.Config, log zerolog.Logger, opts ...Option) *Service {
	s := &Service{
		log:          log.With().Str("component", "maintenance").Logger(),
		ledger:       ledger,
		retention:    time.Duration(cfg.LedgerRetentionDays) * 24 * time.Hour,
		interval:     max(time.Duration(cfg.MaintenanceIntervalHours)*time.Hour, time.Hour),
		initialDelay: DefaultInitialDelay,
		now:          time.Now,
		stopCh:       make(chan struct{}),
		doneCh:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Enabled reports whether a retention period is configured.
func (s *Service) Enabled() bool {
	return s.retention > 0
}

// Start runs the maintenance loop until ctx is done or Stop is called.
func (s *Service) Start(ctx context.Context) {
	s.mu.Lock()
	if s.running || s.stopped {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
		close(s.doneCh)
	}()

	if !s.Enabled() {
		s.log.Info().Msg("Ledger retention disabled, not starting scheduler")
		return
	}

	s.log.Info().
		Dur("interval", s.interval).
		Dur("retention", s.retention).
		Msg("Starting maintenance scheduler")

	delay := time.NewTimer(s.initialDelay)
	defer delay.Stop()
	select {
	case <-ctx.Done():
		return
	case <-s.stopCh:
		return
	case <-delay.C:
	}
	s.RunOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info().Msg("Maintenance shutting down due to context cancellation")
			return
		case <-s.stopCh:
			s.log.Info().Msg("Maintenance shutting down due to stop signal")
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// Stop signals the loop to exit. Safe to call more than once, and before Start.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return
	}
	s.stopped = true
	close(s.stopCh)
}

// Wait blocks until a started loop has exited.
func (s *Service) Wait() {
	<-s.doneCh
}

// RunOnce prunes records older than the retention period and returns how
// many were deleted. Ledgers implementing db.Optimizer are optimized after a
// prune that removed rows. It does nothing when retention is disabled.
func (s *Service) RunOnce(ctx context.Context) int64 {
	if !s.Enabled() {
		return 0
	}

	start := s.now()
	cutoff := start.Add(-s.retention).UnixMilli()

	pruned, err := s.ledger.PruneScores(ctx, cutoff)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to prune score ledger")
	} else {
		s.log.Info().Int64("pruned", pruned).Int64("cutoff_epoch", cutoff).Msg("Pruned score ledger")
	}

	optimized := false
	if o, ok := s.ledger.(db.Optimizer); ok && err == nil && pruned > 0 {
		if err = o.Optimize(ctx); err != nil {
			s.log.Warn().Err(err).Msg("Failed to optimize score ledger")
		} else {
			optimized = true
		}
	}

	s.mu.Lock()
	s.lastRunTime = start
	s.lastRunDuration = s.now().Sub(start)
	s.lastError = err
	s.totalPruned += pruned
	s.totalRuns++
	if optimized {
		s.totalOptimized++
	}
	s.mu.Unlock()

	return pruned
}

// Stats returns maintenance statistics.
func (s *Service) Stats() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := map[string]any{
		"enabled":        s.retention > 0,
		"running":        s.running,
		"retention_days": int(s.retention / (24 * time.Hour)),
		"interval":       s.interval.String(),
		"total_runs":     s.totalRuns,
		"total_pruned":   s.totalPruned,
		"total_optimize": s.totalOptimized,
	}
	if !s.lastRunTime.IsZero() {
		stats["last_run"] = s.lastRunTime.UTC().Format(time.RFC3339)
		stats["last_run_duration"] = s.lastRunDuration.String()
	}
	if s.lastError != nil {
		stats["last_error"] = s.lastError.Error()
	}
	return stats
}
