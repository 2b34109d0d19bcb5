package maintenance

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thebtf/resonance/internal/config"
	"github.com/thebtf/resonance/pkg/models"
)

// fakeLedger records prune calls.
type fakeLedger struct {
	mu      sync.Mutex
	cutoffs []int64
	pruned  int64
	err     error
}

func (f *fakeLedger) RecordScore(context.Context, *models.ScoreRecord) error { return nil }

func (f *fakeLedger) PruneScores(_ context.Context, before int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cutoffs = append(f.cutoffs, before)
	if f.err != nil {
		return 0, f.err
	}
	return f.pruned, nil
}

func (f *fakeLedger) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.cutoffs)
}

// optimizingLedger also counts Optimize calls.
type optimizingLedger struct {
	fakeLedger
	optimized int
	optErr    error
}

func (o *optimizingLedger) Optimize(context.Context) error {
	o.optimized++
	return o.optErr
}

func retentionConfig(days int) *config.Config {
	cfg := config.Default()
	cfg.LedgerRetentionDays = days
	return cfg
}

func TestRunOnce_PrunesBeforeCutoff(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	ledger := &fakeLedger{pruned: 7}
	svc := NewService(ledger, retentionConfig(30), zerolog.Nop(), WithClock(func() time.Time { return now }))

	assert.Equal(t, int64(7), svc.RunOnce(context.Background()))
	require.Len(t, ledger.cutoffs, 1)
	assert.Equal(t, now.AddDate(0, 0, -30).UnixMilli(), ledger.cutoffs[0])

	stats := svc.Stats()
	assert.Equal(t, true, stats["enabled"])
	assert.Equal(t, 30, stats["retention_days"])
	assert.Equal(t, int64(1), stats["total_runs"])
	assert.Equal(t, int64(7), stats["total_pruned"])
	assert.Equal(t, "2026-03-10T12:00:00Z", stats["last_run"])
	assert.NotContains(t, stats, "last_error")
}

func TestRunOnce_OptimizesAfterPrune(t *testing.T) {
	ledger := &optimizingLedger{fakeLedger: fakeLedger{pruned: 3}}
	svc := NewService(ledger, retentionConfig(30), zerolog.Nop())

	svc.RunOnce(context.Background())
	assert.Equal(t, 1, ledger.optimized)
	assert.Equal(t, int64(1), svc.Stats()["total_optimize"])

	ledger.pruned = 0
	svc.RunOnce(context.Background())
	assert.Equal(t, 1, ledger.optimized)
}

func TestRunOnce_OptimizeError(t *testing.T) {
	ledger := &optimizingLedger{fakeLedger: fakeLedger{pruned: 3}, optErr: errors.New("locked")}
	svc := NewService(ledger, retentionConfig(30), zerolog.Nop())

	assert.Equal(t, int64(3), svc.RunOnce(context.Background()))
	stats := svc.Stats()
	assert.Equal(t, "locked", stats["last_error"])
	assert.Equal(t, int64(0), stats["total_optimize"])
}

func TestRunOnce_Disabled(t *testing.T) {
	ledger := &fakeLedger{}
	svc := NewService(ledger, retentionConfig(0), zerolog.Nop())

	assert.False(t, svc.Enabled())
	assert.Zero(t, svc.RunOnce(context.Background()))
	assert.Zero(t, ledger.calls())
}

func TestRunOnce_LedgerError(t *testing.T) {
	ledger := &fakeLedger{err: errors.New("disk full")}
	svc := NewService(ledger, retentionConfig(1), zerolog.Nop())

	assert.Zero(t, svc.RunOnce(context.Background()))
	assert.Equal(t, "disk full", svc.Stats()["last_error"])
}

func TestNewService_IntervalFloor(t *testing.T) {
	cfg := retentionConfig(1)
	cfg.MaintenanceIntervalHours = 0
	svc := NewService(&fakeLedger{}, cfg, zerolog.Nop())
	assert.Equal(t, time.Hour, svc.interval)
}

func TestStart_RunsAfterInitialDelayAndStops(t *testing.T) {
	ledger := &fakeLedger{}
	svc := NewService(ledger, retentionConfig(7), zerolog.Nop(), WithInitialDelay(time.Millisecond))

	go svc.Start(context.Background())
	assert.Eventually(t, func() bool { return ledger.calls() == 1 }, 2*time.Second, 5*time.Millisecond)

	svc.Stop()
	svc.Stop()
	svc.Wait()
	assert.Equal(t, false, svc.Stats()["running"])
}

func TestStart_ContextCancelledBeforeFirstRun(t *testing.T) {
	ledger := &fakeLedger{}
	svc := NewService(ledger, retentionConfig(7), zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	svc.Start(ctx)

	assert.Zero(t, ledger.calls())
}

func TestStart_DisabledReturnsImmediately(t *testing.T) {
	svc := NewService(&fakeLedger{}, retentionConfig(0), zerolog.Nop())

	done := make(chan struct{})
	go func() {
		svc.Start(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return with retention disabled")
	}
	svc.Wait()
}
