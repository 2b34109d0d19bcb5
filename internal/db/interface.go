// Package db defines database interfaces for the resonance score ledger.
package db

import (
	"context"

	"github.com/thebtf/resonance/pkg/models"
)

// ScoreReader defines read operations for recorded scores.
type ScoreReader interface {
	// GetRecentScores returns the newest records first. An empty kind matches all kinds.
	GetRecentScores(ctx context.Context, kind models.ScoreKind, limit int) ([]*models.ScoreRecord, error)
	GetScoreStats(ctx context.Context, kind models.ScoreKind) (*models.ScoreStats, error)
}

// ScoreWriter defines write operations for recorded scores.
type ScoreWriter interface {
	RecordScore(ctx context.Context, rec *models.ScoreRecord) error
	// PruneScores deletes records created before the epoch (ms) and returns how many.
	PruneScores(ctx context.Context, beforeEpoch int64) (int64, error)
}

// Optimizer is implemented by ledgers that can tune storage after pruning.
type Optimizer interface {
	Optimize(ctx context.Context) error
}

// ScoreLedger combines read and write operations for recorded scores.
type ScoreLedger interface {
	ScoreReader
	ScoreWriter
	Close() error
}
