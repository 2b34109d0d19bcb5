package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/thebtf/resonance/pkg/models"
)

// ScoreStore records computed scores in SQLite.
type ScoreStore struct {
	store *Store
}

// NewScoreStore creates a new score store.
func NewScoreStore(store *Store) *ScoreStore {
	return &ScoreStore{store: store}
}

// RecordScore inserts rec. Records without a creation time are stamped now.
func (s *ScoreStore) RecordScore(ctx context.Context, rec *models.ScoreRecord) error {
	if !rec.Kind.Valid() {
		return fmt.Errorf("record score: unknown kind %q", rec.Kind)
	}
	if rec.CreatedAtEpoch == 0 {
		rec.CreatedAtEpoch = time.Now().UnixMilli()
	}

	createdAt := time.UnixMilli(rec.CreatedAtEpoch).UTC().Format(time.RFC3339)
	_, err := s.store.exec(ctx, stmtInsertScore,
		rec.ID, string(rec.Kind), rec.Subject, rec.Label, rec.Score, rec.Inputs, rec.CreatedAtEpoch, createdAt,
	)
	if err != nil {
		return fmt.Errorf("record score: %w", err)
	}
	return nil
}

// GetRecentScores returns the newest records first. An empty kind matches all kinds.
func (s *ScoreStore) GetRecentScores(ctx context.Context, kind models.ScoreKind, limit int) ([]*models.ScoreRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.store.query(ctx, stmtRecentScores, string(kind), string(kind), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*models.ScoreRecord
	for rows.Next() {
		rec := &models.ScoreRecord{}
		var kindStr string
		if err := rows.Scan(&rec.ID, &kindStr, &rec.Subject, &rec.Label, &rec.Score, &rec.Inputs, &rec.CreatedAtEpoch); err != nil {
			return nil, err
		}
		rec.Kind = models.ScoreKind(kindStr)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// GetScoreStats aggregates the records of kind.
func (s *ScoreStore) GetScoreStats(ctx context.Context, kind models.ScoreKind) (*models.ScoreStats, error) {
	row, err := s.store.queryRow(ctx, stmtScoreStats, string(kind))
	if err != nil {
		return nil, err
	}
	stats := &models.ScoreStats{Kind: kind}
	if err := row.Scan(&stats.Count, &stats.Average, &stats.Min, &stats.Max); err != nil {
		return nil, err
	}
	return stats, nil
}

// PruneScores deletes records created before beforeEpoch (ms).
func (s *ScoreStore) PruneScores(ctx context.Context, beforeEpoch int64) (int64, error) {
	res, err := s.store.exec(ctx, stmtPruneScores, beforeEpoch)
	if err != nil {
		return 0, fmt.Errorf("prune scores: %w", err)
	}
	return res.RowsAffected()
}

// Optimize tunes the underlying store after pruning.
func (s *ScoreStore) Optimize(ctx context.Context) error {
	return s.store.Optimize(ctx)
}

// Close closes the underlying store.
func (s *ScoreStore) Close() error {
	return s.store.Close()
}
