package gorm

import (
	"context"
	"fmt"

	"github.com/thebtf/resonance/pkg/models"
)

// ScoreStore records computed scores in PostgreSQL.
type ScoreStore struct {
	store *Store
}

// NewScoreStore creates a new score store.
func NewScoreStore(store *Store) *ScoreStore {
	return &ScoreStore{store: store}
}

// RecordScore inserts rec.
func (s *ScoreStore) RecordScore(ctx context.Context, rec *models.ScoreRecord) error {
	if !rec.Kind.Valid() {
		return fmt.Errorf("record score: unknown kind %q", rec.Kind)
	}

	row := fromModel(rec)
	if err := s.store.DB.WithContext(ctx).Create(row).Error; err != nil {
		return fmt.Errorf("record score: %w", err)
	}
	rec.CreatedAtEpoch = row.CreatedAtEpoch
	return nil
}

// GetRecentScores returns the newest records first. An empty kind matches all kinds.
func (s *ScoreStore) GetRecentScores(ctx context.Context, kind models.ScoreKind, limit int) ([]*models.ScoreRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	q := s.store.DB.WithContext(ctx).Order("created_at_epoch DESC").Limit(limit)
	if kind != "" {
		q = q.Where("kind = ?", string(kind))
	}

	var rows []ScoreRecord
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}

	records := make([]*models.ScoreRecord, len(rows))
	for i := range rows {
		records[i] = rows[i].toModel()
	}
	return records, nil
}

// GetScoreStats aggregates the records of kind.
func (s *ScoreStore) GetScoreStats(ctx context.Context, kind models.ScoreKind) (*models.ScoreStats, error) {
	var row struct {
		Count    int64
		Average  float64
		MinScore int
		MaxScore int
	}

	err := s.store.DB.WithContext(ctx).
		Model(&ScoreRecord{}).
		Select(`COUNT(*) AS count,
			COALESCE(AVG(score) FILTER (WHERE score >= 0), 0) AS average,
			COALESCE(MIN(score) FILTER (WHERE score >= 0), 0) AS min_score,
			COALESCE(MAX(score) FILTER (WHERE score >= 0), 0) AS max_score`).
		Where("kind = ?", string(kind)).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}

	return &models.ScoreStats{
		Kind:    kind,
		Count:   row.Count,
		Average: row.Average,
		Min:     row.MinScore,
		Max:     row.MaxScore,
	}, nil
}

// PruneScores deletes records created before beforeEpoch (ms).
func (s *ScoreStore) PruneScores(ctx context.Context, beforeEpoch int64) (int64, error) {
	res := s.store.DB.WithContext(ctx).Where("created_at_epoch < ?", beforeEpoch).Delete(&ScoreRecord{})
	if res.Error != nil {
		return 0, fmt.Errorf("prune scores: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// Optimize refreshes planner statistics for the ledger table.
func (s *ScoreStore) Optimize(ctx context.Context) error {
	if err := s.store.DB.WithContext(ctx).Exec("ANALYZE score_records").Error; err != nil {
		return fmt.Errorf("analyze score_records: %w", err)
	}
	return nil
}

// Close closes the underlying store.
func (s *ScoreStore) Close() error {
	return s.store.Close()
}
