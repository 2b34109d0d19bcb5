package gorm

import (
	"time"

	"gorm.io/gorm"

	"github.com/thebtf/resonance/pkg/models"
)

// ScoreRecord is the stored form of a computed score.
// Field order optimized for memory alignment (fieldalignment).
type ScoreRecord struct {
	Inputs         models.JSONObject `gorm:"type:jsonb;not null;default:'{}'"`
	ID             string            `gorm:"primaryKey;type:uuid"`
	Kind           string            `gorm:"type:text;check:kind IN ('dna', 'sigil', 'device', 'playlist', 'cosmic');not null;index:idx_score_records_kind_created,priority:1"`
	Subject        string            `gorm:"type:text;not null;default:''"`
	Label          string            `gorm:"type:text;not null;default:''"`
	CreatedAt      string            `gorm:"not null"`
	Score          int               `gorm:"not null"`
	CreatedAtEpoch int64             `gorm:"not null;index:idx_score_records_created,sort:desc;index:idx_score_records_kind_created,priority:2,sort:desc"`
}

func (ScoreRecord) TableName() string { return "score_records" }

// BeforeCreate hook to ensure timestamps are set.
func (r *ScoreRecord) BeforeCreate(tx *gorm.DB) error {
	if r.CreatedAtEpoch == 0 {
		r.CreatedAtEpoch = time.Now().UnixMilli()
	}
	if r.CreatedAt == "" {
		r.CreatedAt = time.UnixMilli(r.CreatedAtEpoch).UTC().Format(time.RFC3339)
	}
	return nil
}

func fromModel(rec *models.ScoreRecord) *ScoreRecord {
	inputs := rec.Inputs
	if inputs == nil {
		inputs = models.JSONObject{}
	}
	return &ScoreRecord{
		ID:             rec.ID,
		Kind:           string(rec.Kind),
		Subject:        rec.Subject,
		Label:          rec.Label,
		Score:          rec.Score,
		Inputs:         inputs,
		CreatedAtEpoch: rec.CreatedAtEpoch,
	}
}

func (r *ScoreRecord) toModel() *models.ScoreRecord {
	return &models.ScoreRecord{
		ID:             r.ID,
		Kind:           models.ScoreKind(r.Kind),
		Subject:        r.Subject,
		Label:          r.Label,
		Score:          r.Score,
		Inputs:         r.Inputs,
		CreatedAtEpoch: r.CreatedAtEpoch,
	}
}
