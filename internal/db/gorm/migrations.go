package gorm

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

// runMigrations runs all database migrations using gormigrate.
func runMigrations(db *gorm.DB) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, migrations())
	return m.Migrate()
}

func migrations() []*gormigrate.Migration {
	return []*gormigrate.Migration{
		// Migration 001: score ledger
		{
			ID: "001_score_records",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&ScoreRecord{})
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable("score_records")
			},
		},

		// Migration 002: partial index for scored records used by stats
		{
			ID: "002_score_records_scored_idx",
			Migrate: func(tx *gorm.DB) error {
				return tx.Exec(`CREATE INDEX IF NOT EXISTS idx_score_records_scored
					ON score_records(kind, score) WHERE score >= 0`).Error
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Exec(`DROP INDEX IF EXISTS idx_score_records_scored`).Error
			},
		},
	}
}
