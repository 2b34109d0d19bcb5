package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/thebtf/resonance/pkg/models"
)

// LoadTables reads a YAML scoring table file and overlays it on
// models.DefaultScoringConfig. Keys absent from the file keep their default.
// The merged configuration is validated before it is returned.
//
// Example:
//
//	bio_weights: {hrv: 0.5, breath: 0.25, focus: 0.25}
//	frequency_bonuses: {432: 4, 528: 8, 963: 12}
//	sigil_max_distance: 531
func LoadTables(path string) (*models.ScoringConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scoring tables: %w", err)
	}
	return ParseTables(data)
}

// ParseTables is LoadTables over an in-memory document.
func ParseTables(data []byte) (*models.ScoringConfig, error) {
	cfg := models.DefaultScoringConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse scoring tables: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate scoring tables: %w", err)
	}
	return cfg, nil
}
