// Package resonance wires the scoring primitives to the resonance domain:
// DNA beams, sacred sigils, AR device tiers, playlist analysis and cosmic
// alignment. An Engine is immutable once built and safe for concurrent use.
package resonance

import (
	"fmt"

	"github.com/thebtf/resonance/internal/scoring"
	"github.com/thebtf/resonance/pkg/models"
)

// DefaultBatchLimit bounds concurrent playlist analyses in a batch.
const DefaultBatchLimit = 4

// DeviceRule is a rule of the AR device tier table.
type DeviceRule = scoring.Rule[models.CapabilityFlags, models.Tier]

// DefaultDeviceRules returns the standard tier table:
// WebXR is full, gyroscope with camera is standard, camera alone is basic.
func DefaultDeviceRules() []DeviceRule {
	return []DeviceRule{
		scoring.When(models.TierFull, func(f models.CapabilityFlags) bool { return f.WebXR }),
		scoring.When(models.TierStandard, func(f models.CapabilityFlags) bool { return f.Gyroscope && f.Camera }),
		scoring.When(models.TierBasic, func(f models.CapabilityFlags) bool { return f.Camera }),
		scoring.Otherwise[models.CapabilityFlags](models.TierNone),
	}
}

// Builder configures an Engine. The zero value is not usable; call NewBuilder.
type Builder struct {
	cfg         *models.ScoringConfig
	deviceRules []DeviceRule
	universe    []models.Frequency
	batchLimit  int
}

// NewBuilder returns a builder preloaded with the default tables.
func NewBuilder() *Builder {
	return &Builder{
		cfg:         models.DefaultScoringConfig(),
		deviceRules: DefaultDeviceRules(),
		universe:    models.BeamFrequencies,
		batchLimit:  DefaultBatchLimit,
	}
}

// WithConfig replaces the scoring configuration. A nil config keeps the default.
func (b *Builder) WithConfig(cfg *models.ScoringConfig) *Builder {
	if cfg != nil {
		b.cfg = cfg
	}
	return b
}

// WithDeviceRules replaces the device tier table.
func (b *Builder) WithDeviceRules(rules ...DeviceRule) *Builder {
	b.deviceRules = rules
	return b
}

// WithUniverse replaces the closed set of playlist frequencies.
func (b *Builder) WithUniverse(freqs ...models.Frequency) *Builder {
	b.universe = freqs
	return b
}

// WithBatchLimit sets how many playlists a batch analyzes concurrently.
func (b *Builder) WithBatchLimit(n int) *Builder {
	b.batchLimit = n
	return b
}

// Build validates every static table and returns the engine.
// All configuration errors match scoring.ErrInvalidConfiguration.
func (b *Builder) Build() (*Engine, error) {
	if err := b.cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", scoring.ErrInvalidConfiguration, err)
	}
	cfg := b.cfg.Clone()

	sigilNormalizer, err := scoring.NewNormalizer(cfg.SigilMaxDistance)
	if err != nil {
		return nil, fmt.Errorf("sigil normalizer: %w", err)
	}

	deviceTiers, err := scoring.NewClassifier(b.deviceRules...)
	if err != nil {
		return nil, fmt.Errorf("device tier table: %w", err)
	}

	// Tallying nothing validates the universe itself.
	if _, err := scoring.Tally(nil, b.universe); err != nil {
		return nil, fmt.Errorf("playlist universe: %w", err)
	}
	universe := make([]models.Frequency, len(b.universe))
	copy(universe, b.universe)

	energyBands, err := scoring.NewClassifier(
		scoring.When(models.EnergyHigh, func(e int) bool { return e >= models.EnergyHighFloor }),
		scoring.When(models.EnergyMedium, func(e int) bool { return e >= models.EnergyMediumFloor }),
		scoring.Otherwise[int](models.EnergyLow),
	)
	if err != nil {
		return nil, fmt.Errorf("energy bands: %w", err)
	}

	highlyFavorableFrom := scoring.Score(cfg.HighlyFavorableFrom)
	recommendation, err := scoring.NewClassifier(
		scoring.When(models.RecommendHighlyFavorable, func(s scoring.Score) bool { return s >= highlyFavorableFrom }),
		scoring.Otherwise[scoring.Score](models.RecommendFavorable),
	)
	if err != nil {
		return nil, fmt.Errorf("cosmic recommendation: %w", err)
	}

	limit := b.batchLimit
	if limit <= 0 {
		limit = DefaultBatchLimit
	}

	return &Engine{
		cfg: cfg,
		frequencyBonus: scoring.BonusTable[models.Frequency]{
			Bonuses: cfg.FrequencyBonuses,
			Default: cfg.DefaultFrequencyBonus,
		},
		moonBonus: scoring.BonusTable[models.MoonPhase]{
			Bonuses: cfg.MoonBonuses,
			Default: cfg.DefaultMoonBonus,
		},
		planetaryBonus: scoring.BonusTable[models.PlanetaryAlignment]{
			Bonuses: cfg.PlanetaryBonuses,
			Default: cfg.DefaultPlanetaryBonus,
		},
		eventBonus: scoring.BonusTable[models.CosmicEvent]{
			Bonuses: cfg.EventBonuses,
		},
		sigilNormalizer: sigilNormalizer,
		deviceTiers:     deviceTiers,
		energyBands:     energyBands,
		recommendation:  recommendation,
		universe:        universe,
		batchLimit:      limit,
	}, nil
}

// Engine computes every resonance score from validated tables.
type Engine struct {
	cfg             *models.ScoringConfig
	frequencyBonus  scoring.BonusTable[models.Frequency]
	moonBonus       scoring.BonusTable[models.MoonPhase]
	planetaryBonus  scoring.BonusTable[models.PlanetaryAlignment]
	eventBonus      scoring.BonusTable[models.CosmicEvent]
	sigilNormalizer *scoring.Normalizer
	deviceTiers     *scoring.Classifier[models.CapabilityFlags, models.Tier]
	energyBands     *scoring.Classifier[int, models.EnergyBand]
	recommendation  *scoring.Classifier[scoring.Score, string]
	universe        []models.Frequency
	batchLimit      int
}

// Default builds an engine from the default tables.
func Default() *Engine {
	e, err := NewBuilder().Build()
	if err != nil {
		panic(fmt.Sprintf("default resonance tables invalid: %v", err))
	}
	return e
}

// Config returns a copy of the engine's scoring configuration.
func (e *Engine) Config() *models.ScoringConfig {
	return e.cfg.Clone()
}

// Universe returns the playlist frequency universe in declaration order.
func (e *Engine) Universe() []models.Frequency {
	u := make([]models.Frequency, len(e.universe))
	copy(u, e.universe)
	return u
}
