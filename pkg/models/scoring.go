package models

import (
	"fmt"
	"math"
)

// Biometric signal names.
const (
	SignalHRV    = "hrv"
	SignalBreath = "breath"
	SignalFocus  = "focus"
)

// DefaultFrequencyBonuses contains the resonance bonus for each beam frequency.
// Higher frequencies carry a larger bonus.
var DefaultFrequencyBonuses = map[Frequency]int{
	FreqEarth:  5,  // Grounding
	FreqLove:   8,  // Healing
	FreqDivine: 10, // Unity
}

// BioWeights are the weights of each biometric signal.
// They conventionally sum to 1.
type BioWeights struct {
	HRV    float64 `json:"hrv" yaml:"hrv"`
	Breath float64 `json:"breath" yaml:"breath"`
	Focus  float64 `json:"focus" yaml:"focus"`
}

// BioDefaults are substituted for missing biometric readings.
type BioDefaults struct {
	HRV    float64 `json:"hrv" yaml:"hrv"`
	Breath float64 `json:"breath" yaml:"breath"`
	Focus  float64 `json:"focus" yaml:"focus"`
}

// ScoringConfig contains all scoring weights and table parameters.
type ScoringConfig struct {
	// BioWeights weight the biometric signals of DNA resonance.
	BioWeights BioWeights `json:"bio_weights" yaml:"bio_weights"`

	// BioDefaults replace readings the biometric source did not supply.
	BioDefaults BioDefaults `json:"bio_defaults" yaml:"bio_defaults"`

	// FrequencyBonuses add a fixed offset to DNA resonance per beam frequency.
	FrequencyBonuses map[Frequency]int `json:"frequency_bonuses" yaml:"frequency_bonuses"`

	// DefaultFrequencyBonus applies to frequencies missing from FrequencyBonuses.
	DefaultFrequencyBonus int `json:"default_frequency_bonus" yaml:"default_frequency_bonus"`

	// SigilMaxDistance is the maximum frequency distance for sigil resonance.
	// It must be positive.
	SigilMaxDistance float64 `json:"sigil_max_distance" yaml:"sigil_max_distance"`

	// CosmicBase is the base cosmic alignment score before bonuses.
	CosmicBase float64 `json:"cosmic_base" yaml:"cosmic_base"`

	// MoonBonuses add to the cosmic score per moon phase; other phases get DefaultMoonBonus.
	MoonBonuses      map[MoonPhase]int `json:"moon_bonuses" yaml:"moon_bonuses"`
	DefaultMoonBonus int               `json:"default_moon_bonus" yaml:"default_moon_bonus"`

	// PlanetaryBonuses add to the cosmic score per planetary alignment.
	PlanetaryBonuses      map[PlanetaryAlignment]int `json:"planetary_bonuses" yaml:"planetary_bonuses"`
	DefaultPlanetaryBonus int                        `json:"default_planetary_bonus" yaml:"default_planetary_bonus"`

	// EventBonuses add to the cosmic score on solstices, equinoxes and portal days.
	EventBonuses map[CosmicEvent]int `json:"event_bonuses" yaml:"event_bonuses"`

	// HighlyFavorableFrom is the cosmic score at which a mint is highly favorable.
	HighlyFavorableFrom int `json:"highly_favorable_from" yaml:"highly_favorable_from"`
}

// DefaultScoringConfig returns the default scoring configuration.
func DefaultScoringConfig() *ScoringConfig {
	bonuses := make(map[Frequency]int, len(DefaultFrequencyBonuses))
	for k, v := range DefaultFrequencyBonuses {
		bonuses[k] = v
	}

	return &ScoringConfig{
		BioWeights: BioWeights{
			HRV:    0.4, // Heart rate variability leads
			Breath: 0.3,
			Focus:  0.3,
		},
		BioDefaults: BioDefaults{
			HRV:    70,
			Breath: 75,
			Focus:  80,
		},
		FrequencyBonuses:      bonuses,
		DefaultFrequencyBonus: 0,
		SigilMaxDistance:      SigilMaxDistance,
		CosmicBase:            75,
		MoonBonuses: map[MoonPhase]int{
			MoonFull: 15,
			MoonNew:  10,
		},
		DefaultMoonBonus: 5,
		PlanetaryBonuses: map[PlanetaryAlignment]int{
			PlanetsFavorable: 10,
		},
		DefaultPlanetaryBonus: 5,
		EventBonuses: map[CosmicEvent]int{
			EventSolstice:  12,
			EventEquinox:   12,
			EventPortalDay: 8,
		},
		HighlyFavorableFrom: 90,
	}
}

// Validate checks the weights and constants. Every value must be finite;
// weights lie in [0, 1], defaults in [0, 100], and the sigil max distance
// is positive.
func (c *ScoringConfig) Validate() error {
	weights := map[string]float64{
		SignalHRV:    c.BioWeights.HRV,
		SignalBreath: c.BioWeights.Breath,
		SignalFocus:  c.BioWeights.Focus,
	}
	defaults := map[string]float64{
		SignalHRV:    c.BioDefaults.HRV,
		SignalBreath: c.BioDefaults.Breath,
		SignalFocus:  c.BioDefaults.Focus,
	}
	for _, name := range []string{SignalHRV, SignalBreath, SignalFocus} {
		if w := weights[name]; !finite(w) || w < 0 || w > 1 {
			return fmt.Errorf("%s weight %v outside [0, 1]", name, w)
		}
		if d := defaults[name]; !finite(d) || d < 0 || d > 100 {
			return fmt.Errorf("%s default %v outside [0, 100]", name, d)
		}
	}
	if !finite(c.SigilMaxDistance) || c.SigilMaxDistance <= 0 {
		return fmt.Errorf("sigil max distance must be positive and finite, got %v", c.SigilMaxDistance)
	}
	if !finite(c.CosmicBase) {
		return fmt.Errorf("cosmic base must be finite, got %v", c.CosmicBase)
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Clone returns a deep copy of the configuration.
func (c *ScoringConfig) Clone() *ScoringConfig {
	cp := *c
	cp.FrequencyBonuses = cloneMap(c.FrequencyBonuses)
	cp.MoonBonuses = cloneMap(c.MoonBonuses)
	cp.PlanetaryBonuses = cloneMap(c.PlanetaryBonuses)
	cp.EventBonuses = cloneMap(c.EventBonuses)
	return &cp
}

func cloneMap[K comparable](m map[K]int) map[K]int {
	out := make(map[K]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
