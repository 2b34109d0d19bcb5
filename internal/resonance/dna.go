package resonance

import (
	"fmt"

	"github.com/thebtf/resonance/internal/scoring"
	"github.com/thebtf/resonance/pkg/models"
)

// BioData holds optional biometric readings. Nil readings are replaced by
// the configured defaults.
type BioData = models.BioReadings

// DNAResult is the DNA resonance of a beam frequency for a user.
type DNAResult struct {
	Frequency       models.Frequency        `json:"frequency"`
	Score           scoring.Score           `json:"score"`
	Profile         models.FrequencyProfile `json:"profile"`
	Components      scoring.Components      `json:"components"`
	Signals         []scoring.Signal        `json:"signals"`
	DefaultsApplied []string                `json:"defaults_applied,omitempty"`
}

// ValidateFrequency rejects frequencies a DNA beam cannot carry.
func (e *Engine) ValidateFrequency(freq models.Frequency) error {
	if !freq.IsBeamFrequency() {
		return fmt.Errorf("%w: frequency %s is not a beam frequency", scoring.ErrUnknownCategory, freq)
	}
	return nil
}

// FrequencyBonus returns the DNA bonus the engine applies to freq.
func (e *Engine) FrequencyBonus(freq models.Frequency) int {
	return e.frequencyBonus.Get(freq)
}

// DNAResonance scores how well bio resonates with freq.
// Frequencies without a bonus entry score with the default bonus.
func (e *Engine) DNAResonance(freq models.Frequency, bio BioData) DNAResult {
	signals, defaulted := e.bioSignals(bio)
	components := scoring.AggregateComponents(signals, freq, e.frequencyBonus)

	return DNAResult{
		Frequency:       freq,
		Score:           components.Final,
		Profile:         models.ProfileFor(freq),
		Components:      components,
		Signals:         signals,
		DefaultsApplied: defaulted,
	}
}

func (e *Engine) bioSignals(bio BioData) ([]scoring.Signal, []string) {
	var defaulted []string
	reading := func(name string, v *float64, def float64) float64 {
		if v == nil {
			defaulted = append(defaulted, name)
			return def
		}
		return *v
	}

	w, d := e.cfg.BioWeights, e.cfg.BioDefaults
	signals := []scoring.Signal{
		scoring.NewSignal(models.SignalHRV, reading(models.SignalHRV, bio.HRV, d.HRV), w.HRV),
		scoring.NewSignal(models.SignalBreath, reading(models.SignalBreath, bio.Breath, d.Breath), w.Breath),
		scoring.NewSignal(models.SignalFocus, reading(models.SignalFocus, bio.Focus, d.Focus), w.Focus),
	}
	return signals, defaulted
}
