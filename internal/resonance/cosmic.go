package resonance

import (
	"github.com/thebtf/resonance/internal/scoring"
	"github.com/thebtf/resonance/pkg/models"
)

// CosmicResult is the alignment score for a mint under the given sky.
type CosmicResult struct {
	MoonPhase      models.MoonPhase          `json:"moon_phase"`
	Planetary      models.PlanetaryAlignment `json:"planetary_alignment"`
	Event          models.CosmicEvent        `json:"event,omitempty"`
	Score          scoring.Score             `json:"score"`
	Components     scoring.Components        `json:"components"`
	Recommendation string                    `json:"recommendation"`
	Action         string                    `json:"action,omitempty"`
}

// CosmicAlignment scores a moon phase and planetary alignment. It reads no
// clock; callers derive the phase, e.g. with models.MoonPhaseForDay.
func (e *Engine) CosmicAlignment(phase models.MoonPhase, planets models.PlanetaryAlignment) CosmicResult {
	return e.CosmicEventAlignment(phase, planets, "")
}

// CosmicEventAlignment is CosmicAlignment with an event bonus on top. An
// empty event adds nothing.
func (e *Engine) CosmicEventAlignment(phase models.MoonPhase, planets models.PlanetaryAlignment, event models.CosmicEvent) CosmicResult {
	signals := []scoring.Signal{
		scoring.NewSignal("base", e.cfg.CosmicBase, 1),
		scoring.NewSignal("planetary", float64(e.planetaryBonus.Get(planets)), 1),
		scoring.NewSignal("event", float64(e.eventBonus.Get(event)), 1),
	}
	components := scoring.AggregateComponents(signals, phase, e.moonBonus)

	return CosmicResult{
		MoonPhase:      phase,
		Planetary:      planets,
		Event:          event,
		Score:          components.Final,
		Components:     components,
		Recommendation: e.recommendation.Classify(components.Final),
		Action:         models.ActionFor(phase, event),
	}
}
