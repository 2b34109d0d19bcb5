package models

import (
	"errors"
	"fmt"

	"github.com/thebtf/resonance/internal/scoring"
)

// ErrInvalidRequest marks malformed or out-of-range request input.
var ErrInvalidRequest = errors.New("invalid request")

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidRequest, fmt.Sprintf(format, args...))
}

func unknownf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", scoring.ErrUnknownCategory, fmt.Sprintf(format, args...))
}

// Validate checks that a frequency is present and that every supplied
// reading lies in [0, 100]. Whether the frequency is a beam frequency is
// left to the engine.
func (r DNARequest) Validate() error {
	if r.Frequency == 0 {
		return invalidf("frequency required")
	}
	readings := []struct {
		name string
		v    *float64
	}{
		{SignalHRV, r.Bio.HRV},
		{SignalBreath, r.Bio.Breath},
		{SignalFocus, r.Bio.Focus},
	}
	for _, rd := range readings {
		if rd.v == nil {
			continue
		}
		if sig := scoring.NewSignal(rd.name, *rd.v, 0); !sig.InRange() {
			return invalidf("%s reading %v outside [%v, %v]", sig.Name, sig.Value, sig.Min, sig.Max)
		}
	}
	return nil
}

// Validate requires a positive user frequency.
func (r SigilRequest) Validate() error {
	if r.UserFrequency <= 0 {
		return invalidf("user_frequency must be positive")
	}
	return nil
}

// Resolve returns the moon phase and planetary alignment to score. An
// explicit phase wins over Day, and an empty alignment is neutral. Unknown
// phases, alignments and events match scoring.ErrUnknownCategory; other
// failures match ErrInvalidRequest.
func (r CosmicRequest) Resolve() (MoonPhase, PlanetaryAlignment, error) {
	phase := r.MoonPhase
	switch {
	case phase != "":
		if !ValidMoonPhase(phase) {
			return "", "", unknownf("moon phase %q", phase)
		}
	case r.Day != nil:
		if *r.Day < 1 || *r.Day > 31 {
			return "", "", invalidf("day %d outside [1, 31]", *r.Day)
		}
		phase = MoonPhaseForDay(*r.Day)
	default:
		return "", "", invalidf("moon_phase or day required")
	}

	planets := r.Planetary
	if planets == "" {
		planets = PlanetsNeutral
	}
	if !ValidPlanetaryAlignment(planets) {
		return "", "", unknownf("planetary alignment %q", planets)
	}
	if r.Event != "" && !ValidCosmicEvent(r.Event) {
		return "", "", unknownf("cosmic event %q", r.Event)
	}
	return phase, planets, nil
}
