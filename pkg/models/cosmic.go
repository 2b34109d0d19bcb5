package models

// MoonPhase is one of the eight lunar phases.
type MoonPhase string

const (
	MoonNew            MoonPhase = "new"
	MoonWaxingCrescent MoonPhase = "waxing-crescent"
	MoonFirstQuarter   MoonPhase = "first-quarter"
	MoonWaxingGibbous  MoonPhase = "waxing-gibbous"
	MoonFull           MoonPhase = "full"
	MoonWaningGibbous  MoonPhase = "waning-gibbous"
	MoonLastQuarter    MoonPhase = "last-quarter"
	MoonWaningCrescent MoonPhase = "waning-crescent"
)

// MoonPhases lists the phases in cycle order.
var MoonPhases = []MoonPhase{
	MoonNew, MoonWaxingCrescent, MoonFirstQuarter, MoonWaxingGibbous,
	MoonFull, MoonWaningGibbous, MoonLastQuarter, MoonWaningCrescent,
}

// MoonPhaseForDay approximates the phase for a day of month.
// Days past the end of the cycle map to the last phase.
func MoonPhaseForDay(day int) MoonPhase {
	if day < 0 {
		day = 0
	}
	i := int(float64(day) / 3.75)
	if i >= len(MoonPhases) {
		i = len(MoonPhases) - 1
	}
	return MoonPhases[i]
}

// PlanetaryAlignment is the state of the planets for a mint.
type PlanetaryAlignment string

const (
	PlanetsFavorable PlanetaryAlignment = "favorable"
	PlanetsNeutral   PlanetaryAlignment = "neutral"
)

// Cosmic alignment recommendations.
const (
	RecommendHighlyFavorable = "Highly Favorable"
	RecommendFavorable       = "Favorable"
)

// CosmicEvent is a calendar event that lifts the alignment of a mint.
type CosmicEvent string

const (
	EventSolstice  CosmicEvent = "solstice"
	EventEquinox   CosmicEvent = "equinox"
	EventPortalDay CosmicEvent = "portal-day"
)

// CosmicEvents lists the known events.
var CosmicEvents = []CosmicEvent{EventSolstice, EventEquinox, EventPortalDay}

// ValidCosmicEvent reports whether e is one of CosmicEvents.
func ValidCosmicEvent(e CosmicEvent) bool {
	for _, known := range CosmicEvents {
		if e == known {
			return true
		}
	}
	return false
}

// Release actions suggested by the sky.
const (
	ActionLaunch  = "launch"
	ActionRelease = "release"
	ActionUpdate  = "update"
	ActionPatch   = "patch"
)

// EventActions maps each event to the release action it calls for.
var EventActions = map[CosmicEvent]string{
	EventSolstice:  ActionUpdate,
	EventEquinox:   ActionUpdate,
	EventPortalDay: ActionPatch,
}

// MoonActions maps the new and full moon to their release actions.
var MoonActions = map[MoonPhase]string{
	MoonNew:  ActionLaunch,
	MoonFull: ActionRelease,
}

// ActionFor returns the event's action, else the moon phase's, else "".
func ActionFor(phase MoonPhase, event CosmicEvent) string {
	if a, ok := EventActions[event]; ok {
		return a
	}
	return MoonActions[phase]
}
