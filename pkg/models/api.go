package models

// BioReadings holds optional biometric readings on a 0-100 scale.
type BioReadings struct {
	HRV    *float64 `json:"hrv,omitempty"`
	Breath *float64 `json:"breath,omitempty"`
	Focus  *float64 `json:"focus,omitempty"`
}

// DNARequest asks for the DNA resonance of a beam frequency.
type DNARequest struct {
	Frequency Frequency   `json:"frequency"`
	Bio       BioReadings `json:"bio"`
	Subject   string      `json:"subject,omitempty"`
}

// SigilRequest asks for the resonance between a sigil and a user frequency.
// An empty or unknown sigil resolves to muhammad.
type SigilRequest struct {
	Sigil         SigilType `json:"sigil,omitempty"`
	UserFrequency Frequency `json:"user_frequency"`
	Subject       string    `json:"subject,omitempty"`
}

// DeviceRequest asks for the AR tier of a runtime environment.
type DeviceRequest struct {
	Flags   CapabilityFlags `json:"flags"`
	Subject string          `json:"subject,omitempty"`
}

// PlaylistBatchRequest asks for the analysis of several playlists.
type PlaylistBatchRequest struct {
	Playlists []Playlist `json:"playlists"`
}

// CosmicRequest asks for the cosmic alignment of a mint. MoonPhase wins over
// Day; one of them is required. An empty alignment is neutral and Event is
// optional.
type CosmicRequest struct {
	MoonPhase MoonPhase          `json:"moon_phase,omitempty"`
	Day       *int               `json:"day,omitempty"`
	Planetary PlanetaryAlignment `json:"planetary_alignment,omitempty"`
	Event     CosmicEvent        `json:"event,omitempty"`
	Subject   string             `json:"subject,omitempty"`
}

// ValidMoonPhase reports whether p is one of MoonPhases.
func ValidMoonPhase(p MoonPhase) bool {
	for _, known := range MoonPhases {
		if p == known {
			return true
		}
	}
	return false
}

// ValidPlanetaryAlignment reports whether a is a known alignment.
func ValidPlanetaryAlignment(a PlanetaryAlignment) bool {
	return a == PlanetsFavorable || a == PlanetsNeutral
}
