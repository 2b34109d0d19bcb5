package models

// Track is the scoring-relevant metadata of a playlist track.
// Energy is optional; tracks without it are left out of energy analysis.
type Track struct {
	Name      string    `json:"name,omitempty"`
	Artist    string    `json:"artist,omitempty"`
	Duration  int       `json:"duration,omitempty"`
	Frequency Frequency `json:"frequency"`
	Energy    *int      `json:"energy,omitempty"`
}

// Playlist is an ordered collection of tracks.
type Playlist struct {
	ID     string  `json:"id,omitempty"`
	Name   string  `json:"name,omitempty"`
	Tracks []Track `json:"tracks"`
}

// EnergyBand buckets a track energy level.
type EnergyBand string

const (
	EnergyLow    EnergyBand = "low"
	EnergyMedium EnergyBand = "medium"
	EnergyHigh   EnergyBand = "high"
)

// EnergyBands lists the bands in reporting order.
var EnergyBands = []EnergyBand{EnergyLow, EnergyMedium, EnergyHigh}

// Energy band lower bounds: medium starts at 70, high at 85.
const (
	EnergyMediumFloor = 70
	EnergyHighFloor   = 85
)

// FrequencyCount is one row of a frequency distribution.
type FrequencyCount struct {
	Frequency Frequency `json:"frequency"`
	Count     int       `json:"count"`
}

// EnergyAnalysis summarizes track energy levels.
type EnergyAnalysis struct {
	Tracks       int                `json:"tracks"`
	Average      int                `json:"average"`
	Min          int                `json:"min"`
	Max          int                `json:"max"`
	Distribution map[EnergyBand]int `json:"distribution"`
}

// PlaylistAnalysis is the result of analyzing a playlist.
type PlaylistAnalysis struct {
	PlaylistID            string           `json:"playlist_id,omitempty"`
	DominantFrequency     Frequency        `json:"dominant_frequency"`
	FrequencyDistribution []FrequencyCount `json:"frequency_distribution"`
	Total                 int              `json:"total"`
	Energy                *EnergyAnalysis  `json:"energy,omitempty"`
	EmotionalMapping      map[Emotion]int  `json:"emotional_mapping"`
	DominantEmotion       Emotion          `json:"dominant_emotion"`
}
