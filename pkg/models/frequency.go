// Package models contains domain models for resonance scoring.
package models

import "strconv"

// Frequency is a sacred frequency in Hz.
type Frequency int

const (
	// FreqEarth grounds and stabilizes.
	FreqEarth Frequency = 432
	// FreqLove heals and transforms.
	FreqLove Frequency = 528
	// FreqAwakening is carried by the Law Bringer sigil only.
	FreqAwakening Frequency = 741
	// FreqDivine connects and unifies.
	FreqDivine Frequency = 963
)

// BeamFrequencies is the closed set of frequencies a DNA beam or a playlist
// track may carry, in canonical order. Ties in frequency tallies resolve to
// the earlier entry.
var BeamFrequencies = []Frequency{FreqEarth, FreqLove, FreqDivine}

// String returns the frequency as "963Hz".
func (f Frequency) String() string {
	return strconv.Itoa(int(f)) + "Hz"
}

// IsBeamFrequency reports whether f is one of BeamFrequencies.
func (f Frequency) IsBeamFrequency() bool {
	for _, b := range BeamFrequencies {
		if b == f {
			return true
		}
	}
	return false
}

// FrequencyProfile describes how a frequency is presented.
type FrequencyProfile struct {
	Name    string `json:"name"`
	Color   string `json:"color"`
	Effect  string `json:"effect"`
	Chakra  string `json:"chakra"`
	Element string `json:"element"`
}

// FrequencyProfiles holds the presentation profile of each beam frequency.
var FrequencyProfiles = map[Frequency]FrequencyProfile{
	FreqEarth: {
		Name:    "Earth Frequency",
		Color:   "#8B4513",
		Effect:  "Grounding & Stability",
		Chakra:  "Root",
		Element: "Earth",
	},
	FreqLove: {
		Name:    "Love Frequency",
		Color:   "#FFD700",
		Effect:  "Healing & Transformation",
		Chakra:  "Heart",
		Element: "Air",
	},
	FreqDivine: {
		Name:    "Divine Connection",
		Color:   "#00CED1",
		Effect:  "Pineal Activation & Unity",
		Chakra:  "Crown",
		Element: "Spirit",
	},
}

// ProfileFor returns the profile for f. Unknown frequencies get the 963Hz profile.
func ProfileFor(f Frequency) FrequencyProfile {
	if p, ok := FrequencyProfiles[f]; ok {
		return p
	}
	return FrequencyProfiles[FreqDivine]
}

// Emotion is an emotional category a frequency evokes.
type Emotion string

const (
	EmotionPeace         Emotion = "peace"
	EmotionGrounding     Emotion = "grounding"
	EmotionCalm          Emotion = "calm"
	EmotionLove          Emotion = "love"
	EmotionJoy           Emotion = "joy"
	EmotionHealing       Emotion = "healing"
	EmotionTranscendence Emotion = "transcendence"
	EmotionUnity         Emotion = "unity"
	EmotionEnlightenment Emotion = "enlightenment"
)

// Emotions lists every emotion in reporting order.
var Emotions = []Emotion{
	EmotionPeace, EmotionGrounding, EmotionCalm,
	EmotionLove, EmotionJoy, EmotionHealing,
	EmotionTranscendence, EmotionUnity, EmotionEnlightenment,
}

// FrequencyEmotions maps each beam frequency to the emotions it evokes (0-100).
var FrequencyEmotions = map[Frequency]map[Emotion]int{
	FreqEarth:  {EmotionPeace: 80, EmotionGrounding: 85, EmotionCalm: 90},
	FreqLove:   {EmotionLove: 90, EmotionJoy: 80, EmotionHealing: 85},
	FreqDivine: {EmotionTranscendence: 95, EmotionUnity: 90, EmotionEnlightenment: 88},
}
