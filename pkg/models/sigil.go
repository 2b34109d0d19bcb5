package models

// SigilType identifies a sacred sigil.
type SigilType string

const (
	SigilImhotep  SigilType = "imhotep"
	SigilMusa     SigilType = "musa"
	SigilMuhammad SigilType = "muhammad"
)

// SigilMaxDistance is the largest distance between two supported frequencies
// (963 - 432). It anchors sigil resonance to the whole frequency space.
const SigilMaxDistance = float64(FreqDivine - FreqEarth)

// SigilAttributes holds the scoring-relevant attributes of a sigil.
type SigilAttributes struct {
	Name       string    `json:"name"`
	Frequency  Frequency `json:"frequency"`
	PowerLevel int       `json:"power_level"`
	Rarity     string    `json:"rarity"`
	Element    string    `json:"element"`
	Chakra     string    `json:"chakra"`
}

// Sigils holds the attributes of every known sigil.
var Sigils = map[SigilType]SigilAttributes{
	SigilImhotep: {
		Name:       "Imhotep - Master Builder",
		Frequency:  FreqLove,
		PowerLevel: 95,
		Rarity:     "Legendary",
		Element:    "Earth",
		Chakra:     "Heart",
	},
	SigilMusa: {
		Name:       "Musa - Law Bringer",
		Frequency:  FreqAwakening,
		PowerLevel: 98,
		Rarity:     "Legendary",
		Element:    "Fire",
		Chakra:     "Throat",
	},
	SigilMuhammad: {
		Name:       "Muhammad ﷺ - Final Messenger",
		Frequency:  FreqDivine,
		PowerLevel: 100,
		Rarity:     "Divine",
		Element:    "Spirit",
		Chakra:     "Crown",
	},
}

// SigilFor returns the attributes for t and the sigil actually used.
// Unknown sigils resolve to muhammad.
func SigilFor(t SigilType) (SigilType, SigilAttributes) {
	if a, ok := Sigils[t]; ok {
		return t, a
	}
	return SigilMuhammad, Sigils[SigilMuhammad]
}
