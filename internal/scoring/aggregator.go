package scoring

import "math"

// Score bounds. Every Score produced by this package lies in [MinScore, MaxScore].
const (
	MinScore Score = 0
	MaxScore Score = 100
)

// Score is a normalized resonance, compatibility or alignment score.
type Score int

// Clamp rounds raw half away from zero and bounds it to [MinScore, MaxScore].
// NaN clamps to MinScore.
func Clamp(raw float64) Score {
	if math.IsNaN(raw) {
		return MinScore
	}
	r := math.Round(raw)
	if r < float64(MinScore) {
		return MinScore
	}
	if r > float64(MaxScore) {
		return MaxScore
	}
	return Score(r)
}

// Signal is a named numeric input with its declared range and weight.
type Signal struct {
	Name   string  `json:"name"`
	Value  float64 `json:"value"`
	Weight float64 `json:"weight"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// NewSignal creates a signal with the conventional 0-100 range.
func NewSignal(name string, value, weight float64) Signal {
	return Signal{Name: name, Value: value, Weight: weight, Min: 0, Max: 100}
}

// InRange reports whether the value lies inside the declared range.
func (s Signal) InRange() bool {
	return s.Value >= s.Min && s.Value <= s.Max
}

// BonusTable maps a categorical key to a fixed additive bonus.
// Unknown keys resolve to Default.
type BonusTable[K comparable] struct {
	Bonuses map[K]int `json:"bonuses" yaml:"bonuses"`
	Default int       `json:"default" yaml:"default"`
}

// Get returns the bonus for key, or the table default.
func (t BonusTable[K]) Get(key K) int {
	if b, ok := t.Bonuses[key]; ok {
		return b
	}
	return t.Default
}

// Clone returns a copy whose map can be mutated independently.
func (t BonusTable[K]) Clone() BonusTable[K] {
	bonuses := make(map[K]int, len(t.Bonuses))
	for k, v := range t.Bonuses {
		bonuses[k] = v
	}
	return BonusTable[K]{Bonuses: bonuses, Default: t.Default}
}

// Components is the breakdown of an aggregated score.
type Components struct {
	Weighted float64 `json:"weighted"`
	Bonus    int     `json:"bonus"`
	Raw      float64 `json:"raw"`
	Final    Score   `json:"final"`
	Clamped  bool    `json:"clamped"`
}

// Aggregate combines weighted signals and a looked-up bonus into a bounded score.
//
//	raw   = Σ(value_i × weight_i) + bonus(key)
//	final = clamp(round(raw), 0, 100)
//
// Signal values are used as given; callers substitute defaults for missing
// readings before building the signal list.
func Aggregate[K comparable](signals []Signal, key K, table BonusTable[K]) Score {
	return AggregateComponents(signals, key, table).Final
}

// AggregateComponents returns the individual components of an aggregated score.
// Aggregate delegates to this.
func AggregateComponents[K comparable](signals []Signal, key K, table BonusTable[K]) Components {
	weighted := 0.0
	for _, s := range signals {
		weighted += s.Value * s.Weight
	}

	bonus := table.Get(key)
	raw := weighted + float64(bonus)
	final := Clamp(raw)

	return Components{
		Weighted: weighted,
		Bonus:    bonus,
		Raw:      raw,
		Final:    final,
		Clamped:  float64(final) != math.Round(raw),
	}
}
