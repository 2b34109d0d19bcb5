package scoring

import (
	"fmt"
	"math"
)

// Normalizer converts the distance between a reference and a sample into an
// inverted percentage score anchored to the full value space.
type Normalizer struct {
	maxDistance float64
}

// NewNormalizer creates a normalizer for the given maximum possible distance.
// maxDistance must be the largest distance across the whole domain of valid
// values, not of the observed pair.
func NewNormalizer(maxDistance float64) (*Normalizer, error) {
	if maxDistance <= 0 || math.IsNaN(maxDistance) || math.IsInf(maxDistance, 0) {
		return nil, fmt.Errorf("%w: max distance must be a positive finite number, got %v", ErrInvalidConfiguration, maxDistance)
	}
	return &Normalizer{maxDistance: maxDistance}, nil
}

// Normalize scores reference against sample:
//
//	score = clamp(round(100 - |reference - sample| / maxDistance × 100), 0, 100)
func (n *Normalizer) Normalize(reference, sample float64) Score {
	distance := math.Abs(reference - sample)
	return Clamp(100 - distance/n.maxDistance*100)
}

// MaxDistance returns the configured maximum distance.
func (n *Normalizer) MaxDistance() float64 {
	return n.maxDistance
}

// Normalize is the one-shot form of Normalizer.Normalize.
func Normalize(reference, sample, maxDistance float64) (Score, error) {
	n, err := NewNormalizer(maxDistance)
	if err != nil {
		return MinScore, err
	}
	return n.Normalize(reference, sample), nil
}
