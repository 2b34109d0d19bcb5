package scoring

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_SigilScenario(t *testing.T) {
	score, err := Normalize(963, 432, 531)
	require.NoError(t, err)
	assert.Equal(t, Score(0), score)
}

func TestNormalize_Identity(t *testing.T) {
	n, err := NewNormalizer(531)
	require.NoError(t, err)

	for _, f := range []float64{432, 528, 741, 963} {
		assert.Equal(t, MaxScore, n.Normalize(f, f))
	}
}

func TestNormalize_Symmetric(t *testing.T) {
	n, err := NewNormalizer(531)
	require.NoError(t, err)

	freqs := []float64{432, 528, 741, 963, 100, 2000}
	for _, a := range freqs {
		for _, b := range freqs {
			assert.Equal(t, n.Normalize(a, b), n.Normalize(b, a), "%v vs %v", a, b)
		}
	}
}

func TestNormalize_Values(t *testing.T) {
	n, err := NewNormalizer(531)
	require.NoError(t, err)

	tests := []struct {
		name      string
		ref, user float64
		want      Score
	}{
		{"imhotep vs divine", 528, 963, 18},  // 100 - 435/531×100 = 18.08
		{"musa vs love", 741, 528, 60},       // 100 - 213/531×100 = 59.89
		{"muhammad vs love", 963, 528, 18},   // symmetric with the first case
		{"beyond max distance", 963, 100, 0}, // clamped
		{"musa vs divine", 741, 963, 58},     // 100 - 222/531×100 = 58.19
		{"imhotep vs earth", 528, 432, 82},   // 100 - 96/531×100 = 81.92
		{"fractional distance", 500, 500.5, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, n.Normalize(tt.ref, tt.user))
		})
	}
}

func TestNewNormalizer_RejectsInvalidMaxDistance(t *testing.T) {
	for _, d := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		n, err := NewNormalizer(d)
		assert.Nil(t, n)
		assert.ErrorIs(t, err, ErrInvalidConfiguration, "max distance %v", d)
	}

	_, err := Normalize(1, 2, 0)
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
}

func TestNormalizer_MaxDistance(t *testing.T) {
	n, err := NewNormalizer(531)
	require.NoError(t, err)
	assert.Equal(t, 531.0, n.MaxDistance())
}
