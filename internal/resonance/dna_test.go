package resonance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/thebtf/resonance/internal/scoring"
	"github.com/thebtf/resonance/pkg/models"
)

func ptr[T any](v T) *T { return &v }

func bio(hrv, breath, focus float64) BioData {
	return BioData{HRV: ptr(hrv), Breath: ptr(breath), Focus: ptr(focus)}
}

// DNASuite is a test suite for DNA resonance.
type DNASuite struct {
	suite.Suite
	engine *Engine
}

func (s *DNASuite) SetupTest() {
	s.engine = Default()
}

func TestDNASuite(t *testing.T) {
	suite.Run(t, new(DNASuite))
}

// =============================================================================
// GOOD SCENARIOS - Expected normal operations
// =============================================================================

func (s *DNASuite) TestDNAResonance_GoodScenarios_DivineBeam() {
	r := s.engine.DNAResonance(models.FreqDivine, bio(85, 90, 88))

	s.Equal(scoring.Score(97), r.Score)
	s.Equal(10, r.Components.Bonus)
	s.Equal("Divine Connection", r.Profile.Name)
	s.Empty(r.DefaultsApplied)
	s.Len(r.Signals, 3)
}

func (s *DNASuite) TestDNAResonance_GoodScenarios_BonusPerFrequency() {
	// 87.4 weighted before the bonus
	s.Equal(scoring.Score(92), s.engine.DNAResonance(models.FreqEarth, bio(85, 90, 88)).Score)
	s.Equal(scoring.Score(95), s.engine.DNAResonance(models.FreqLove, bio(85, 90, 88)).Score)
}

// =============================================================================
// WORSE SCENARIOS - Degraded but acceptable operations
// =============================================================================

func (s *DNASuite) TestDNAResonance_WorseScenarios_MissingReadingsUseDefaults() {
	// 70×0.4 + 75×0.3 + 80×0.3 = 74.5, +10
	r := s.engine.DNAResonance(models.FreqDivine, BioData{})

	s.Equal(scoring.Score(85), r.Score)
	s.Equal([]string{models.SignalHRV, models.SignalBreath, models.SignalFocus}, r.DefaultsApplied)
}

func (s *DNASuite) TestDNAResonance_WorseScenarios_PartialReadings() {
	r := s.engine.DNAResonance(models.FreqDivine, BioData{HRV: ptr(85.0)})

	s.Equal([]string{models.SignalBreath, models.SignalFocus}, r.DefaultsApplied)
	s.InDelta(85*0.4+75*0.3+80*0.3, r.Components.Weighted, 1e-9)
}

func (s *DNASuite) TestDNAResonance_WorseScenarios_UnknownFrequency() {
	r := s.engine.DNAResonance(models.FreqAwakening, bio(85, 90, 88))

	s.Equal(0, r.Components.Bonus)
	s.Equal(scoring.Score(87), r.Score)
	s.Equal(models.FrequencyProfiles[models.FreqDivine], r.Profile)
}

// =============================================================================
// BAD SCENARIOS - Edge cases and error conditions
// =============================================================================

func (s *DNASuite) TestDNAResonance_BadScenarios_SaturatedReadings() {
	r := s.engine.DNAResonance(models.FreqDivine, bio(100, 100, 100))
	s.Equal(scoring.MaxScore, r.Score)
	s.True(r.Components.Clamped)
}

func (s *DNASuite) TestDNAResonance_BadScenarios_NegativeReadings() {
	r := s.engine.DNAResonance(models.FreqEarth, bio(-100, -100, -100))
	s.Equal(scoring.MinScore, r.Score)
}

func (s *DNASuite) TestValidateFrequency_BadScenarios() {
	for _, f := range models.BeamFrequencies {
		s.NoError(s.engine.ValidateFrequency(f))
	}
	s.ErrorIs(s.engine.ValidateFrequency(models.FreqAwakening), scoring.ErrUnknownCategory)
	s.ErrorIs(s.engine.ValidateFrequency(500), scoring.ErrUnknownCategory)
}

// =============================================================================
// STANDALONE TESTS (non-suite)
// =============================================================================

func TestDNAResonance_CustomWeights(t *testing.T) {
	cfg := models.DefaultScoringConfig()
	cfg.BioWeights = models.BioWeights{HRV: 1}
	cfg.FrequencyBonuses = map[models.Frequency]int{}

	e, err := NewBuilder().WithConfig(cfg).Build()
	assert.NoError(t, err)
	assert.Equal(t, scoring.Score(42), e.DNAResonance(models.FreqDivine, bio(42, 99, 99)).Score)
}

func TestFrequencyBonus(t *testing.T) {
	cfg := models.DefaultScoringConfig()
	cfg.FrequencyBonuses = map[models.Frequency]int{models.FreqLove: 3}
	cfg.DefaultFrequencyBonus = 1

	e, err := NewBuilder().WithConfig(cfg).Build()
	require.NoError(t, err)
	assert.Equal(t, 3, e.FrequencyBonus(models.FreqLove))
	assert.Equal(t, 1, e.FrequencyBonus(models.FreqDivine))
}
