package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type caps struct {
	xr, gyro, camera bool
}

// ClassifierSuite is a test suite for Classifier.
type ClassifierSuite struct {
	suite.Suite
	tiers *Classifier[caps, string]
}

func (s *ClassifierSuite) SetupTest() {
	tiers, err := NewClassifier(
		When("full", func(c caps) bool { return c.xr }),
		When("standard", func(c caps) bool { return c.gyro && c.camera }),
		When("basic", func(c caps) bool { return c.camera }),
		Otherwise[caps]("none"),
	)
	s.Require().NoError(err)
	s.tiers = tiers
}

func TestClassifierSuite(t *testing.T) {
	suite.Run(t, new(ClassifierSuite))
}

// =============================================================================
// GOOD SCENARIOS - Expected normal operations
// =============================================================================

func (s *ClassifierSuite) TestClassify_GoodScenarios_EveryTier() {
	s.Equal("full", s.tiers.Classify(caps{xr: true}))
	s.Equal("standard", s.tiers.Classify(caps{gyro: true, camera: true}))
	s.Equal("basic", s.tiers.Classify(caps{camera: true}))
	s.Equal("none", s.tiers.Classify(caps{}))
}

func (s *ClassifierSuite) TestClassify_GoodScenarios_FirstMatchWins() {
	// Every predicate matches; the earliest rule decides
	m := s.tiers.Explain(caps{xr: true, gyro: true, camera: true})
	s.Equal("full", m.Label)
	s.Equal(0, m.Rule)
	s.False(m.Default)
}

func (s *ClassifierSuite) TestClassify_GoodScenarios_Labels() {
	s.Equal([]string{"full", "standard", "basic", "none"}, s.tiers.Labels())
}

// =============================================================================
// WORSE SCENARIOS - Degraded but acceptable operations
// =============================================================================

func (s *ClassifierSuite) TestClassify_WorseScenarios_GyroWithoutCamera() {
	m := s.tiers.Explain(caps{gyro: true})
	s.Equal("none", m.Label)
	s.Equal(3, m.Rule)
	s.True(m.Default)
}

func (s *ClassifierSuite) TestClassify_WorseScenarios_OnlyDefault() {
	c, err := NewClassifier(Otherwise[int]("any"))
	s.Require().NoError(err)
	s.Equal("any", c.Classify(42))
}

// =============================================================================
// BAD SCENARIOS - Edge cases and error conditions
// =============================================================================

func (s *ClassifierSuite) TestNewClassifier_BadScenarios_Empty() {
	c, err := NewClassifier[int, string]()
	s.Nil(c)
	s.ErrorIs(err, ErrTableIncomplete)
	s.ErrorIs(err, ErrInvalidConfiguration)
}

func (s *ClassifierSuite) TestNewClassifier_BadScenarios_NoTerminalRule() {
	c, err := NewClassifier(
		When("high", func(n int) bool { return n >= 85 }),
		When("low", func(n int) bool { return n < 85 }),
	)
	s.Nil(c)
	s.ErrorIs(err, ErrTableIncomplete)
	s.ErrorIs(err, ErrInvalidConfiguration)
}

func (s *ClassifierSuite) TestNewClassifier_BadScenarios_NilPredicate() {
	_, err := NewClassifier(
		When[int]("broken", nil),
		Otherwise[int]("ok"),
	)
	s.ErrorIs(err, ErrInvalidConfiguration)
	s.NotErrorIs(err, ErrTableIncomplete)
}

func (s *ClassifierSuite) TestNewClassifier_BadScenarios_CallerMutatesRules() {
	rules := []Rule[int, string]{
		When("big", func(n int) bool { return n > 10 }),
		Otherwise[int]("small"),
	}
	c, err := NewClassifier(rules...)
	s.Require().NoError(err)

	rules[0] = Otherwise[int]("changed")
	s.Equal("big", c.Classify(11))
}

// =============================================================================
// STANDALONE TESTS (non-suite)
// =============================================================================

func TestClassify_TotalOverInputs(t *testing.T) {
	bands := MustClassifier(
		When("high", func(e int) bool { return e >= 85 }),
		When("medium", func(e int) bool { return e >= 70 }),
		Otherwise[int]("low"),
	)

	for e := -10; e <= 110; e++ {
		label := bands.Classify(e)
		switch {
		case e >= 85:
			assert.Equal(t, "high", label, "energy %d", e)
		case e >= 70:
			assert.Equal(t, "medium", label, "energy %d", e)
		default:
			assert.Equal(t, "low", label, "energy %d", e)
		}
	}
}

func TestMustClassifier_PanicsOnIncompleteTable(t *testing.T) {
	require.Panics(t, func() {
		MustClassifier(When("x", func(int) bool { return true }))
	})
}

func TestRule_IsDefault(t *testing.T) {
	assert.True(t, Otherwise[int]("d").IsDefault())
	assert.False(t, When("w", func(int) bool { return false }).IsDefault())
}
