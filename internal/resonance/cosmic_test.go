package resonance

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/thebtf/resonance/internal/scoring"
	"github.com/thebtf/resonance/pkg/models"
)

func TestCosmicAlignment(t *testing.T) {
	e := Default()

	tests := []struct {
		name    string
		phase   models.MoonPhase
		planets models.PlanetaryAlignment
		want    scoring.Score
		rec     string
	}{
		{"full moon favorable", models.MoonFull, models.PlanetsFavorable, 100, models.RecommendHighlyFavorable},
		{"new moon favorable", models.MoonNew, models.PlanetsFavorable, 95, models.RecommendHighlyFavorable},
		{"full moon neutral", models.MoonFull, models.PlanetsNeutral, 95, models.RecommendHighlyFavorable},
		{"new moon neutral", models.MoonNew, models.PlanetsNeutral, 90, models.RecommendHighlyFavorable},
		{"quarter favorable", models.MoonFirstQuarter, models.PlanetsFavorable, 90, models.RecommendHighlyFavorable},
		{"crescent neutral", models.MoonWaningCrescent, models.PlanetsNeutral, 85, models.RecommendFavorable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := e.CosmicAlignment(tt.phase, tt.planets)
			assert.Equal(t, tt.want, r.Score)
			assert.Equal(t, tt.rec, r.Recommendation)
		})
	}
}

func TestCosmicAlignment_Deterministic(t *testing.T) {
	e := Default()
	first := e.CosmicAlignment(models.MoonWaxingGibbous, models.PlanetsNeutral)
	for i := 0; i < 50; i++ {
		assert.Equal(t, first, e.CosmicAlignment(models.MoonWaxingGibbous, models.PlanetsNeutral))
	}
}

func TestCosmicEventAlignment(t *testing.T) {
	e := Default()

	tests := []struct {
		name   string
		phase  models.MoonPhase
		event  models.CosmicEvent
		want   scoring.Score
		action string
	}{
		{"no event", models.MoonWaningCrescent, "", 85, ""},
		{"portal day", models.MoonWaningCrescent, models.EventPortalDay, 93, models.ActionPatch},
		{"equinox", models.MoonFirstQuarter, models.EventEquinox, 97, models.ActionUpdate},
		{"solstice clamps", models.MoonFull, models.EventSolstice, 100, models.ActionUpdate},
		{"new moon launches", models.MoonNew, "", 90, models.ActionLaunch},
		{"full moon releases", models.MoonFull, "", 95, models.ActionRelease},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := e.CosmicEventAlignment(tt.phase, models.PlanetsNeutral, tt.event)
			assert.Equal(t, tt.want, r.Score)
			assert.Equal(t, tt.action, r.Action)
			assert.Equal(t, tt.event, r.Event)
		})
	}

	assert.Equal(t, e.CosmicAlignment(models.MoonNew, models.PlanetsFavorable),
		e.CosmicEventAlignment(models.MoonNew, models.PlanetsFavorable, ""))
}

func TestCosmicAlignment_CustomThreshold(t *testing.T) {
	cfg := models.DefaultScoringConfig()
	cfg.HighlyFavorableFrom = 96

	e, err := NewBuilder().WithConfig(cfg).Build()
	assert.NoError(t, err)
	assert.Equal(t, models.RecommendFavorable, e.CosmicAlignment(models.MoonNew, models.PlanetsFavorable).Recommendation)
}

func TestMoonPhaseForDay(t *testing.T) {
	tests := []struct {
		day  int
		want models.MoonPhase
	}{
		{0, models.MoonNew},
		{3, models.MoonNew},
		{4, models.MoonWaxingCrescent},
		{15, models.MoonFull},
		{29, models.MoonWaningCrescent},
		{31, models.MoonWaningCrescent},
		{-3, models.MoonNew},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, models.MoonPhaseForDay(tt.day), "day %d", tt.day)
	}
}
