package resonance

import (
	"context"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/thebtf/resonance/internal/scoring"
	"github.com/thebtf/resonance/pkg/models"
)

// AnalyzePlaylist tallies track frequencies, bands track energy and maps
// the playlist to emotions. The dominant emotion is the highest floored
// mapping score, ties going to the emotion listed first in models.Emotions. A track outside the frequency universe fails
// the whole analysis with scoring.ErrUnknownCategory.
func (e *Engine) AnalyzePlaylist(tracks []models.Track) (models.PlaylistAnalysis, error) {
	freqs := make([]models.Frequency, len(tracks))
	for i, t := range tracks {
		freqs[i] = t.Frequency
	}

	dist, err := scoring.Tally(freqs, e.universe)
	if err != nil {
		return models.PlaylistAnalysis{}, fmt.Errorf("tally frequencies: %w", err)
	}

	entries := dist.Entries()
	distribution := make([]models.FrequencyCount, len(entries))
	for i, entry := range entries {
		distribution[i] = models.FrequencyCount{Frequency: entry.Category, Count: entry.Count}
	}

	energy, err := e.analyzeEnergy(tracks)
	if err != nil {
		return models.PlaylistAnalysis{}, err
	}

	emotions := emotionalMapping(tracks)

	return models.PlaylistAnalysis{
		DominantFrequency:     dist.Dominant(),
		FrequencyDistribution: distribution,
		Total:                 dist.Total(),
		Energy:                energy,
		EmotionalMapping:      emotions,
		DominantEmotion:       scoring.Strongest(models.Emotions, emotions),
	}, nil
}

// AnalyzePlaylists analyzes playlists concurrently, at most the engine's
// batch limit at a time. Results keep the input order. The first failure
// cancels the remaining analyses.
func (e *Engine) AnalyzePlaylists(ctx context.Context, playlists []models.Playlist) ([]models.PlaylistAnalysis, error) {
	results := make([]models.PlaylistAnalysis, len(playlists))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.batchLimit)

	for i, p := range playlists {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			analysis, err := e.AnalyzePlaylist(p.Tracks)
			if err != nil {
				return fmt.Errorf("playlist %d (%s): %w", i, p.ID, err)
			}
			analysis.PlaylistID = p.ID
			results[i] = analysis
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// analyzeEnergy returns nil when no track reports an energy level.
func (e *Engine) analyzeEnergy(tracks []models.Track) (*models.EnergyAnalysis, error) {
	var levels []int
	for _, t := range tracks {
		if t.Energy != nil {
			levels = append(levels, *t.Energy)
		}
	}
	if len(levels) == 0 {
		return nil, nil
	}

	bands := make([]models.EnergyBand, len(levels))
	sum, lo, hi := 0, levels[0], levels[0]
	for i, l := range levels {
		bands[i] = e.energyBands.Classify(l)
		sum += l
		lo = min(lo, l)
		hi = max(hi, l)
	}

	dist, err := scoring.Tally(bands, models.EnergyBands)
	if err != nil {
		return nil, fmt.Errorf("tally energy bands: %w", err)
	}

	return &models.EnergyAnalysis{
		Tracks:       len(levels),
		Average:      int(math.Floor(float64(sum) / float64(len(levels)))),
		Min:          lo,
		Max:          hi,
		Distribution: dist.Counts(),
	}, nil
}

// emotionalMapping averages the emotion scores of every track, floored.
// Every emotion is present in the result, zero for an empty playlist.
func emotionalMapping(tracks []models.Track) map[models.Emotion]int {
	sums := make(map[models.Emotion]int, len(models.Emotions))
	for _, em := range models.Emotions {
		sums[em] = 0
	}
	if len(tracks) == 0 {
		return sums
	}

	for _, t := range tracks {
		for em, v := range models.FrequencyEmotions[t.Frequency] {
			sums[em] += v
		}
	}
	for em, v := range sums {
		sums[em] = int(math.Floor(float64(v) / float64(len(tracks))))
	}
	return sums
}
