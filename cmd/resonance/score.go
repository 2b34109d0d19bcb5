package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/thebtf/resonance/internal/config"
	"github.com/thebtf/resonance/internal/resonance"
	"github.com/thebtf/resonance/pkg/client"
	"github.com/thebtf/resonance/pkg/models"
)

// maxInputBytes caps the request read from stdin.
const maxInputBytes = 4 << 20

// scoreOutput is what the score command prints.
type scoreOutput struct {
	Kind      models.ScoreKind `json:"kind"`
	Available bool             `json:"available"`
	Error     string           `json:"error,omitempty"`
	Result    any              `json:"result"`
}

// scorer computes one result per request kind.
type scorer interface {
	DNA(ctx context.Context, req models.DNARequest) (any, error)
	Sigil(ctx context.Context, req models.SigilRequest) (any, error)
	Device(ctx context.Context, req models.DeviceRequest) (any, error)
	Playlist(ctx context.Context, p models.Playlist) (any, error)
	Cosmic(ctx context.Context, req models.CosmicRequest) (any, error)
}

func (c *cli) scoreCmd() *cobra.Command {
	var (
		local  bool
		tables string
	)
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score a JSON request read from stdin",
		Long: `Reads {"kind": "dna|sigil|device|playlist|cosmic", ...} from stdin and
prints the result. When the worker is unreachable or rejects the request the
default result is printed with "available": false.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var s scorer = remoteScorer{c.newClient()}
			if local {
				engine, err := localEngine(tables)
				if err != nil {
					return err
				}
				s = localScorer{engine}
			} else if tables != "" {
				return fmt.Errorf("%w: --tables requires --local", errUsage)
			}
			return c.runScore(cmd.Context(), s)
		},
	}
	cmd.Flags().BoolVar(&local, "local", false, "compute in-process instead of calling the worker")
	cmd.Flags().StringVar(&tables, "tables", "", "scoring tables YAML used with --local")
	return cmd
}

func (c *cli) runScore(ctx context.Context, s scorer) error {
	data, err := io.ReadAll(io.LimitReader(c.stdin, maxInputBytes))
	if err != nil {
		return fmt.Errorf("read stdin: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return fmt.Errorf("%w: empty request", errUsage)
	}

	var head struct {
		Kind models.ScoreKind `json:"kind"`
	}
	if err := decodeRequest(data, &head); err != nil {
		return err
	}
	if !head.Kind.Valid() {
		return fmt.Errorf("%w: unknown kind %q", errUsage, head.Kind)
	}

	result, err := score(ctx, s, head.Kind, data)
	if errors.Is(err, errUsage) {
		return err
	}

	out := scoreOutput{Kind: head.Kind, Available: err == nil, Result: result}
	if err != nil {
		log.Warn().Err(err).Str("kind", string(head.Kind)).Msg("Score unavailable, using default")
		out.Error = err.Error()
		out.Result = fallback(head.Kind)
	}
	return c.writeJSON(out)
}

func score(ctx context.Context, s scorer, kind models.ScoreKind, data []byte) (any, error) {
	switch kind {
	case models.KindDNA:
		var req models.DNARequest
		if err := decodeRequest(data, &req); err != nil {
			return nil, err
		}
		return s.DNA(ctx, req)
	case models.KindSigil:
		var req models.SigilRequest
		if err := decodeRequest(data, &req); err != nil {
			return nil, err
		}
		return s.Sigil(ctx, req)
	case models.KindDevice:
		var req models.DeviceRequest
		if err := decodeRequest(data, &req); err != nil {
			return nil, err
		}
		return s.Device(ctx, req)
	case models.KindPlaylist:
		var p models.Playlist
		if err := decodeRequest(data, &p); err != nil {
			return nil, err
		}
		return s.Playlist(ctx, p)
	case models.KindCosmic:
		var req models.CosmicRequest
		if err := decodeRequest(data, &req); err != nil {
			return nil, err
		}
		return s.Cosmic(ctx, req)
	}
	return nil, fmt.Errorf("%w: unknown kind %q", errUsage, kind)
}

func decodeRequest(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %w", errUsage, err)
	}
	return nil
}

// fallback is the result printed when no score is available.
func fallback(kind models.ScoreKind) any {
	switch kind {
	case models.KindDNA:
		return client.DNAScore{}
	case models.KindSigil:
		return client.SigilScore{}
	case models.KindDevice:
		return client.DeviceTier{Tier: models.TierNone, Settings: models.SettingsFor(models.TierNone)}
	case models.KindPlaylist:
		return models.PlaylistAnalysis{
			DominantFrequency:     models.FreqEarth,
			FrequencyDistribution: []models.FrequencyCount{},
			EmotionalMapping:      map[models.Emotion]int{},
			DominantEmotion:       models.EmotionPeace,
		}
	case models.KindCosmic:
		return client.CosmicScore{Recommendation: models.RecommendFavorable}
	}
	return nil
}

type remoteScorer struct {
	c *client.Client
}

func (r remoteScorer) DNA(ctx context.Context, req models.DNARequest) (any, error) {
	return r.c.DNAResonance(ctx, req)
}

func (r remoteScorer) Sigil(ctx context.Context, req models.SigilRequest) (any, error) {
	return r.c.SigilResonance(ctx, req)
}

func (r remoteScorer) Device(ctx context.Context, req models.DeviceRequest) (any, error) {
	return r.c.DeviceCompatibility(ctx, req)
}

func (r remoteScorer) Playlist(ctx context.Context, p models.Playlist) (any, error) {
	return r.c.AnalyzePlaylist(ctx, p)
}

func (r remoteScorer) Cosmic(ctx context.Context, req models.CosmicRequest) (any, error) {
	return r.c.CosmicAlignment(ctx, req)
}

func localEngine(tables string) (*resonance.Engine, error) {
	if tables == "" {
		return resonance.Default(), nil
	}
	cfg, err := config.LoadTables(tables)
	if err != nil {
		return nil, fmt.Errorf("load tables: %w", err)
	}
	engine, err := resonance.NewBuilder().WithConfig(cfg).Build()
	if err != nil {
		return nil, fmt.Errorf("build engine: %w", err)
	}
	return engine, nil
}

// localScorer validates requests the way the worker does and scores in-process.
type localScorer struct {
	e *resonance.Engine
}

func (l localScorer) DNA(_ context.Context, req models.DNARequest) (any, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := l.e.ValidateFrequency(req.Frequency); err != nil {
		return nil, err
	}
	return l.e.DNAResonance(req.Frequency, req.Bio), nil
}

func (l localScorer) Sigil(_ context.Context, req models.SigilRequest) (any, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return l.e.SigilResonance(req.Sigil, req.UserFrequency), nil
}

func (l localScorer) Device(_ context.Context, req models.DeviceRequest) (any, error) {
	return l.e.DeviceCompatibility(req.Flags), nil
}

func (l localScorer) Playlist(_ context.Context, p models.Playlist) (any, error) {
	analysis, err := l.e.AnalyzePlaylist(p.Tracks)
	if err != nil {
		return nil, err
	}
	analysis.PlaylistID = p.ID
	return analysis, nil
}

func (l localScorer) Cosmic(_ context.Context, req models.CosmicRequest) (any, error) {
	phase, planets, err := req.Resolve()
	if err != nil {
		return nil, err
	}
	return l.e.CosmicEventAlignment(phase, planets, req.Event), nil
}
