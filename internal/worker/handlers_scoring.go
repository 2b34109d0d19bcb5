package worker

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/thebtf/resonance/internal/scoring"
	"github.com/thebtf/resonance/internal/worker/sse"
	"github.com/thebtf/resonance/pkg/models"
)

// recordTimeout bounds a ledger write made on behalf of a request.
const recordTimeout = 5 * time.Second

// recordScore counts, broadcasts and stores a computed score. Ledger
// failures are logged and never fail the request.
func (s *Service) recordScore(ctx context.Context, rec *models.ScoreRecord) {
	s.metrics.RecordScore(ctx, rec.Kind, rec.Score)

	event := sse.Event{
		Type:      sse.EventScore,
		Kind:      string(rec.Kind),
		Subject:   rec.Subject,
		Label:     rec.Label,
		Timestamp: rec.CreatedAtEpoch,
	}
	if rec.Score != models.LabelOnly {
		score := rec.Score
		event.Score = &score
	}
	s.sseBroadcaster.Broadcast(event)

	if s.ledger == nil {
		return
	}
	// The write outlives a client that hangs up after the response.
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
	defer cancel()
	if err := s.ledger.RecordScore(writeCtx, rec); err != nil {
		log.Warn().Err(err).
			Str("kind", string(rec.Kind)).
			Str("requestId", GetRequestID(ctx)).
			Msg("Failed to record score")
	}
}

// fail counts a rejected request and writes the error.
func (s *Service) fail(w http.ResponseWriter, r *http.Request, kind models.ScoreKind, err error) {
	reason := "invalid"
	switch {
	case errors.Is(err, scoring.ErrUnknownCategory):
		reason = "unknown_category"
	case statusFor(err) >= http.StatusInternalServerError:
		reason = "internal"
	}
	s.metrics.RecordFailure(r.Context(), kind, reason)
	writeErr(w, r, err)
}

// handleDNAResonance scores a beam frequency against biometric readings.
func (s *Service) handleDNAResonance(w http.ResponseWriter, r *http.Request) {
	var req models.DNARequest
	if err := decodeJSON(r, &req); err != nil {
		s.fail(w, r, models.KindDNA, err)
		return
	}
	if err := req.Validate(); err != nil {
		s.fail(w, r, models.KindDNA, err)
		return
	}

	engine := s.engine.Load()
	if err := engine.ValidateFrequency(req.Frequency); err != nil {
		s.fail(w, r, models.KindDNA, err)
		return
	}

	result := engine.DNAResonance(req.Frequency, req.Bio)

	inputs := models.JSONObject{"frequency": int(req.Frequency)}
	for _, sig := range result.Signals {
		inputs[sig.Name] = sig.Value
	}
	s.recordScore(r.Context(), models.NewScoreRecord(
		models.KindDNA, req.Subject, int(result.Score), result.Profile.Name, inputs))

	writeJSON(w, result)
}

// handleSigilResonance scores a sigil against a user frequency.
func (s *Service) handleSigilResonance(w http.ResponseWriter, r *http.Request) {
	var req models.SigilRequest
	if err := decodeJSON(r, &req); err != nil {
		s.fail(w, r, models.KindSigil, err)
		return
	}
	if err := req.Validate(); err != nil {
		s.fail(w, r, models.KindSigil, err)
		return
	}

	result := s.engine.Load().SigilResonance(req.Sigil, req.UserFrequency)

	s.recordScore(r.Context(), models.NewScoreRecord(
		models.KindSigil, req.Subject, int(result.Score), string(result.Sigil),
		models.JSONObject{"sigil": string(req.Sigil), "user_frequency": int(req.UserFrequency)}))

	writeJSON(w, result)
}

// handleDeviceCompatibility classifies capability flags into an AR tier.
func (s *Service) handleDeviceCompatibility(w http.ResponseWriter, r *http.Request) {
	var req models.DeviceRequest
	if err := decodeJSON(r, &req); err != nil {
		s.fail(w, r, models.KindDevice, err)
		return
	}

	report := s.engine.Load().DeviceCompatibility(req.Flags)

	s.recordScore(r.Context(), models.NewScoreRecord(
		models.KindDevice, req.Subject, models.LabelOnly, string(report.Tier),
		models.JSONObject{
			"webxr":         req.Flags.WebXR,
			"gyroscope":     req.Flags.Gyroscope,
			"accelerometer": req.Flags.Accelerometer,
			"camera":        req.Flags.Camera,
		}))

	writeJSON(w, report)
}

func playlistSubject(p models.Playlist) string {
	if p.ID != "" {
		return p.ID
	}
	return p.Name
}

func (s *Service) recordPlaylist(ctx context.Context, p models.Playlist, a models.PlaylistAnalysis) {
	s.recordScore(ctx, models.NewScoreRecord(
		models.KindPlaylist, playlistSubject(p), models.LabelOnly, a.DominantFrequency.String(),
		models.JSONObject{"tracks": a.Total, "dominant_emotion": string(a.DominantEmotion)}))
}

// handleAnalyzePlaylist analyzes one playlist.
func (s *Service) handleAnalyzePlaylist(w http.ResponseWriter, r *http.Request) {
	var req models.Playlist
	if err := decodeJSON(r, &req); err != nil {
		s.fail(w, r, models.KindPlaylist, err)
		return
	}

	analysis, err := s.engine.Load().AnalyzePlaylist(req.Tracks)
	if err != nil {
		s.fail(w, r, models.KindPlaylist, err)
		return
	}
	analysis.PlaylistID = req.ID

	s.recordPlaylist(r.Context(), req, analysis)
	writeJSON(w, analysis)
}

// handleAnalyzePlaylists analyzes a batch of playlists concurrently. One bad
// playlist fails the whole batch.
func (s *Service) handleAnalyzePlaylists(w http.ResponseWriter, r *http.Request) {
	var req models.PlaylistBatchRequest
	if err := decodeJSON(r, &req); err != nil {
		s.fail(w, r, models.KindPlaylist, err)
		return
	}
	switch n := len(req.Playlists); {
	case n == 0:
		s.fail(w, r, models.KindPlaylist, invalidf("playlists required"))
		return
	case n > MaxBatchPlaylists:
		s.fail(w, r, models.KindPlaylist, invalidf("at most %d playlists per batch, got %d", MaxBatchPlaylists, n))
		return
	}

	analyses, err := s.engine.Load().AnalyzePlaylists(r.Context(), req.Playlists)
	if err != nil {
		s.fail(w, r, models.KindPlaylist, err)
		return
	}

	for i, a := range analyses {
		s.recordPlaylist(r.Context(), req.Playlists[i], a)
	}
	writeJSON(w, map[string]interface{}{
		"analyses": analyses,
		"count":    len(analyses),
	})
}

// handleCosmicAlignment scores the sky for a mint.
func (s *Service) handleCosmicAlignment(w http.ResponseWriter, r *http.Request) {
	var req models.CosmicRequest
	if err := decodeJSON(r, &req); err != nil {
		s.fail(w, r, models.KindCosmic, err)
		return
	}

	phase, planets, err := req.Resolve()
	if err != nil {
		s.fail(w, r, models.KindCosmic, err)
		return
	}

	result := s.engine.Load().CosmicEventAlignment(phase, planets, req.Event)

	inputs := models.JSONObject{"moon_phase": string(phase), "planetary_alignment": string(planets)}
	if req.Event != "" {
		inputs["event"] = string(req.Event)
	}
	s.recordScore(r.Context(), models.NewScoreRecord(
		models.KindCosmic, req.Subject, int(result.Score), result.Recommendation, inputs))

	writeJSON(w, result)
}
