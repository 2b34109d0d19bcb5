package worker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"

	"github.com/thebtf/resonance/internal/scoring"
	"github.com/thebtf/resonance/pkg/models"
)

// Handler configuration constants
const (
	// DefaultScoresLimit is the default number of ledger records to return.
	DefaultScoresLimit = 50

	// MaxScoresLimit caps the number of ledger records per request.
	MaxScoresLimit = 500

	// MaxBatchPlaylists caps the playlists of one batch request.
	MaxBatchPlaylists = 50
)

// ErrInvalidRequest marks malformed or out-of-range request input.
var ErrInvalidRequest = models.ErrInvalidRequest

// writeJSON writes a JSON response with proper error handling.
func writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeError writes {"error": msg} with status.
func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(map[string]string{"error": msg}); err != nil {
		log.Error().Err(err).Msg("Failed to encode JSON error")
	}
}

// statusFor maps an error to its HTTP status.
func statusFor(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, scoring.ErrUnknownCategory):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrLedgerDisabled),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeErr writes err with the status statusFor picks. Server errors are
// logged and their detail is not sent.
func writeErr(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Str("requestId", GetRequestID(r.Context())).Str("path", r.URL.Path).Msg("Request failed")
		msg = "internal error"
	}
	writeError(w, status, msg)
}

// invalidf returns an ErrInvalidRequest with detail.
func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidRequest, fmt.Sprintf(format, args...))
}

// unknownf returns a scoring.ErrUnknownCategory with detail.
func unknownf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", scoring.ErrUnknownCategory, fmt.Sprintf(format, args...))
}

// decodeJSON decodes the request body into v.
func decodeJSON(r *http.Request, v any) error {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		return err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return invalidf("request body required")
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	return nil
}

// parseIntParam reads an integer query parameter, falling back to def.
func parseIntParam(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, invalidf("%s must be an integer", name)
	}
	return v, nil
}

// handleHealth returns 200 even during init so clients can connect quickly.
// Use /api/ready for full readiness.
func (s *Service) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "starting"
	if s.ready.Load() {
		status = "ready"
	} else if err := s.GetInitError(); err != nil {
		status = "error"
	}
	writeJSON(w, map[string]interface{}{
		"status":  status,
		"version": s.version,
	})
}

// handleVersion returns the worker version.
func (s *Service) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{
		"version": s.version,
	})
}

// handleReady returns 200 only when fully initialized.
func (s *Service) handleReady(w http.ResponseWriter, r *http.Request) {
	if !s.ready.Load() {
		if err := s.GetInitError(); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeError(w, http.StatusServiceUnavailable, "service initializing")
		return
	}
	writeJSON(w, map[string]string{"status": "ready"})
}

// requireReady returns 503 until the engine is loaded.
func (s *Service) requireReady(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.ready.Load() {
			if err := s.GetInitError(); err != nil {
				writeError(w, http.StatusServiceUnavailable, "service initialization failed: "+err.Error())
				return
			}
			writeError(w, http.StatusServiceUnavailable, "service initializing")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// FrequencyInfo describes one beam frequency.
type FrequencyInfo struct {
	Frequency models.Frequency        `json:"frequency"`
	Profile   models.FrequencyProfile `json:"profile"`
	Bonus     int                     `json:"bonus"`
	Emotions  map[models.Emotion]int  `json:"emotions"`
}

// SigilInfo describes one sigil.
type SigilInfo struct {
	Type models.SigilType `json:"type"`
	models.SigilAttributes
}

// handleGetFrequencies lists the tables the current engine scores with.
func (s *Service) handleGetFrequencies(w http.ResponseWriter, r *http.Request) {
	engine := s.engine.Load()

	freqs := make([]FrequencyInfo, 0, len(models.BeamFrequencies))
	for _, f := range engine.Universe() {
		freqs = append(freqs, FrequencyInfo{
			Frequency: f,
			Profile:   models.ProfileFor(f),
			Bonus:     engine.FrequencyBonus(f),
			Emotions:  models.FrequencyEmotions[f],
		})
	}

	sigils := make([]SigilInfo, 0, len(models.Sigils))
	for t, attrs := range models.Sigils {
		sigils = append(sigils, SigilInfo{Type: t, SigilAttributes: attrs})
	}
	sort.Slice(sigils, func(i, j int) bool { return sigils[i].Type < sigils[j].Type })

	writeJSON(w, map[string]interface{}{
		"frequencies": freqs,
		"sigils":      sigils,
		"tiers":       engine.DeviceTiers(),
		"moon_phases": models.MoonPhases,
		"emotions":    models.Emotions,
	})
}

// handleGetStats reports worker activity.
func (s *Service) handleGetStats(w http.ResponseWriter, r *http.Request) {
	stats := map[string]interface{}{
		"version":     s.version,
		"uptime":      time.Since(s.startTime).Round(time.Second).String(),
		"sse_clients": s.sseBroadcaster.ClientCount(),
		"ledger":      s.config.LedgerDriver,
	}
	if s.rateLimiter != nil {
		stats["rate_limit"] = s.rateLimiter.Stats()
	}
	if s.tablesWatcher != nil {
		stats["tables"] = s.tablesWatcher.Stats()
	}
	if s.maintenance != nil {
		stats["maintenance"] = s.maintenance.Stats()
	}
	writeJSON(w, stats)
}
