package worker

import (
	"net/http"

	"github.com/thebtf/resonance/pkg/models"
)

// parseKind reads the optional kind filter.
func parseKind(r *http.Request) (models.ScoreKind, error) {
	kind := models.ScoreKind(r.URL.Query().Get("kind"))
	if kind != "" && !kind.Valid() {
		return "", invalidf("unknown kind %q", kind)
	}
	return kind, nil
}

// handleGetRecentScores returns the newest ledger records, optionally for one kind.
func (s *Service) handleGetRecentScores(w http.ResponseWriter, r *http.Request) {
	if s.ledger == nil {
		writeErr(w, r, ErrLedgerDisabled)
		return
	}
	kind, err := parseKind(r)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	limit, err := parseIntParam(r, "limit", DefaultScoresLimit)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	if limit <= 0 || limit > MaxScoresLimit {
		writeErr(w, r, invalidf("limit must be in [1, %d]", MaxScoresLimit))
		return
	}

	records, err := s.ledger.GetRecentScores(r.Context(), kind, limit)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	if records == nil {
		records = []*models.ScoreRecord{}
	}
	writeJSON(w, records)
}

// handleGetScoreStats aggregates the ledger for one kind, or for every kind
// when none is given.
func (s *Service) handleGetScoreStats(w http.ResponseWriter, r *http.Request) {
	if s.ledger == nil {
		writeErr(w, r, ErrLedgerDisabled)
		return
	}
	kind, err := parseKind(r)
	if err != nil {
		writeErr(w, r, err)
		return
	}

	if kind != "" {
		stats, err := s.ledger.GetScoreStats(r.Context(), kind)
		if err != nil {
			writeErr(w, r, err)
			return
		}
		writeJSON(w, stats)
		return
	}

	all := make([]*models.ScoreStats, 0, len(models.ScoreKinds))
	for _, k := range models.ScoreKinds {
		stats, err := s.ledger.GetScoreStats(r.Context(), k)
		if err != nil {
			writeErr(w, r, err)
			return
		}
		all = append(all, stats)
	}
	writeJSON(w, all)
}
