package client

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thebtf/resonance/pkg/models"
)

// fakeWorker answers a fixed set of routes the way the worker does.
func fakeWorker(t *testing.T, token string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	writeJSON := func(w http.ResponseWriter, status int, v any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(v)
	}

	mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready", "version": "v1.2.3"})
	})
	mux.HandleFunc("GET /api/version", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"version": "v1.2.3"})
	})
	mux.HandleFunc("POST /api/resonance/dna", func(w http.ResponseWriter, r *http.Request) {
		if token != "" && r.Header.Get("Authorization") != "Bearer "+token {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
			return
		}
		var req models.DNARequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if !req.Frequency.IsBeamFrequency() {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": "unknown category: frequency"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"frequency": req.Frequency,
			"score":     97,
			"profile":   models.ProfileFor(req.Frequency),
		})
	})
	mux.HandleFunc("POST /api/devices/compatibility", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"tier": "full", "compatible": true})
	})
	mux.HandleFunc("POST /api/playlists/analyze/batch", func(w http.ResponseWriter, r *http.Request) {
		var req models.PlaylistBatchRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		out := make([]models.PlaylistAnalysis, len(req.Playlists))
		for i, p := range req.Playlists {
			out[i] = models.PlaylistAnalysis{PlaylistID: p.ID, DominantFrequency: models.FreqLove}
		}
		writeJSON(w, http.StatusOK, map[string]any{"analyses": out, "count": len(out)})
	})
	mux.HandleFunc("GET /api/scores/recent", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "cosmic", r.URL.Query().Get("kind"))
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		writeJSON(w, http.StatusOK, []*models.ScoreRecord{{ID: "r1", Kind: models.KindCosmic, Score: 95}})
	})
	mux.HandleFunc("GET /api/scores/stats", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, models.ScoreStats{Kind: models.ScoreKind(r.URL.Query().Get("kind")), Count: 2, Average: 95})
	})
	mux.HandleFunc("POST /api/cosmic/alignment", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, "boom")
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestGetWorkerPort(t *testing.T) {
	tests := []struct {
		env  string
		want int
	}{
		{"", DefaultWorkerPort},
		{"41000", 41000},
		{"0", DefaultWorkerPort},
		{"-5", DefaultWorkerPort},
		{"abc", DefaultWorkerPort},
	}
	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			t.Setenv("RESONANCE_WORKER_PORT", tt.env)
			assert.Equal(t, tt.want, GetWorkerPort())
		})
	}
}

func TestClient_HealthAndVersion(t *testing.T) {
	c := New(0, WithBaseURL(fakeWorker(t, "").URL+"/"))
	ctx := context.Background()

	assert.True(t, c.IsRunning(ctx))
	v, err := c.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, "v1.2.3", v)
}

func TestClient_NotRunning(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := New(0, WithBaseURL(url))
	assert.False(t, c.IsRunning(context.Background()))

	_, err := c.DNAResonance(context.Background(), models.DNARequest{Frequency: models.FreqDivine})
	assert.ErrorIs(t, err, ErrScoreUnavailable)
}

func TestClient_DNAResonance(t *testing.T) {
	c := New(0, WithBaseURL(fakeWorker(t, "").URL))

	score, err := c.DNAResonance(context.Background(), models.DNARequest{Frequency: models.FreqDivine})
	require.NoError(t, err)
	assert.Equal(t, 97, score.Score)
	assert.Equal(t, "Divine Connection", score.Profile.Name)
}

func TestClient_RejectedRequest(t *testing.T) {
	c := New(0, WithBaseURL(fakeWorker(t, "").URL))

	_, err := c.DNAResonance(context.Background(), models.DNARequest{Frequency: models.FreqAwakening})
	require.ErrorIs(t, err, ErrScoreUnavailable)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.Status)
	assert.Equal(t, "unknown category: frequency", apiErr.Message)
}

func TestClient_NonJSONError(t *testing.T) {
	c := New(0, WithBaseURL(fakeWorker(t, "").URL))

	_, err := c.CosmicAlignment(context.Background(), models.CosmicRequest{MoonPhase: models.MoonFull})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
	assert.Equal(t, "boom", apiErr.Message)
}

func TestClient_Token(t *testing.T) {
	srv := fakeWorker(t, "s3cret")

	_, err := New(0, WithBaseURL(srv.URL)).DNAResonance(context.Background(), models.DNARequest{Frequency: models.FreqLove})
	assert.ErrorIs(t, err, ErrScoreUnavailable)

	score, err := New(0, WithBaseURL(srv.URL), WithToken("s3cret")).DNAResonance(context.Background(), models.DNARequest{Frequency: models.FreqLove})
	require.NoError(t, err)
	assert.Equal(t, models.FreqLove, score.Frequency)
}

func TestClient_NewFromEnv(t *testing.T) {
	t.Setenv("RESONANCE_WORKER_PORT", "41001")
	t.Setenv("RESONANCE_AUTH_TOKEN", "tok")

	c := NewFromEnv()
	assert.Equal(t, "http://127.0.0.1:41001", c.baseURL)
	assert.Equal(t, "tok", c.token)
}

func TestClient_DeviceAndBatch(t *testing.T) {
	c := New(0, WithBaseURL(fakeWorker(t, "").URL))
	ctx := context.Background()

	tier, err := c.DeviceCompatibility(ctx, models.DeviceRequest{Flags: models.CapabilityFlags{WebXR: true}})
	require.NoError(t, err)
	assert.Equal(t, models.TierFull, tier.Tier)

	analyses, err := c.AnalyzePlaylists(ctx, []models.Playlist{{ID: "a"}, {ID: "b"}})
	require.NoError(t, err)
	require.Len(t, analyses, 2)
	assert.Equal(t, "b", analyses[1].PlaylistID)
}

func TestClient_Ledger(t *testing.T) {
	c := New(0, WithBaseURL(fakeWorker(t, "").URL))
	ctx := context.Background()

	records, err := c.RecentScores(ctx, models.KindCosmic, 5)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 95, records[0].Score)

	stats, err := c.ScoreStats(ctx, models.KindCosmic)
	require.NoError(t, err)
	assert.Equal(t, models.KindCosmic, stats.Kind)
	assert.Equal(t, int64(2), stats.Count)
}

func TestClient_ContextTimeout(t *testing.T) {
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer slow.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := New(0, WithBaseURL(slow.URL)).DNAResonance(ctx, models.DNARequest{Frequency: models.FreqDivine})
	assert.ErrorIs(t, err, ErrScoreUnavailable)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
