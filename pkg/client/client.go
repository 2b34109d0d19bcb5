// Package client talks to a running resonance worker.
package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/thebtf/resonance/pkg/models"
)

const (
	// DefaultWorkerPort is the default worker port.
	DefaultWorkerPort = 37778

	// HealthCheckTimeout bounds health and version probes.
	HealthCheckTimeout = 1 * time.Second

	// RequestTimeout bounds scoring calls.
	RequestTimeout = 10 * time.Second
)

// ErrScoreUnavailable is returned when the worker rejects a request or
// cannot be reached. Callers fall back to a default result.
var ErrScoreUnavailable = errors.New("score unavailable")

// APIError is a non-2xx worker response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("worker returned %d", e.Status)
	}
	return fmt.Sprintf("worker returned %d: %s", e.Status, e.Message)
}

// GetWorkerPort returns the worker port from RESONANCE_WORKER_PORT or the default.
func GetWorkerPort() int {
	if port := os.Getenv("RESONANCE_WORKER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil && p > 0 {
			return p
		}
	}
	return DefaultWorkerPort
}

// Client is a worker client. It is safe for concurrent use.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithToken sends token as a bearer token.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithBaseURL points the client at baseURL instead of localhost.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(baseURL, "/") }
}

// New returns a client for the worker on 127.0.0.1:port.
func New(port int, opts ...Option) *Client {
	c := &Client{
		baseURL:    fmt.Sprintf("http://127.0.0.1:%d", port),
		httpClient: &http.Client{Timeout: RequestTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewFromEnv returns a client for the port and token in the environment.
func NewFromEnv(opts ...Option) *Client {
	base := []Option{WithToken(os.Getenv("RESONANCE_AUTH_TOKEN"))}
	return New(GetWorkerPort(), append(base, opts...)...)
}

// IsRunning reports whether the worker answers its health check.
func (c *Client) IsRunning(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, HealthCheckTimeout)
	defer cancel()

	var health struct {
		Status string `json:"status"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/health", nil, &health); err != nil {
		return false
	}
	return health.Status != "error"
}

// Version returns the version of the running worker.
func (c *Client) Version(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, HealthCheckTimeout)
	defer cancel()

	var result map[string]string
	if err := c.do(ctx, http.MethodGet, "/api/version", nil, &result); err != nil {
		return "", err
	}
	return result["version"], nil
}

// DNAScore is the worker's DNA resonance result.
type DNAScore struct {
	Frequency       models.Frequency        `json:"frequency"`
	Score           int                     `json:"score"`
	Profile         models.FrequencyProfile `json:"profile"`
	DefaultsApplied []string                `json:"defaults_applied,omitempty"`
}

// SigilScore is the worker's sigil resonance result.
type SigilScore struct {
	Sigil          models.SigilType       `json:"sigil"`
	Attributes     models.SigilAttributes `json:"attributes"`
	SigilFrequency models.Frequency       `json:"sigil_frequency"`
	UserFrequency  models.Frequency       `json:"user_frequency"`
	Score          int                    `json:"score"`
}

// DeviceTier is the worker's AR compatibility result.
type DeviceTier struct {
	Tier       models.Tier                 `json:"tier"`
	Compatible bool                        `json:"compatible"`
	Settings   models.OptimizationSettings `json:"settings"`
}

// CosmicScore is the worker's cosmic alignment result.
type CosmicScore struct {
	MoonPhase      models.MoonPhase          `json:"moon_phase"`
	Planetary      models.PlanetaryAlignment `json:"planetary_alignment"`
	Event          models.CosmicEvent        `json:"event,omitempty"`
	Score          int                       `json:"score"`
	Recommendation string                    `json:"recommendation"`
	Action         string                    `json:"action,omitempty"`
}

// DNAResonance scores a beam frequency against biometric readings.
func (c *Client) DNAResonance(ctx context.Context, req models.DNARequest) (*DNAScore, error) {
	var out DNAScore
	if err := c.do(ctx, http.MethodPost, "/api/resonance/dna", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SigilResonance scores a sigil against a user frequency.
func (c *Client) SigilResonance(ctx context.Context, req models.SigilRequest) (*SigilScore, error) {
	var out SigilScore
	if err := c.do(ctx, http.MethodPost, "/api/resonance/sigil", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeviceCompatibility classifies capability flags into an AR tier.
func (c *Client) DeviceCompatibility(ctx context.Context, req models.DeviceRequest) (*DeviceTier, error) {
	var out DeviceTier
	if err := c.do(ctx, http.MethodPost, "/api/devices/compatibility", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AnalyzePlaylist analyzes one playlist.
func (c *Client) AnalyzePlaylist(ctx context.Context, p models.Playlist) (*models.PlaylistAnalysis, error) {
	var out models.PlaylistAnalysis
	if err := c.do(ctx, http.MethodPost, "/api/playlists/analyze", p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AnalyzePlaylists analyzes a batch; results keep the input order.
func (c *Client) AnalyzePlaylists(ctx context.Context, playlists []models.Playlist) ([]models.PlaylistAnalysis, error) {
	var out struct {
		Analyses []models.PlaylistAnalysis `json:"analyses"`
	}
	req := models.PlaylistBatchRequest{Playlists: playlists}
	if err := c.do(ctx, http.MethodPost, "/api/playlists/analyze/batch", req, &out); err != nil {
		return nil, err
	}
	return out.Analyses, nil
}

// CosmicAlignment scores the sky for a mint.
func (c *Client) CosmicAlignment(ctx context.Context, req models.CosmicRequest) (*CosmicScore, error) {
	var out CosmicScore
	if err := c.do(ctx, http.MethodPost, "/api/cosmic/alignment", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RecentScores returns the newest ledger records. An empty kind means all kinds.
func (c *Client) RecentScores(ctx context.Context, kind models.ScoreKind, limit int) ([]*models.ScoreRecord, error) {
	q := url.Values{}
	if kind != "" {
		q.Set("kind", string(kind))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	path := "/api/scores/recent"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var out []*models.ScoreRecord
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ScoreStats aggregates the ledger for kind.
func (c *Client) ScoreStats(ctx context.Context, kind models.ScoreKind) (*models.ScoreStats, error) {
	var out models.ScoreStats
	path := "/api/scores/stats?kind=" + url.QueryEscape(string(kind))
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// do sends a request and decodes the JSON response into out. Every failure
// wraps ErrScoreUnavailable.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%w: encode request: %w", ErrScoreUnavailable, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrScoreUnavailable, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrScoreUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		apiErr := &APIError{Status: resp.StatusCode}
		var payload struct {
			Error string `json:"error"`
		}
		if data, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10)); err == nil {
			if json.Unmarshal(data, &payload) == nil {
				apiErr.Message = payload.Error
			} else {
				apiErr.Message = strings.TrimSpace(string(data))
			}
		}
		return fmt.Errorf("%w: %w", ErrScoreUnavailable, apiErr)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %w", ErrScoreUnavailable, err)
	}
	return nil
}
