// Package config provides configuration management for resonance.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const (
	// DefaultWorkerPort is the default HTTP port for the worker service.
	DefaultWorkerPort = 37778

	// DefaultLogLevel is used when no level is configured.
	DefaultLogLevel = "info"

	// DefaultMaxBodyBytes caps request bodies (1 MiB).
	DefaultMaxBodyBytes = 1 << 20

	// DefaultRateLimit is the per-client scoring request rate (per second).
	DefaultRateLimit = 20

	// DefaultRateBurst is the per-client burst allowance.
	DefaultRateBurst = 40

	// DefaultMaintenanceIntervalHours is how often the ledger is pruned.
	DefaultMaintenanceIntervalHours = 24
)

// Ledger drivers.
// AuthTokenAuto asks the worker to generate its own auth token at start.
const AuthTokenAuto = "auto"

const (
	LedgerSQLite   = "sqlite"
	LedgerPostgres = "postgres"
	LedgerNone     = "none"
)

// Config holds the application configuration.
type Config struct {
	// Worker settings
	WorkerPort   int    `json:"worker_port"`
	LogLevel     string `json:"log_level"`
	MaxBodyBytes int64  `json:"max_body_bytes"`
	AuthToken    string `json:"-"` // Never serialized

	// Per-client rate limiting of scoring routes; a zero rate disables it
	RateLimit float64 `json:"rate_limit"`
	RateBurst int     `json:"rate_burst"`

	// Score ledger settings
	LedgerDriver string `json:"ledger_driver"` // sqlite, postgres or none
	DBPath       string `json:"db_path"`
	PostgresDSN  string `json:"-"`
	MaxConns     int    `json:"max_conns"`

	// Ledger retention; zero days keeps records forever
	LedgerRetentionDays      int `json:"ledger_retention_days"`
	MaintenanceIntervalHours int `json:"maintenance_interval_hours"`

	// Scoring tables (YAML); empty means built-in defaults
	TablesPath string `json:"tables_path"`
}

var (
	globalConfig *Config
	configOnce   sync.Once
	configMu     sync.RWMutex
)

// DataDir returns the data directory path (~/.resonance).
func DataDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".resonance")
}

// DBPath returns the database file path.
func DBPath() string {
	return filepath.Join(DataDir(), "resonance.db")
}

// SettingsPath returns the settings file path.
func SettingsPath() string {
	return filepath.Join(DataDir(), "settings.json")
}

// EnsureDataDir creates the data directory if it doesn't exist.
func EnsureDataDir() error {
	return os.MkdirAll(DataDir(), 0750)
}

// EnsureSettings creates a default settings file if it doesn't exist.
func EnsureSettings() error {
	path := SettingsPath()

	if _, err := os.Stat(path); err == nil {
		return nil
	}

	defaultSettings := `{
  "RESONANCE_WORKER_PORT": 37778,
  "RESONANCE_LOG_LEVEL": "info",
  "RESONANCE_LEDGER_DRIVER": "sqlite"
}
`
	return os.WriteFile(path, []byte(defaultSettings), 0600)
}

// EnsureAll ensures all required directories and files exist.
func EnsureAll() error {
	if err := EnsureDataDir(); err != nil {
		return err
	}
	if err := EnsureSettings(); err != nil {
		return err
	}
	return nil
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		WorkerPort:   DefaultWorkerPort,
		LogLevel:     DefaultLogLevel,
		MaxBodyBytes: DefaultMaxBodyBytes,
		LedgerDriver: LedgerSQLite,
		DBPath:       DBPath(),
		MaxConns:     4,
		RateLimit:    DefaultRateLimit,
		RateBurst:    DefaultRateBurst,

		MaintenanceIntervalHours: DefaultMaintenanceIntervalHours,
	}
}

// Load loads configuration from the settings file, merging with defaults.
func Load() (*Config, error) {
	return LoadFrom(SettingsPath())
}

// LoadFrom loads configuration from path, merging with defaults.
// A missing or unparsable file yields the defaults.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	// Load settings into a map to preserve unknown fields
	var settings map[string]interface{}
	if err := json.Unmarshal(data, &settings); err != nil {
		return cfg, nil // Return defaults on parse error
	}

	if v, ok := settings["RESONANCE_WORKER_PORT"].(float64); ok && v > 0 {
		cfg.WorkerPort = int(v)
	}
	if v, ok := settings["RESONANCE_LOG_LEVEL"].(string); ok && v != "" {
		cfg.LogLevel = strings.ToLower(strings.TrimSpace(v))
	}
	if v, ok := settings["RESONANCE_MAX_BODY_BYTES"].(float64); ok && v > 0 {
		cfg.MaxBodyBytes = int64(v)
	}
	if v, ok := settings["RESONANCE_RATE_LIMIT"].(float64); ok && v >= 0 {
		cfg.RateLimit = v
	}
	if v, ok := settings["RESONANCE_RATE_BURST"].(float64); ok && v > 0 {
		cfg.RateBurst = int(v)
	}
	if v, ok := settings["RESONANCE_AUTH_TOKEN"].(string); ok {
		cfg.AuthToken = v
	}
	if v, ok := settings["RESONANCE_LEDGER_DRIVER"].(string); ok {
		switch d := strings.ToLower(strings.TrimSpace(v)); d {
		case LedgerSQLite, LedgerPostgres, LedgerNone:
			cfg.LedgerDriver = d
		}
	}
	if v, ok := settings["RESONANCE_DB_PATH"].(string); ok && v != "" {
		cfg.DBPath = v
	}
	if v, ok := settings["RESONANCE_POSTGRES_DSN"].(string); ok {
		cfg.PostgresDSN = v
	}
	if v, ok := settings["RESONANCE_MAX_CONNS"].(float64); ok && v > 0 {
		cfg.MaxConns = int(v)
	}
	if v, ok := settings["RESONANCE_LEDGER_RETENTION_DAYS"].(float64); ok && v >= 0 {
		cfg.LedgerRetentionDays = int(v)
	}
	if v, ok := settings["RESONANCE_MAINTENANCE_INTERVAL_HOURS"].(float64); ok && v > 0 {
		cfg.MaintenanceIntervalHours = int(v)
	}
	if v, ok := settings["RESONANCE_TABLES_PATH"].(string); ok {
		cfg.TablesPath = v
	}

	applyEnv(cfg)
	return cfg, nil
}

// applyEnv lets secrets come from the environment instead of settings.json.
func applyEnv(cfg *Config) {
	if v := os.Getenv("RESONANCE_AUTH_TOKEN"); v != "" {
		cfg.AuthToken = v
	}
	if v := os.Getenv("RESONANCE_POSTGRES_DSN"); v != "" {
		cfg.PostgresDSN = v
	}
	if v := os.Getenv("RESONANCE_LOG_LEVEL"); v != "" {
		cfg.LogLevel = strings.ToLower(strings.TrimSpace(v))
	}
}

// Get returns the global configuration, loading it if necessary.
func Get() *Config {
	configOnce.Do(func() {
		var err error
		globalConfig, err = Load()
		if err != nil {
			globalConfig = Default()
			applyEnv(globalConfig)
		}
	})

	configMu.RLock()
	defer configMu.RUnlock()
	return globalConfig
}

// GetWorkerPort returns the worker port from environment or config.
func GetWorkerPort() int {
	return Get().Port()
}

// Port returns c.WorkerPort unless RESONANCE_WORKER_PORT overrides it.
func (c *Config) Port() int {
	if port := os.Getenv("RESONANCE_WORKER_PORT"); port != "" {
		var p int
		if err := json.Unmarshal([]byte(port), &p); err == nil && p > 0 {
			return p
		}
	}
	return c.WorkerPort
}
