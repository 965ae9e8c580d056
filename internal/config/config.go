package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	DataDir       string `toml:"data_dir"`
	GamesDir      string `toml:"games_dir"`
	ImageCacheDir string `toml:"image_cache_dir"`
	BackupDir     string `toml:"backup_dir"`
	LogDir        string `toml:"log_dir"`
}

// Library contains configuration for the game library store.
type Library struct {
	// File is the library JSON file; defaults to <data_dir>/library.json.
	File string `toml:"file"`
	// PreviousFile points at a library written by an earlier release.
	// When set, null provider fields are back-filled from it on load.
	PreviousFile string `toml:"previous_file"`
	// BackupRetentionDays controls how long timestamped backups are kept.
	BackupRetentionDays int `toml:"backup_retention_days"`
	// MaxDataAgeDays is the window during which a successful provider
	// fetch is considered fresh and not re-queried.
	MaxDataAgeDays int `toml:"max_data_age_days"`
}

// Catalog contains configuration for the external catalog cache and scraper.
type Catalog struct {
	// File is the catalog cache file; defaults to <data_dir>/catalog.cache.
	File             string   `toml:"file"`
	AllowedTypes     []string `toml:"allowed_types"`
	Scrape           bool     `toml:"scrape"`
	RateLimitSeconds int      `toml:"rate_limit_seconds"`
	CooldownDays     int      `toml:"cooldown_days"`
	MaxID            int64    `toml:"max_id"`
}

// Providers controls which data providers are registered and in what state.
type Providers struct {
	Enabled          []string `toml:"enabled"`
	CryoTankBaseURL  string   `toml:"cryotank_base_url"`
	SalenautsBaseURL string   `toml:"salenauts_base_url"`
}

// IGDB contains credentials for the IGDB API (twitch developer application).
type IGDB struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	BaseURL      string `toml:"base_url"`
	OAuthURL     string `toml:"oauth_url"`
}

// Steam contains configuration for the storefront API and play-time source.
type Steam struct {
	StoreAPIBaseURL string `toml:"store_api_base_url"`
	APIBaseURL      string `toml:"api_base_url"`
	APIKey          string `toml:"api_key"`
	SteamID         string `toml:"steam_id"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for gamedex.
//
// Configuration sections by subsystem:
//   - Paths: data, games, image cache, backup, and log directories
//   - Library: library file, migration source, freshness windows
//   - Catalog: catalog cache file and background scraper knobs
//   - Providers: which data providers are registered
//   - IGDB: IGDB API credentials
//   - Steam: storefront API endpoints and play-time credentials
//   - Logging: log format and level
type Config struct {
	Paths     Paths     `toml:"paths"`
	Library   Library   `toml:"library"`
	Catalog   Catalog   `toml:"catalog"`
	Providers Providers `toml:"providers"`
	IGDB      IGDB      `toml:"igdb"`
	Steam     Steam     `toml:"steam"`
	Logging   Logging   `toml:"logging"`
}

// SampleConfig returns the embedded sample configuration file contents.
func SampleConfig() string {
	return sampleConfig
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. The boolean reports
// whether a file existed at the resolved path.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath := DefaultConfigPath()

	projectPath, err := filepath.Abs("gamedex.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates every configured directory that gamedex writes to.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.DataDir, c.Paths.ImageCacheDir, c.Paths.BackupDir, c.Paths.LogDir}
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("ensure directory %s: %w", dir, err)
		}
	}
	return nil
}
