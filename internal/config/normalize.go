package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeLibrary(); err != nil {
		return err
	}
	if err := c.normalizeCatalog(); err != nil {
		return err
	}
	c.normalizeProviders()
	c.normalizeEndpoints()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if c.Paths.GamesDir != "" {
		if c.Paths.GamesDir, err = expandPath(c.Paths.GamesDir); err != nil {
			return fmt.Errorf("paths.games_dir: %w", err)
		}
	}
	if c.Paths.ImageCacheDir, err = expandPath(c.Paths.ImageCacheDir); err != nil {
		return fmt.Errorf("paths.image_cache_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.BackupDir) == "" {
		c.Paths.BackupDir = filepath.Join(c.Paths.DataDir, "backup")
	}
	if c.Paths.BackupDir, err = expandPath(c.Paths.BackupDir); err != nil {
		return fmt.Errorf("paths.backup_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = filepath.Join(c.Paths.DataDir, "logs")
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeLibrary() error {
	var err error
	if strings.TrimSpace(c.Library.File) == "" {
		c.Library.File = filepath.Join(c.Paths.DataDir, "library.json")
	}
	if c.Library.File, err = expandPath(c.Library.File); err != nil {
		return fmt.Errorf("library.file: %w", err)
	}
	if c.Library.PreviousFile != "" {
		if c.Library.PreviousFile, err = expandPath(c.Library.PreviousFile); err != nil {
			return fmt.Errorf("library.previous_file: %w", err)
		}
	}
	if c.Library.BackupRetentionDays <= 0 {
		c.Library.BackupRetentionDays = defaultBackupRetention
	}
	if c.Library.MaxDataAgeDays <= 0 {
		c.Library.MaxDataAgeDays = defaultMaxDataAgeDays
	}
	return nil
}

func (c *Config) normalizeCatalog() error {
	var err error
	if strings.TrimSpace(c.Catalog.File) == "" {
		c.Catalog.File = filepath.Join(c.Paths.DataDir, "catalog.cache")
	}
	if c.Catalog.File, err = expandPath(c.Catalog.File); err != nil {
		return fmt.Errorf("catalog.file: %w", err)
	}
	if len(c.Catalog.AllowedTypes) == 0 {
		c.Catalog.AllowedTypes = defaultCatalogTypes()
	}
	for i, t := range c.Catalog.AllowedTypes {
		c.Catalog.AllowedTypes[i] = strings.ToLower(strings.TrimSpace(t))
	}
	if c.Catalog.RateLimitSeconds <= 0 {
		c.Catalog.RateLimitSeconds = defaultRateLimitSeconds
	}
	if c.Catalog.CooldownDays <= 0 {
		c.Catalog.CooldownDays = defaultCooldownDays
	}
	if c.Catalog.MaxID <= 0 {
		c.Catalog.MaxID = defaultCatalogMaxID
	}
	return nil
}

func (c *Config) normalizeProviders() {
	if len(c.Providers.Enabled) == 0 {
		c.Providers.Enabled = defaultProviders()
	}
	for i, p := range c.Providers.Enabled {
		c.Providers.Enabled[i] = strings.ToLower(strings.TrimSpace(p))
	}
	if strings.TrimSpace(c.Providers.CryoTankBaseURL) == "" {
		c.Providers.CryoTankBaseURL = defaultCryoTankURL
	}
	if strings.TrimSpace(c.Providers.SalenautsBaseURL) == "" {
		c.Providers.SalenautsBaseURL = defaultSalenautsURL
	}
	c.Providers.CryoTankBaseURL = strings.TrimRight(c.Providers.CryoTankBaseURL, "/")
	c.Providers.SalenautsBaseURL = strings.TrimRight(c.Providers.SalenautsBaseURL, "/")
}

func (c *Config) normalizeEndpoints() {
	if strings.TrimSpace(c.Steam.StoreAPIBaseURL) == "" {
		c.Steam.StoreAPIBaseURL = defaultSteamStoreAPI
	}
	if strings.TrimSpace(c.Steam.APIBaseURL) == "" {
		c.Steam.APIBaseURL = defaultSteamAPI
	}
	if strings.TrimSpace(c.IGDB.BaseURL) == "" {
		c.IGDB.BaseURL = defaultIGDBBaseURL
	}
	if strings.TrimSpace(c.IGDB.OAuthURL) == "" {
		c.IGDB.OAuthURL = defaultIGDBOAuthURL
	}
	c.Steam.StoreAPIBaseURL = strings.TrimRight(c.Steam.StoreAPIBaseURL, "/")
	c.Steam.APIBaseURL = strings.TrimRight(c.Steam.APIBaseURL, "/")
	c.IGDB.BaseURL = strings.TrimRight(c.IGDB.BaseURL, "/")
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", nil
	}
	if trimmed == "~" || strings.HasPrefix(trimmed, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if trimmed == "~" {
			trimmed = home
		} else {
			trimmed = filepath.Join(home, trimmed[2:])
		}
	}
	abs, err := filepath.Abs(trimmed)
	if err != nil {
		return "", fmt.Errorf("absolutize %s: %w", trimmed, err)
	}
	return abs, nil
}
