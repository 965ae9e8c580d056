package config

import (
	"errors"
	"fmt"
	"slices"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateCatalog(); err != nil {
		return err
	}
	if err := c.validateProviders(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.DataDir == "" {
		return errors.New("paths.data_dir must be set")
	}
	if c.Paths.ImageCacheDir == "" {
		return errors.New("paths.image_cache_dir must be set")
	}
	return nil
}

func (c *Config) validateCatalog() error {
	if c.Catalog.MaxID < 10 {
		return errors.New("catalog.max_id must be at least 10")
	}
	return nil
}

var knownProviders = []string{"user", "steam-info", "cryotank", "salenauts", "igdb"}

func (c *Config) validateProviders() error {
	for _, p := range c.Providers.Enabled {
		if !slices.Contains(knownProviders, p) {
			return fmt.Errorf("providers.enabled: unknown provider %q", p)
		}
	}
	if slices.Contains(c.Providers.Enabled, "igdb") {
		// IGDB without credentials runs in degraded mode; it is not an
		// error here because the provider simply never returns data.
		_ = c.IGDB
	}
	return nil
}
