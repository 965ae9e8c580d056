package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"gamedex/internal/catalog"
	"gamedex/internal/catalog/steam"
	"gamedex/internal/config"
	"gamedex/internal/imagecache"
	"gamedex/internal/library"
	"gamedex/internal/logging"
	"gamedex/internal/playtime"
	"gamedex/internal/provider"
	"gamedex/internal/provider/igdb"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// services bundles everything a command touches. Construction order
// matters: the catalog and providers feed the library store.
type services struct {
	cfg      *config.Config
	logger   *slog.Logger
	catalog  *catalog.Cache
	images   *imagecache.Store
	registry *provider.Registry
	store    *library.Store
}

func (s *services) close() {
	if s.store != nil {
		s.store.Close()
	}
	if s.catalog != nil {
		s.catalog.Close()
	}
}

// withServices builds the full stack, runs fn, and tears it down. With
// scrape set the catalog background worker starts immediately.
func (c *commandContext) withServices(scrape bool, fn func(*services) error) error {
	svc, err := c.buildServices(scrape)
	if err != nil {
		return err
	}
	defer svc.close()
	return fn(svc)
}

func (c *commandContext) buildServices(scrape bool) (*services, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(logging.Options{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		OutputPaths: []string{filepath.Join(cfg.Paths.LogDir, "gamedex.log")},
	})
	if err != nil {
		return nil, fmt.Errorf("configure logging: %w", err)
	}

	storeClient, err := steam.New(cfg.Steam.StoreAPIBaseURL)
	if err != nil {
		return nil, fmt.Errorf("storefront client: %w", err)
	}

	if err := ensureFile(cfg.Catalog.File); err != nil {
		return nil, fmt.Errorf("catalog cache file: %w", err)
	}
	cat, err := catalog.New(catalog.Options{
		Path:         cfg.Catalog.File,
		AllowedTypes: cfg.Catalog.AllowedTypes,
		Remote:       storeClient,
		Logger:       logger,
		Scrape:       scrape,
		RateLimit:    time.Duration(cfg.Catalog.RateLimitSeconds) * time.Second,
		Cooldown:     time.Duration(cfg.Catalog.CooldownDays) * 24 * time.Hour,
		MaxID:        cfg.Catalog.MaxID,
	})
	if err != nil {
		return nil, fmt.Errorf("open catalog cache: %w", err)
	}

	images, err := imagecache.New(cfg.Paths.ImageCacheDir, logger)
	if err != nil {
		cat.Close()
		return nil, fmt.Errorf("open image cache: %w", err)
	}

	registry := provider.NewRegistry(logger, c.buildProviders(cfg, cat, storeClient, images, logger)...)

	var playTimes *playtime.Client
	if cfg.Steam.APIKey != "" && cfg.Steam.SteamID != "" {
		playTimes, err = playtime.New(cfg.Steam.APIBaseURL, cfg.Steam.APIKey, cfg.Steam.SteamID)
		if err != nil {
			cat.Close()
			return nil, fmt.Errorf("play-time client: %w", err)
		}
	}

	store, err := library.Open(library.Options{
		Path:            cfg.Library.File,
		PreviousPath:    cfg.Library.PreviousFile,
		GamesDir:        cfg.Paths.GamesDir,
		BackupDir:       cfg.Paths.BackupDir,
		BackupRetention: time.Duration(cfg.Library.BackupRetentionDays) * 24 * time.Hour,
		MaxDataAge:      time.Duration(cfg.Library.MaxDataAgeDays) * 24 * time.Hour,
		Registry:        registry,
		Images:          images,
		PlayTimes:       playTimes,
		Logger:          logger,
	})
	if err != nil {
		cat.Close()
		return nil, fmt.Errorf("open library: %w", err)
	}

	return &services{
		cfg:      cfg,
		logger:   logger,
		catalog:  cat,
		images:   images,
		registry: registry,
		store:    store,
	}, nil
}

func (c *commandContext) buildProviders(cfg *config.Config, cat *catalog.Cache, storeClient *steam.Client, images *imagecache.Store, logger *slog.Logger) []provider.Provider {
	var providers []provider.Provider
	for _, name := range cfg.Providers.Enabled {
		switch name {
		case "user":
			providers = append(providers, provider.NewUserSource(images))
		case "steam-info":
			providers = append(providers, provider.NewSteamInfo(cat, storeClient, images, logger))
		case "cryotank":
			providers = append(providers, provider.NewCryoTank(cfg.Providers.CryoTankBaseURL, images, logger))
		case "salenauts":
			providers = append(providers, provider.NewSalenauts(cfg.Providers.SalenautsBaseURL, images, logger))
		case "igdb":
			if cfg.IGDB.ClientID == "" || cfg.IGDB.ClientSecret == "" {
				logger.Warn("igdb enabled without credentials, provider skipped",
					logging.String(logging.FieldEventType, "provider_skipped"),
					logging.String(logging.FieldProvider, "igdb"))
				continue
			}
			client, err := igdb.New(cfg.IGDB.ClientID, cfg.IGDB.ClientSecret, cfg.IGDB.BaseURL, cfg.IGDB.OAuthURL)
			if err != nil {
				logger.Warn("igdb client unusable, provider skipped",
					logging.String(logging.FieldEventType, "provider_skipped"),
					logging.String(logging.FieldProvider, "igdb"),
					logging.Error(err))
				continue
			}
			providers = append(providers, provider.NewIGDBSource(client, images, logger))
		}
	}
	return providers
}

// resolveGame maps a title argument to its record id, erroring with a
// hint when the title is unknown.
func resolveGame(store *library.Store, title string) (string, error) {
	id := library.GameID(title)
	if _, ok := store.Get(id); ok {
		return id, nil
	}
	return "", fmt.Errorf("no game titled %q in the library (titles are exact, try `gamedex list`)", title)
}

func ensureFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, nil, 0o644)
}
