package config

import (
	"path/filepath"

	"github.com/adrg/xdg"
)

const (
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
	defaultBackupRetention  = 7
	defaultMaxDataAgeDays   = 30
	defaultRateLimitSeconds = 5
	defaultCooldownDays     = 7
	defaultCatalogMaxID     = 999999
	defaultSteamStoreAPI    = "https://store.steampowered.com"
	defaultSteamAPI         = "https://api.steampowered.com"
	defaultIGDBBaseURL      = "https://api.igdb.com/v4"
	defaultIGDBOAuthURL     = "https://id.twitch.tv/oauth2/token"
	defaultCryoTankURL      = "https://www.cryotank.net"
	defaultSalenautsURL     = "https://salenauts.com"
)

func defaultCatalogTypes() []string {
	return []string{"game", "dlc"}
}

func defaultProviders() []string {
	return []string{"user", "steam-info", "cryotank", "salenauts", "igdb"}
}

// DefaultConfigPath returns the absolute path to the default configuration
// file location.
func DefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, "gamedex", "config.toml")
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	dataDir := filepath.Join(xdg.DataHome, "gamedex")
	return Config{
		Paths: Paths{
			DataDir:       dataDir,
			ImageCacheDir: filepath.Join(xdg.CacheHome, "gamedex", "images"),
			BackupDir:     filepath.Join(dataDir, "backup"),
			LogDir:        filepath.Join(dataDir, "logs"),
		},
		Library: Library{
			BackupRetentionDays: defaultBackupRetention,
			MaxDataAgeDays:      defaultMaxDataAgeDays,
		},
		Catalog: Catalog{
			AllowedTypes:     defaultCatalogTypes(),
			RateLimitSeconds: defaultRateLimitSeconds,
			CooldownDays:     defaultCooldownDays,
			MaxID:            defaultCatalogMaxID,
		},
		Providers: Providers{
			Enabled:          defaultProviders(),
			CryoTankBaseURL:  defaultCryoTankURL,
			SalenautsBaseURL: defaultSalenautsURL,
		},
		IGDB: IGDB{
			BaseURL:  defaultIGDBBaseURL,
			OAuthURL: defaultIGDBOAuthURL,
		},
		Steam: Steam{
			StoreAPIBaseURL: defaultSteamStoreAPI,
			APIBaseURL:      defaultSteamAPI,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
