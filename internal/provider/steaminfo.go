package provider

import (
	"context"
	"log/slog"

	"gamedex/internal/catalog"
	"gamedex/internal/catalog/steam"
	"gamedex/internal/imagecache"
	"gamedex/internal/logging"
	"gamedex/internal/sourcedata"
)

// SteamInfo resolves a title through the catalog cache and fetches the
// storefront details for the matched app: description, review score,
// controller support and header art.
type SteamInfo struct {
	catalog *catalog.Cache
	store   *steam.Client
	images  *imagecache.Store
	logger  *slog.Logger
}

// NewSteamInfo builds the storefront provider.
func NewSteamInfo(cache *catalog.Cache, store *steam.Client, images *imagecache.Store, logger *slog.Logger) *SteamInfo {
	return &SteamInfo{
		catalog: cache,
		store:   store,
		images:  images,
		logger:  logging.NewComponentLogger(logger, "provider."+sourcedata.TypeSteamInfo),
	}
}

func (p *SteamInfo) Type() string { return sourcedata.TypeSteamInfo }

func (p *SteamInfo) GetData(ctx context.Context, gameTitle string, ignoreLocalCache bool) (sourcedata.Item, error) {
	entry, err := p.catalog.GetByTitle(ctx, gameTitle, ignoreLocalCache)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, nil
	}

	details, err := p.store.Details(ctx, entry.ID)
	if err != nil {
		return nil, err
	}
	if details == nil {
		return nil, nil
	}

	item := &sourcedata.SteamInfo{
		Source:  entry.Title,
		AppID:   entry.ID,
		Summary: stripTags(details.ShortDescription),
	}
	if details.Metacritic != nil {
		score := details.Metacritic.Score
		item.Rating = &score
	}
	if details.ControllerSupport != "" {
		full := details.HasFullControllerSupport()
		item.Gamepad = &full
	}
	if details.HeaderImage != "" {
		item.Cover = &sourcedata.ImageRef{SourceURL: details.HeaderImage}
		if err := p.images.EnsureLocal(ctx, item.Cover, sourcedata.TypeSteamInfo, gameTitle); err != nil {
			// Keep the URL so a later refresh can retry the download.
			p.logger.Warn("cover download failed",
				logging.String(logging.FieldEventType, "image_download_failed"),
				logging.String(logging.FieldTitle, gameTitle),
				logging.Error(err))
		}
	}
	return item, nil
}
