package provider

import (
	"context"
	"log/slog"

	"gamedex/internal/imagecache"
	"gamedex/internal/logging"
	"gamedex/internal/provider/igdb"
	"gamedex/internal/sourcedata"
	"gamedex/internal/title"
)

// With more hits than this the search is too ambiguous to trust a fuzzy pick.
const igdbMaxSearchResults = 10

// IGDBSource fetches game metadata from the IGDB API: rating, summary,
// developer, genres, completion estimates and cover art.
type IGDBSource struct {
	client *igdb.Client
	images *imagecache.Store
	logger *slog.Logger
}

// NewIGDBSource builds the IGDB provider.
func NewIGDBSource(client *igdb.Client, images *imagecache.Store, logger *slog.Logger) *IGDBSource {
	return &IGDBSource{
		client: client,
		images: images,
		logger: logging.NewComponentLogger(logger, "provider."+sourcedata.TypeIGDB),
	}
}

func (p *IGDBSource) Type() string { return sourcedata.TypeIGDB }

func (p *IGDBSource) GetData(ctx context.Context, gameTitle string, _ bool) (sourcedata.Item, error) {
	results, err := p.client.SearchGames(ctx, gameTitle)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 || len(results) >= igdbMaxSearchResults {
		return nil, nil
	}

	names := make([]string, len(results))
	for i, r := range results {
		names[i] = title.Normalize(r.Name)
	}
	match, ok := title.FindBestMatch(gameTitle, names)
	if !ok {
		p.logger.Debug("no suitable match",
			logging.String(logging.FieldEventType, "igdb_no_match"),
			logging.String(logging.FieldTitle, gameTitle),
			logging.Int("candidates", len(results)))
		return nil, nil
	}
	matched := results[match.Index]
	p.logger.Debug("matched search result",
		logging.String(logging.FieldEventType, "igdb_matched"),
		logging.String(logging.FieldTitle, gameTitle),
		logging.String("source_title", matched.Name),
		logging.Int("distance", match.Distance))

	game, err := p.client.GameDetails(ctx, matched.ID)
	if err != nil {
		return nil, err
	}
	if game == nil {
		return nil, nil
	}

	item := &sourcedata.IGDB{
		Source:  matched.Name,
		ID:      game.ID,
		Summary: game.Summary,
	}
	if game.TotalRating > 0 {
		rating := int(game.TotalRating)
		item.Rating = &rating
	}

	// Reference lookups are best-effort; a failed side fetch costs one
	// optional field, not the whole payload.
	for _, genreID := range game.Genres {
		name, err := p.client.GenreName(ctx, genreID)
		if err != nil {
			p.logger.Warn("genre lookup failed",
				logging.String(logging.FieldEventType, "igdb_reference_failed"),
				logging.String(logging.FieldTitle, gameTitle),
				logging.Error(err))
			break
		}
		if name != "" {
			item.Genres = append(item.Genres, name)
		}
	}
	if developer, err := p.client.Developer(ctx, game.InvolvedCompanies); err == nil {
		item.Developer = developer
	} else {
		p.logger.Warn("developer lookup failed",
			logging.String(logging.FieldEventType, "igdb_reference_failed"),
			logging.String(logging.FieldTitle, gameTitle),
			logging.Error(err))
	}
	if game.TimeToBeat != 0 {
		if ttb, err := p.client.TimesToBeat(ctx, game.TimeToBeat); err == nil && ttb != nil {
			item.TimeToBeat = timeToBeat(ttb)
		}
	}

	if game.Cover != 0 {
		coverURL, err := p.client.CoverURL(ctx, game.Cover)
		if err == nil && coverURL != "" {
			item.Cover = &sourcedata.ImageRef{SourceURL: coverURL}
			if err := p.images.EnsureLocal(ctx, item.Cover, sourcedata.TypeIGDB, gameTitle); err != nil {
				p.logger.Warn("cover download failed",
					logging.String(logging.FieldEventType, "image_download_failed"),
					logging.String(logging.FieldTitle, gameTitle),
					logging.Error(err))
			}
		}
	}
	return item, nil
}

func timeToBeat(ttb *igdb.TimeToBeat) *sourcedata.TimeToBeat {
	result := &sourcedata.TimeToBeat{}
	if ttb.Completely > 0 {
		v := ttb.Completely
		result.Complete = &v
	}
	if ttb.Normally > 0 {
		v := ttb.Normally
		result.Normal = &v
	}
	if ttb.Hastily > 0 {
		v := ttb.Hastily
		result.Fast = &v
	}
	if result.Complete == nil && result.Normal == nil && result.Fast == nil {
		return nil
	}
	return result
}
