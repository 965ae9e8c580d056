package provider

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"gamedex/internal/imagecache"
	"gamedex/internal/logging"
	"gamedex/internal/sourcedata"
	"gamedex/internal/title"
)

// CryoTank scrapes a community grid-image gallery for cover art. The site
// has no API; matching works by comparing image file names against the
// game title.
type CryoTank struct {
	baseURL    string
	images     *imagecache.Store
	httpClient *http.Client
	logger     *slog.Logger
}

// NewCryoTank builds the gallery scraping provider.
func NewCryoTank(baseURL string, images *imagecache.Store, logger *slog.Logger) *CryoTank {
	return &CryoTank{
		baseURL:    strings.TrimRight(baseURL, "/"),
		images:     images,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     logging.NewComponentLogger(logger, "provider."+sourcedata.TypeCryoTank),
	}
}

func (p *CryoTank) Type() string { return sourcedata.TypeCryoTank }

func (p *CryoTank) searchURL(gameTitle string) string {
	return p.baseURL + "/?s=" + url.QueryEscape(gameTitle)
}

func (p *CryoTank) GetData(ctx context.Context, gameTitle string, _ bool) (sourcedata.Item, error) {
	page, err := p.fetchPage(ctx, p.searchURL(gameTitle))
	if err != nil {
		return nil, err
	}

	imageURLs := imageSources(page)
	candidates := make([]string, len(imageURLs))
	for i, imageURL := range imageURLs {
		name := path.Base(imageURL)
		name = strings.TrimSuffix(name, path.Ext(name))
		candidates[i] = title.Normalize(name)
	}
	match, ok := title.FindBestMatch(gameTitle, candidates)
	if !ok {
		return nil, nil
	}
	p.logger.Debug("matched gallery image",
		logging.String(logging.FieldEventType, "cryotank_matched"),
		logging.String(logging.FieldTitle, gameTitle),
		logging.Int("candidates", len(imageURLs)),
		logging.Int("distance", match.Distance))

	item := &sourcedata.CryoTank{
		Source: gameTitle,
		Cover:  &sourcedata.ImageRef{SourceURL: imageURLs[match.Index]},
	}
	if err := p.images.EnsureLocal(ctx, item.Cover, sourcedata.TypeCryoTank, gameTitle); err != nil {
		return nil, err
	}
	return item, nil
}

func (p *CryoTank) fetchPage(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gallery returned %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", fmt.Errorf("read gallery page: %w", err)
	}
	return string(body), nil
}
