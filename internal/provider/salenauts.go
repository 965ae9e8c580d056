package provider

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"gamedex/internal/imagecache"
	"gamedex/internal/logging"
	"gamedex/internal/sourcedata"
	"gamedex/internal/title"
)

// Salenauts scrapes a deal-tracker site for game icons: the search page
// lists title links, the game page carries the icon.
type Salenauts struct {
	baseURL    string
	images     *imagecache.Store
	httpClient *http.Client
	logger     *slog.Logger
}

// NewSalenauts builds the deal-tracker scraping provider.
func NewSalenauts(baseURL string, images *imagecache.Store, logger *slog.Logger) *Salenauts {
	return &Salenauts{
		baseURL:    strings.TrimRight(baseURL, "/"),
		images:     images,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     logging.NewComponentLogger(logger, "provider."+sourcedata.TypeSalenauts),
	}
}

func (p *Salenauts) Type() string { return sourcedata.TypeSalenauts }

func (p *Salenauts) searchURL(gameTitle string) string {
	return p.baseURL + "/pl/games/?Game%5Btitle%5D=" + url.QueryEscape(gameTitle)
}

func (p *Salenauts) GetData(ctx context.Context, gameTitle string, _ bool) (sourcedata.Item, error) {
	page, err := p.fetchPage(ctx, p.searchURL(gameTitle))
	if err != nil {
		return nil, err
	}

	links := p.titleLinks(page)
	candidates := make([]string, len(links))
	for i, link := range links {
		candidates[i] = title.Normalize(link.title)
	}
	match, ok := title.FindBestMatch(gameTitle, candidates)
	if !ok {
		return nil, nil
	}
	matched := links[match.Index]
	p.logger.Debug("matched game page",
		logging.String(logging.FieldEventType, "salenauts_matched"),
		logging.String(logging.FieldTitle, gameTitle),
		logging.Int("candidates", len(links)),
		logging.Int("distance", match.Distance))

	gamePage, err := p.fetchPage(ctx, matched.url)
	if err != nil {
		return nil, err
	}
	iconURL := attrValue(gamePage, `<div class="game-icon`, "src")
	if iconURL == "" {
		return nil, nil
	}
	if !strings.HasPrefix(iconURL, "http") {
		iconURL = p.baseURL + iconURL
	}

	item := &sourcedata.Salenauts{
		Source: matched.title,
		URL:    matched.url,
		Cover:  &sourcedata.ImageRef{SourceURL: iconURL},
	}
	if err := p.images.EnsureLocal(ctx, item.Cover, sourcedata.TypeSalenauts, gameTitle); err != nil {
		return nil, err
	}
	return item, nil
}

type titleLink struct {
	title string
	url   string
}

// titleLinks pulls the per-game anchor rows out of the search results
// page. Each row looks like:
//
//	<div class="title"><a href="/pl/game/x"><span>...</span>Title</a></div>
func (p *Salenauts) titleLinks(page string) []titleLink {
	var links []titleLink
	rest := page
	for {
		rowStart := strings.Index(rest, `<div class="title">`)
		if rowStart < 0 {
			return links
		}
		rest = rest[rowStart:]
		rowEnd := strings.Index(rest, "</div>")
		if rowEnd < 0 {
			return links
		}
		row := rest[:rowEnd]
		rest = rest[rowEnd:]

		href := attrValue(row, "<a ", "href")
		if href == "" {
			continue
		}
		if !strings.HasPrefix(href, "http") {
			href = p.baseURL + href
		}

		linkTitle := row
		if spanEnd := strings.LastIndex(linkTitle, "</span>"); spanEnd >= 0 {
			linkTitle = linkTitle[spanEnd+len("</span>"):]
		} else if tagEnd := strings.LastIndex(linkTitle, ">"); tagEnd >= 0 {
			linkTitle = linkTitle[tagEnd+1:]
		}
		linkTitle = strings.TrimSpace(strings.ReplaceAll(linkTitle, "</a>", ""))
		if linkTitle == "" {
			continue
		}
		links = append(links, titleLink{title: linkTitle, url: href})
	}
}

func (p *Salenauts) fetchPage(ctx context.Context, pageURL string) (string, error) {
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
		return "", fmt.Errorf("deal tracker returned %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", fmt.Errorf("read page: %w", err)
	}
	return string(body), nil
}
