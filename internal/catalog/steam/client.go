package steam

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"gamedex/internal/catalog"
)

// searchItem is a single match in the store search response.
type searchItem struct {
	ID   int64  `json:"id"`
	Type string `json:"type"`
	Name string `json:"name"`
}

type searchResponse struct {
	Total int          `json:"total"`
	Items []searchItem `json:"items"`
}

// Category is a store feature flag attached to an app, such as controller
// support or multiplayer.
type Category struct {
	ID          int    `json:"id"`
	Description string `json:"description"`
}

// Genre describes one store genre tag.
type Genre struct {
	ID          string `json:"id"`
	Description string `json:"description"`
}

// Metacritic carries the aggregated review score, when the store has one.
type Metacritic struct {
	Score int    `json:"score"`
	URL   string `json:"url"`
}

// AppDetails is the full store payload for a single app id.
type AppDetails struct {
	Type              string      `json:"type"`
	Name              string      `json:"name"`
	ShortDescription  string      `json:"short_description"`
	HeaderImage       string      `json:"header_image"`
	ControllerSupport string      `json:"controller_support"`
	Developers        []string    `json:"developers"`
	Categories        []Category  `json:"categories"`
	Genres            []Genre     `json:"genres"`
	Metacritic        *Metacritic `json:"metacritic"`
}

// HasFullControllerSupport reports whether the app advertises full
// controller support. The store omits the field entirely for apps with
// partial or no support, so absence means unknown rather than false.
func (d *AppDetails) HasFullControllerSupport() bool {
	return d.ControllerSupport == "full"
}

// GenreNames flattens the genre tags into plain strings.
func (d *AppDetails) GenreNames() []string {
	if len(d.Genres) == 0 {
		return nil
	}
	names := make([]string, 0, len(d.Genres))
	for _, g := range d.Genres {
		if g.Description != "" {
			names = append(names, g.Description)
		}
	}
	return names
}

type detailsEnvelope struct {
	Success bool        `json:"success"`
	Data    *AppDetails `json:"data"`
}

// Client provides access to the Steam storefront API for catalog searches
// and per-app detail lookups.
type Client struct {
	baseURL    string
	country    string
	language   string
	httpClient *http.Client
}

var _ catalog.Remote = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithLocale overrides the store country and language codes.
func WithLocale(country, language string) Option {
	return func(c *Client) {
		if country != "" {
			c.country = country
		}
		if language != "" {
			c.language = language
		}
	}
}

// New creates a Steam storefront client.
func New(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("steam store base url required")
	}
	client := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		country:    "us",
		language:   "en",
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Search queries the storefront search endpoint and returns all matches as
// catalog entries. Type filtering is the caller's concern.
func (c *Client) Search(ctx context.Context, query string) ([]catalog.Entry, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("query must not be empty")
	}
	endpoint, err := url.Parse(c.baseURL + "/api/storesearch/")
	if err != nil {
		return nil, fmt.Errorf("parse store url: %w", err)
	}
	params := url.Values{}
	params.Set("term", query)
	params.Set("cc", c.country)
	params.Set("l", c.language)
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return nil, fmt.Errorf("execute request (latency=%v): %w", latency, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("store search returned %d (latency=%v)", resp.StatusCode, latency)
	}

	var payload searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode store search response: %w", err)
	}

	entries := make([]catalog.Entry, 0, len(payload.Items))
	for _, item := range payload.Items {
		if item.ID <= 0 || item.Name == "" {
			continue
		}
		typeTag := item.Type
		// The search endpoint labels everything "app"; the details
		// endpoint carries the real type tag.
		if typeTag == "" || typeTag == "app" {
			typeTag = "game"
		}
		entries = append(entries, catalog.NewEntry(item.ID, typeTag, item.Name))
	}
	return entries, nil
}

// Lookup fetches the store details for a single app id and maps them to a
// catalog entry. A nil entry with a nil error means the id does not exist
// in the store.
func (c *Client) Lookup(ctx context.Context, id int64) (*catalog.Entry, error) {
	details, err := c.Details(ctx, id)
	if err != nil {
		return nil, err
	}
	if details == nil {
		return nil, nil
	}
	entry := catalog.NewEntry(id, details.Type, details.Name)
	return &entry, nil
}

// Details fetches the full store payload for a single app id. A nil result
// with a nil error means the store has no such app.
func (c *Client) Details(ctx context.Context, id int64) (*AppDetails, error) {
	if id <= 0 {
		return nil, errors.New("app id must be positive")
	}
	endpoint, err := url.Parse(c.baseURL + "/api/appdetails")
	if err != nil {
		return nil, fmt.Errorf("parse store url: %w", err)
	}
	params := url.Values{}
	params.Set("appids", strconv.FormatInt(id, 10))
	params.Set("cc", c.country)
	params.Set("l", c.language)
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return nil, fmt.Errorf("execute request (latency=%v): %w", latency, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("store details returned %d (latency=%v)", resp.StatusCode, latency)
	}

	// The response is keyed by the requested app id.
	var payload map[string]detailsEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode store details response: %w", err)
	}
	envelope, ok := payload[strconv.FormatInt(id, 10)]
	if !ok || !envelope.Success || envelope.Data == nil {
		return nil, nil
	}
	return envelope.Data, nil
}
