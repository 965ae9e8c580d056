package playtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client queries the Steam Web API for per-app play time, used to
// reconcile locally tracked sessions against the authoritative counter.
type Client struct {
	baseURL    string
	apiKey     string
	steamID    string
	httpClient *http.Client
}

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

// New creates a play-time client. Both the API key and the account id are
// required; callers without credentials should skip reconciliation
// entirely instead of constructing a client.
func New(baseURL, apiKey, steamID string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("steam api base url required")
	}
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("steam api key required")
	}
	steamID = strings.TrimSpace(steamID)
	if steamID == "" {
		return nil, errors.New("steam account id required")
	}
	client := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		steamID:    steamID,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

type ownedGamesResponse struct {
	Response struct {
		GameCount int `json:"game_count"`
		Games     []struct {
			AppID           int64 `json:"appid"`
			PlaytimeForever int   `json:"playtime_forever"`
		} `json:"games"`
	} `json:"response"`
}

// OwnedGames returns total play time in minutes per owned app id.
func (c *Client) OwnedGames(ctx context.Context) (map[int64]int, error) {
	endpoint, err := url.Parse(c.baseURL + "/IPlayerService/GetOwnedGames/v1/")
	if err != nil {
		return nil, fmt.Errorf("parse api url: %w", err)
	}
	params := url.Values{}
	params.Set("key", c.apiKey)
	params.Set("steamid", c.steamID)
	params.Set("include_played_free_games", "1")
	params.Set("format", "json")
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
		return nil, fmt.Errorf("owned games returned %d (latency=%v)", resp.StatusCode, latency)
	}

	var payload ownedGamesResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode owned games response: %w", err)
	}

	minutes := make(map[int64]int, len(payload.Response.Games))
	for _, game := range payload.Response.Games {
		if game.AppID > 0 {
			minutes[game.AppID] = game.PlaytimeForever
		}
	}
	return minutes, nil
}
