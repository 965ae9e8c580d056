package igdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

const tokenType = "Bearer"

// Client talks to the IGDB v4 API, authenticating via the Twitch
// client-credentials flow. Tokens are cached and refreshed transparently
// when they expire.
type Client struct {
	clientID     string
	clientSecret string
	baseURL      string
	oauthURL     string
	httpClient   *http.Client

	tokenMu     sync.Mutex
	accessToken string
	tokenExpiry time.Time

	genreMu    sync.Mutex
	genreNames map[int64]string
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

// New creates an IGDB client. Both halves of the credential pair are
// required.
func New(clientID, clientSecret, baseURL, oauthURL string, opts ...Option) (*Client, error) {
	clientID = strings.TrimSpace(clientID)
	clientSecret = strings.TrimSpace(clientSecret)
	if clientID == "" || clientSecret == "" {
		return nil, errors.New("igdb client credentials required")
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("igdb base url required")
	}
	oauthURL = strings.TrimSpace(oauthURL)
	if oauthURL == "" {
		return nil, errors.New("igdb oauth url required")
	}
	client := &Client{
		clientID:     clientID,
		clientSecret: clientSecret,
		baseURL:      strings.TrimRight(baseURL, "/"),
		oauthURL:     oauthURL,
		httpClient:   &http.Client{Timeout: 10 * time.Second},
		genreNames:   map[int64]string{},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
	TokenType   string `json:"token_type"`
}

// token returns a valid access token, requesting a fresh one when the
// cached token is absent or expired.
func (c *Client) token(ctx context.Context) (string, error) {
	c.tokenMu.Lock()
	defer c.tokenMu.Unlock()

	if c.accessToken != "" && time.Now().Before(c.tokenExpiry) {
		return c.accessToken, nil
	}

	params := url.Values{}
	params.Set("client_id", c.clientID)
	params.Set("client_secret", c.clientSecret)
	params.Set("grant_type", "client_credentials")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.oauthURL+"?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("build token request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request access token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token endpoint returned %d", resp.StatusCode)
	}
	var payload tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}
	if payload.AccessToken == "" {
		return "", errors.New("token endpoint returned empty token")
	}

	c.accessToken = payload.AccessToken
	// Renew a minute early so an in-flight query never carries a token
	// that expires mid-request.
	c.tokenExpiry = time.Now().Add(time.Duration(payload.ExpiresIn)*time.Second - time.Minute)
	return c.accessToken, nil
}

// query posts one Apicalypse query to an endpoint and decodes the JSON
// array response into result.
func (c *Client) query(ctx context.Context, endpoint, body string, result any) error {
	token, err := c.token(ctx)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+endpoint, strings.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Client-ID", c.clientID)
	req.Header.Set("Authorization", tokenType+" "+token)

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return fmt.Errorf("execute request (latency=%v): %w", latency, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s returned %d: %s (latency=%v)", endpoint, resp.StatusCode, strings.TrimSpace(string(detail)), latency)
	}
	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("decode %s response: %w", endpoint, err)
	}
	return nil
}

// SearchResult is one row of a game search.
type SearchResult struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// SearchGames searches by title, excluding edition re-releases.
func (c *Client) SearchGames(ctx context.Context, gameTitle string) ([]SearchResult, error) {
	body := fmt.Sprintf("fields name; search %q; where version_parent = null;", strings.ToLower(gameTitle))
	var results []SearchResult
	if err := c.query(ctx, "games", body, &results); err != nil {
		return nil, err
	}
	return results, nil
}

// Game is the detail payload for one game id. Reference fields hold ids
// into other endpoints.
type Game struct {
	ID                int64   `json:"id"`
	Name              string  `json:"name"`
	Summary           string  `json:"summary"`
	TotalRating       float64 `json:"total_rating"`
	Cover             int64   `json:"cover"`
	Genres            []int64 `json:"genres"`
	InvolvedCompanies []int64 `json:"involved_companies"`
	TimeToBeat        int64   `json:"time_to_beat"`
}

// GameDetails fetches the detail payload for one game id.
func (c *Client) GameDetails(ctx context.Context, id int64) (*Game, error) {
	body := fmt.Sprintf("fields name, cover, genres, total_rating, summary, time_to_beat, involved_companies; where id = %d;", id)
	var results []*Game
	if err := c.query(ctx, "games", body, &results); err != nil {
		return nil, err
	}
	if len(results) != 1 {
		return nil, nil
	}
	return results[0], nil
}

// TimeToBeat holds completion estimates in seconds; zero means no figure.
type TimeToBeat struct {
	Completely int `json:"completely"`
	Normally   int `json:"normally"`
	Hastily    int `json:"hastly"`
}

// TimesToBeat fetches completion estimates by reference id.
func (c *Client) TimesToBeat(ctx context.Context, id int64) (*TimeToBeat, error) {
	body := fmt.Sprintf("fields *; where id = %d;", id)
	var results []*TimeToBeat
	if err := c.query(ctx, "time_to_beats", body, &results); err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return results[0], nil
}

// GenreName resolves a genre id to its display name, memoizing results for
// the lifetime of the client since the genre table is effectively static.
func (c *Client) GenreName(ctx context.Context, id int64) (string, error) {
	c.genreMu.Lock()
	if name, ok := c.genreNames[id]; ok {
		c.genreMu.Unlock()
		return name, nil
	}
	c.genreMu.Unlock()

	body := fmt.Sprintf("fields name; where id = %d;", id)
	var results []struct {
		Name string `json:"name"`
	}
	if err := c.query(ctx, "genres", body, &results); err != nil {
		return "", err
	}
	if len(results) == 0 {
		return "", nil
	}

	c.genreMu.Lock()
	c.genreNames[id] = results[0].Name
	c.genreMu.Unlock()
	return results[0].Name, nil
}

// Developer walks the involved-companies references and returns the name
// of the first company flagged as the developer.
func (c *Client) Developer(ctx context.Context, involvedCompanyIDs []int64) (string, error) {
	for _, icID := range involvedCompanyIDs {
		body := fmt.Sprintf("fields company, developer; where id = %d;", icID)
		var involvements []struct {
			Company   int64 `json:"company"`
			Developer bool  `json:"developer"`
		}
		if err := c.query(ctx, "involved_companies", body, &involvements); err != nil {
			return "", err
		}
		if len(involvements) == 0 || !involvements[0].Developer {
			continue
		}

		body = fmt.Sprintf("fields name; where id = %d;", involvements[0].Company)
		var companies []struct {
			Name string `json:"name"`
		}
		if err := c.query(ctx, "companies", body, &companies); err != nil {
			return "", err
		}
		if len(companies) > 0 {
			return companies[0].Name, nil
		}
	}
	return "", nil
}

// CoverURL resolves a cover reference id to a full-resolution image URL.
func (c *Client) CoverURL(ctx context.Context, coverID int64) (string, error) {
	body := fmt.Sprintf("fields id, url, width, height; where id = %d;", coverID)
	var results []struct {
		URL string `json:"url"`
	}
	if err := c.query(ctx, "covers", body, &results); err != nil {
		return "", err
	}
	if len(results) == 0 || results[0].URL == "" {
		return "", nil
	}
	// The API hands back protocol-relative thumbnail URLs.
	coverURL := strings.Replace(results[0].URL, "t_thumb", "t_original", 1)
	if strings.HasPrefix(coverURL, "//") {
		coverURL = "https:" + coverURL
	}
	return coverURL, nil
}
