package steam_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"gamedex/internal/catalog/steam"
	"gamedex/internal/config"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) { return f(req) }

func TestSearchMapsItemsToEntries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/storesearch/" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("term"); got != "portal" {
			t.Errorf("unexpected term %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"total":2,"items":[
			{"id":400,"type":"app","name":"Portal"},
			{"id":620,"type":"app","name":"Portal 2"},
			{"id":0,"type":"app","name":"bogus"}
		]}`))
	}))
	defer server.Close()

	client, err := steam.New(server.URL)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	entries, err := client.Search(context.Background(), "portal")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[1].ID != 620 || entries[1].Type != "game" || entries[1].NormalizedTitle != "portal 2" {
		t.Fatalf("unexpected entry %+v", entries[1])
	}
}

func TestDefaultBaseURLTargetsStorefrontEndpoints(t *testing.T) {
	var captured []*url.URL
	transport := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		captured = append(captured, req.URL)
		body := `{"total":0,"items":[]}`
		if strings.Contains(req.URL.Path, "appdetails") {
			body = `{"620":{"success":false}}`
		}
		return &http.Response{
			StatusCode: http.StatusOK,
			Header:     http.Header{"Content-Type": []string{"application/json"}},
			Body:       io.NopCloser(strings.NewReader(body)),
		}, nil
	})

	client, err := steam.New(config.Default().Steam.StoreAPIBaseURL,
		steam.WithHTTPClient(&http.Client{Transport: transport}))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := client.Search(context.Background(), "portal"); err != nil {
		t.Fatalf("Search: %v", err)
	}
	if _, err := client.Details(context.Background(), 620); err != nil {
		t.Fatalf("Details: %v", err)
	}

	if len(captured) != 2 {
		t.Fatalf("expected 2 requests, got %d", len(captured))
	}
	if captured[0].Host != "store.steampowered.com" {
		t.Fatalf("unexpected host %q", captured[0].Host)
	}
	if captured[0].Path != "/api/storesearch/" {
		t.Fatalf("search path %q, want /api/storesearch/", captured[0].Path)
	}
	if captured[1].Path != "/api/appdetails" {
		t.Fatalf("details path %q, want /api/appdetails", captured[1].Path)
	}
}

func TestLookupReturnsNilForUnknownApp(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"99999":{"success":false}}`))
	}))
	defer server.Close()

	client, err := steam.New(server.URL)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	entry, err := client.Lookup(context.Background(), 99999)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if entry != nil {
		t.Fatalf("expected nil entry for unknown app, got %+v", entry)
	}
}

func TestDetailsDecodesPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("appids"); got != "620" {
			t.Errorf("unexpected appids %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"620":{"success":true,"data":{
			"type":"game",
			"name":"Portal 2",
			"short_description":"Sequel to the acclaimed puzzler.",
			"header_image":"https://cdn.example.com/620/header.jpg",
			"controller_support":"full",
			"developers":["Valve"],
			"categories":[{"id":2,"description":"Single-player"},{"id":28,"description":"Full controller support"}],
			"genres":[{"id":"4","description":"Casual"},{"id":"1","description":"Action"}],
			"metacritic":{"score":95,"url":"https://example.com"}
		}}}`))
	}))
	defer server.Close()

	client, err := steam.New(server.URL)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	details, err := client.Details(context.Background(), 620)
	if err != nil {
		t.Fatalf("Details: %v", err)
	}
	if details == nil {
		t.Fatal("expected details payload")
	}
	if details.Name != "Portal 2" || details.Metacritic == nil || details.Metacritic.Score != 95 {
		t.Fatalf("unexpected payload %+v", details)
	}
	if !details.HasFullControllerSupport() {
		t.Fatal("expected full controller support")
	}
	if got := details.GenreNames(); len(got) != 2 || got[0] != "Casual" {
		t.Fatalf("unexpected genres %v", got)
	}
}

func TestDetailsPropagatesHTTPErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client, err := steam.New(server.URL)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := client.Details(context.Background(), 620); err == nil {
		t.Fatal("expected error on 429")
	}
}
