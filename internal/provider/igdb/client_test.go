package igdb_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"gamedex/internal/provider/igdb"
)

// newTestServer serves a token endpoint at /oauth2/token and API endpoints
// under /v4/.
func newTestServer(t *testing.T, tokenRequests *atomic.Int64, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("token endpoint called with %s", r.Method)
		}
		if got := r.URL.Query().Get("grant_type"); got != "client_credentials" {
			t.Errorf("unexpected grant type %q", got)
		}
		tokenRequests.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"tok123","expires_in":3600,"token_type":"bearer"}`))
	})
	mux.HandleFunc("/v4/", handler)
	return httptest.NewServer(mux)
}

func TestSearchSendsCredentialHeaders(t *testing.T) {
	var tokenRequests atomic.Int64
	server := newTestServer(t, &tokenRequests, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Client-ID"); got != "cid" {
			t.Errorf("missing client id header, got %q", got)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok123" {
			t.Errorf("unexpected authorization header %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"id":113114,"name":"The Outer Worlds"},{"id":4348,"name":"Another World"}]`))
	})
	defer server.Close()

	client, err := igdb.New("cid", "secret", server.URL+"/v4", server.URL+"/oauth2/token")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	results, err := client.SearchGames(context.Background(), "The Outer Worlds")
	if err != nil {
		t.Fatalf("SearchGames: %v", err)
	}
	if len(results) != 2 || results[0].ID != 113114 {
		t.Fatalf("unexpected results %+v", results)
	}
}

func TestTokenIsCachedAcrossQueries(t *testing.T) {
	var tokenRequests atomic.Int64
	server := newTestServer(t, &tokenRequests, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[]`))
	})
	defer server.Close()

	client, err := igdb.New("cid", "secret", server.URL+"/v4", server.URL+"/oauth2/token")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for i := 0; i < 3; i++ {
		if _, err := client.SearchGames(context.Background(), "portal"); err != nil {
			t.Fatalf("SearchGames: %v", err)
		}
	}
	if got := tokenRequests.Load(); got != 1 {
		t.Fatalf("expected a single token request, got %d", got)
	}
}

func TestGenreNameIsMemoized(t *testing.T) {
	var tokenRequests atomic.Int64
	var genreQueries atomic.Int64
	server := newTestServer(t, &tokenRequests, func(w http.ResponseWriter, r *http.Request) {
		genreQueries.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"id":5,"name":"Shooter"}]`))
	})
	defer server.Close()

	client, err := igdb.New("cid", "secret", server.URL+"/v4", server.URL+"/oauth2/token")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for i := 0; i < 2; i++ {
		name, err := client.GenreName(context.Background(), 5)
		if err != nil {
			t.Fatalf("GenreName: %v", err)
		}
		if name != "Shooter" {
			t.Fatalf("unexpected genre %q", name)
		}
	}
	if got := genreQueries.Load(); got != 1 {
		t.Fatalf("expected a single upstream genre query, got %d", got)
	}
}

func TestCoverURLUpgradesThumbnail(t *testing.T) {
	var tokenRequests atomic.Int64
	server := newTestServer(t, &tokenRequests, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"id":83213,"url":"//images.igdb.com/igdb/image/upload/t_thumb/co1s7h.jpg"}]`))
	})
	defer server.Close()

	client, err := igdb.New("cid", "secret", server.URL+"/v4", server.URL+"/oauth2/token")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	coverURL, err := client.CoverURL(context.Background(), 83213)
	if err != nil {
		t.Fatalf("CoverURL: %v", err)
	}
	want := "https://images.igdb.com/igdb/image/upload/t_original/co1s7h.jpg"
	if coverURL != want {
		t.Fatalf("got %q, want %q", coverURL, want)
	}
}

func TestNewRequiresCredentials(t *testing.T) {
	if _, err := igdb.New("", "secret", "http://x", "http://y"); err == nil {
		t.Fatal("expected error without client id")
	}
	if _, err := igdb.New("cid", "", "http://x", "http://y"); err == nil {
		t.Fatal("expected error without client secret")
	}
}
