package playtime_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"gamedex/internal/playtime"
)

func TestOwnedGamesMapsAppIDsToMinutes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/IPlayerService/GetOwnedGames/v1/" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		query := r.URL.Query()
		if query.Get("key") != "secret" || query.Get("steamid") != "7656" {
			t.Errorf("credentials missing from query: %v", query)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"response":{"game_count":2,"games":[
			{"appid":620,"playtime_forever":1200},
			{"appid":400,"playtime_forever":0}
		]}}`))
	}))
	defer server.Close()

	client, err := playtime.New(server.URL, "secret", "7656")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	minutes, err := client.OwnedGames(context.Background())
	if err != nil {
		t.Fatalf("OwnedGames: %v", err)
	}
	if minutes[620] != 1200 {
		t.Fatalf("unexpected minutes for 620: %d", minutes[620])
	}
	if _, ok := minutes[400]; !ok {
		t.Fatal("zero play time is still an owned game")
	}
}

func TestNewRequiresCredentials(t *testing.T) {
	if _, err := playtime.New("http://example.com", "", "7656"); err == nil {
		t.Fatal("expected error without api key")
	}
	if _, err := playtime.New("http://example.com", "key", ""); err == nil {
		t.Fatal("expected error without account id")
	}
}
