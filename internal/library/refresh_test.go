package library_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"gamedex/internal/errkind"
	"gamedex/internal/library"
	"gamedex/internal/playtime"
	"gamedex/internal/provider"
	"gamedex/internal/sourcedata"
)

type stubProvider struct {
	mu      sync.Mutex
	typ     string
	build   func(gameTitle string) sourcedata.Item
	latency func(gameTitle string) time.Duration
	calls   map[string]int
}

func newStubProvider(typ string, build func(gameTitle string) sourcedata.Item) *stubProvider {
	return &stubProvider{typ: typ, build: build, calls: map[string]int{}}
}

func (p *stubProvider) Type() string { return p.typ }

func (p *stubProvider) GetData(_ context.Context, gameTitle string, _ bool) (sourcedata.Item, error) {
	if p.latency != nil {
		time.Sleep(p.latency(gameTitle))
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls[gameTitle]++
	if p.build == nil {
		return nil, nil
	}
	return p.build(gameTitle), nil
}

func (p *stubProvider) callsFor(gameTitle string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls[gameTitle]
}

func steamStub(minutes int) *stubProvider {
	return newStubProvider(sourcedata.TypeSteamInfo, func(gameTitle string) sourcedata.Item {
		return &sourcedata.SteamInfo{Source: gameTitle, AppID: 620, Summary: "stub", PlayTimeForever: minutes}
	})
}

func TestUpdateGameStoresProviderPayload(t *testing.T) {
	f := newFixture(t)
	f.addShortcut(t, "Portal 2")
	stub := steamStub(10)
	store := f.open(t, func(opts *library.Options) {
		opts.Registry = provider.NewRegistry(nil, stub)
	})

	id := library.GameID("Portal 2")
	changed, err := store.UpdateGame(context.Background(), id, false)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !changed {
		t.Fatal("first update must report a change")
	}
	game, _ := store.Get(id)
	si, ok := game.Data.ByType(sourcedata.TypeSteamInfo).(*sourcedata.SteamInfo)
	if !ok || si.Summary != "stub" {
		t.Fatalf("payload not stored: %+v", game.Data)
	}
	if _, stamped := game.LastUpdate[sourcedata.TypeSteamInfo]; !stamped {
		t.Fatal("refresh stamp missing")
	}
}

func TestUpdateGameSkipsFreshProvider(t *testing.T) {
	f := newFixture(t)
	f.addShortcut(t, "Portal 2")
	stub := steamStub(10)
	store := f.open(t, func(opts *library.Options) {
		opts.Registry = provider.NewRegistry(nil, stub)
	})

	id := library.GameID("Portal 2")
	if _, err := store.UpdateGame(context.Background(), id, false); err != nil {
		t.Fatalf("first update: %v", err)
	}
	changed, err := store.UpdateGame(context.Background(), id, false)
	if err != nil {
		t.Fatalf("second update: %v", err)
	}
	if changed {
		t.Fatal("routine refresh of a fresh record must be a no-op")
	}
	if got := stub.callsFor("Portal 2"); got != 1 {
		t.Fatalf("provider called %d times, want 1", got)
	}
}

func TestUpdateGameForceRefetchesAndMerges(t *testing.T) {
	f := newFixture(t)
	f.addShortcut(t, "Portal 2")
	stub := steamStub(10)
	store := f.open(t, func(opts *library.Options) {
		opts.Registry = provider.NewRegistry(nil, stub)
	})

	id := library.GameID("Portal 2")
	if _, err := store.UpdateGame(context.Background(), id, false); err != nil {
		t.Fatalf("first update: %v", err)
	}
	stub.mu.Lock()
	stub.build = func(gameTitle string) sourcedata.Item {
		return &sourcedata.SteamInfo{Source: gameTitle, AppID: 620, Summary: "replaced", PlayTimeForever: 50}
	}
	stub.mu.Unlock()

	changed, err := store.UpdateGame(context.Background(), id, true)
	if err != nil {
		t.Fatalf("forced update: %v", err)
	}
	if changed {
		t.Fatal("merging into an existing payload adds nothing new")
	}
	if got := stub.callsFor("Portal 2"); got != 2 {
		t.Fatalf("provider called %d times, want 2", got)
	}
	game, _ := store.Get(id)
	si := game.Data.ByType(sourcedata.TypeSteamInfo).(*sourcedata.SteamInfo)
	if si.PlayTimeForever != 50 {
		t.Fatalf("play counter not merged forward: %+v", si)
	}
	if si.Summary != "stub" {
		t.Fatalf("first-fetched summary must win, got %q", si.Summary)
	}
}

func TestUpdateGameNoDataLeavesNoStamp(t *testing.T) {
	f := newFixture(t)
	f.addShortcut(t, "Obscure Title")
	stub := newStubProvider(sourcedata.TypeSteamInfo, nil)
	store := f.open(t, func(opts *library.Options) {
		opts.Registry = provider.NewRegistry(nil, stub)
	})

	id := library.GameID("Obscure Title")
	changed, err := store.UpdateGame(context.Background(), id, false)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if changed {
		t.Fatal("no data means no change")
	}
	game, _ := store.Get(id)
	if len(game.LastUpdate) != 0 {
		t.Fatalf("a fruitless fetch with nothing stored must not stamp, got %v", game.LastUpdate)
	}
}

func TestUpdateGameUnknownID(t *testing.T) {
	f := newFixture(t)
	store := f.open(t, nil)
	_, err := store.UpdateGame(context.Background(), "no-such-id", false)
	if !errors.Is(err, errkind.ErrNotFound) {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestUpdateAllRefreshesEachGameOnce(t *testing.T) {
	f := newFixture(t)
	const slowTitle = "Game 037"
	titles := make([]string, 0, 100)
	for i := 0; i < 100; i++ {
		titles = append(titles, fmt.Sprintf("Game %03d", i))
	}
	for _, title := range titles {
		f.addShortcut(t, title)
	}

	var fetchMu sync.Mutex
	var lastFetchDone time.Time
	stub := newStubProvider(sourcedata.TypeSteamInfo, func(gameTitle string) sourcedata.Item {
		fetchMu.Lock()
		lastFetchDone = time.Now()
		fetchMu.Unlock()
		return &sourcedata.SteamInfo{Source: gameTitle, AppID: 620, Summary: "stub"}
	})
	stub.latency = func(gameTitle string) time.Duration {
		if gameTitle == slowTitle {
			return 150 * time.Millisecond
		}
		return time.Millisecond
	}
	store := f.open(t, func(opts *library.Options) {
		opts.Registry = provider.NewRegistry(nil, stub)
	})

	var mu sync.Mutex
	var updatedIDs []string
	var firstCallback time.Time
	updated, err := store.UpdateAll(context.Background(), func(id string) {
		mu.Lock()
		if len(updatedIDs) == 0 {
			firstCallback = time.Now()
		}
		updatedIDs = append(updatedIDs, id)
		mu.Unlock()
	})
	if err != nil {
		t.Fatalf("update all: %v", err)
	}
	if updated != len(titles) || len(updatedIDs) != len(titles) {
		t.Fatalf("updated = %d callbacks = %d, want %d", updated, len(updatedIDs), len(titles))
	}
	seen := make(map[string]bool, len(updatedIDs))
	for _, id := range updatedIDs {
		if seen[id] {
			t.Fatalf("duplicate completion callback for %s", id)
		}
		seen[id] = true
	}
	for _, title := range titles {
		if got := stub.callsFor(title); got != 1 {
			t.Fatalf("%s fetched %d times, want exactly once", title, got)
		}
	}
	// The straggler holds the batch open long enough that completions for
	// the quick games must be observable before the last fetch lands.
	if !firstCallback.Before(lastFetchDone) {
		t.Fatal("no callback fired while the batch was still in flight")
	}

	// A second pass finds nothing left to do and touches the network not
	// at all.
	updated, err = store.UpdateAll(context.Background(), nil)
	if err != nil {
		t.Fatalf("second update all: %v", err)
	}
	if updated != 0 {
		t.Fatalf("second pass updated %d games, want 0", updated)
	}
	for _, title := range titles {
		if got := stub.callsFor(title); got != 1 {
			t.Fatalf("%s re-fetched on second pass", title)
		}
	}
}

func TestUpdateAllReconcilesPlayTimes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/IPlayerService/GetOwnedGames/v1/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"response":{"game_count":1,"games":[{"appid":620,"playtime_forever":340}]}}`))
	}))
	defer server.Close()

	playTimes, err := playtime.New(server.URL, "key", "76561198000000000")
	if err != nil {
		t.Fatalf("playtime client: %v", err)
	}

	f := newFixture(t)
	shortcut := f.addShortcut(t, "Portal 2")
	f.writeLibrary(t, map[string]*library.Game{
		library.GameID("Portal 2"): {
			Title:    "Portal 2",
			Shortcut: shortcut,
			Added:    time.Now(),
			Data: sourcedata.Items{
				&sourcedata.SteamInfo{Source: "Portal 2", AppID: 620, PlayTimeForever: 10},
			},
		},
	})
	store := f.open(t, func(opts *library.Options) { opts.PlayTimes = playTimes })

	if _, err := store.UpdateAll(context.Background(), nil); err != nil {
		t.Fatalf("update all: %v", err)
	}
	game, _ := store.Get(library.GameID("Portal 2"))
	si := game.Data.ByType(sourcedata.TypeSteamInfo).(*sourcedata.SteamInfo)
	if si.PlayTimeForever != 340 {
		t.Fatalf("play time not reconciled, got %d", si.PlayTimeForever)
	}
}
