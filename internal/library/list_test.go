package library_test

import (
	"testing"
	"time"

	"gamedex/internal/library"
	"gamedex/internal/sourcedata"
)

func boolPtr(v bool) *bool { return &v }
func intPtr(v int) *int    { return &v }

// listFixture seeds a small library spanning the filter categories:
// Portal 2 is installed, beaten, rated and played; Hades is installed
// and played twice; Gone Home is removed; Celeste is installed but has
// no data at all.
func listFixture(t *testing.T) *library.Store {
	t.Helper()
	f := newFixture(t)
	portalShortcut := f.addShortcut(t, "Portal 2")
	hadesShortcut := f.addShortcut(t, "Hades")
	celesteShortcut := f.addShortcut(t, "Celeste")

	beaten := time.Date(2026, 3, 14, 0, 0, 0, 0, time.Local)
	f.writeLibrary(t, map[string]*library.Game{
		library.GameID("Portal 2"): {
			Title:     "Portal 2",
			Shortcut:  portalShortcut,
			Added:     time.Date(2025, 11, 1, 0, 0, 0, 0, time.Local),
			Completed: &beaten,
			Sessions:  library.FormatSession(time.Date(2026, 3, 10, 20, 0, 0, 0, time.Local), 90) + ";",
			Data: sourcedata.Items{
				&sourcedata.SteamInfo{Source: "Portal 2", AppID: 620, Rating: intPtr(95), Gamepad: boolPtr(true),
					Cover: &sourcedata.ImageRef{LocalPath: "/cache/steam-info/Portal 2.jpg"}},
			},
		},
		library.GameID("Hades"): {
			Title:    "Hades",
			Shortcut: hadesShortcut,
			Added:    time.Date(2026, 1, 5, 0, 0, 0, 0, time.Local),
			Sessions: library.FormatSession(time.Date(2026, 2, 1, 19, 0, 0, 0, time.Local), 60) + ";" +
				library.FormatSession(time.Date(2026, 4, 1, 19, 0, 0, 0, time.Local), 45) + ";",
			Data: sourcedata.Items{
				&sourcedata.SteamInfo{Source: "Hades", AppID: 1145360, Rating: intPtr(80),
					Cover: &sourcedata.ImageRef{LocalPath: "/cache/steam-info/Hades.jpg"}},
			},
		},
		library.GameID("Gone Home"): {
			Title: "Gone Home",
			Added: time.Date(2025, 6, 1, 0, 0, 0, 0, time.Local),
			Data: sourcedata.Items{
				&sourcedata.CryoTank{Source: "Gone Home",
					Cover: &sourcedata.ImageRef{LocalPath: "/cache/cryotank/Gone Home.png"}},
			},
		},
		library.GameID("Celeste"): {
			Title:    "Celeste",
			Shortcut: celesteShortcut,
			Added:    time.Date(2026, 2, 20, 0, 0, 0, 0, time.Local),
		},
	})
	return f.open(t, nil)
}

func titlesOf(t *testing.T, store *library.Store, ids []string) []string {
	t.Helper()
	titles := make([]string, len(ids))
	for i, id := range ids {
		game, ok := store.Get(id)
		if !ok {
			t.Fatalf("listing returned unknown id %s", id)
		}
		titles[i] = game.Title
	}
	return titles
}

func assertTitles(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("titles = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("titles = %v, want %v", got, want)
		}
	}
}

func TestListOrderByTitle(t *testing.T) {
	store := listFixture(t)
	ids := store.ListGames("", library.FilterAll, library.OrderTitle, true)
	assertTitles(t, titlesOf(t, store, ids), []string{"Celeste", "Gone Home", "Hades", "Portal 2"})

	ids = store.ListGames("", library.FilterAll, library.OrderTitle, false)
	assertTitles(t, titlesOf(t, store, ids), []string{"Portal 2", "Hades", "Gone Home", "Celeste"})
}

func TestListCategoryFilters(t *testing.T) {
	store := listFixture(t)

	ids := store.ListGames("", library.FilterRemoved, library.OrderTitle, true)
	assertTitles(t, titlesOf(t, store, ids), []string{"Gone Home"})

	ids = store.ListGames("", library.FilterInstalled, library.OrderTitle, true)
	assertTitles(t, titlesOf(t, store, ids), []string{"Celeste", "Hades", "Portal 2"})

	ids = store.ListGames("", library.FilterBeaten, library.OrderTitle, true)
	assertTitles(t, titlesOf(t, store, ids), []string{"Portal 2"})

	ids = store.ListGames("", library.FilterUnbeaten, library.OrderTitle, true)
	assertTitles(t, titlesOf(t, store, ids), []string{"Celeste", "Hades"})

	ids = store.ListGames("", library.FilterWithControllerSupport, library.OrderTitle, true)
	assertTitles(t, titlesOf(t, store, ids), []string{"Portal 2"})

	ids = store.ListGames("", library.FilterUnidentified, library.OrderTitle, true)
	assertTitles(t, titlesOf(t, store, ids), []string{"Celeste"})
}

func TestListTitleSubstringFilter(t *testing.T) {
	store := listFixture(t)
	ids := store.ListGames("PORT", library.FilterAll, library.OrderTitle, true)
	assertTitles(t, titlesOf(t, store, ids), []string{"Portal 2"})
}

func TestListDatePredicates(t *testing.T) {
	store := listFixture(t)

	ids := store.ListGames("*added > 2025", library.FilterAll, library.OrderTitle, true)
	assertTitles(t, titlesOf(t, store, ids), []string{"Celeste", "Hades"})

	ids = store.ListGames("*beaten = 2026/3", library.FilterAll, library.OrderTitle, true)
	assertTitles(t, titlesOf(t, store, ids), []string{"Portal 2"})

	ids = store.ListGames("*played = 2026/4", library.FilterAll, library.OrderTitle, true)
	assertTitles(t, titlesOf(t, store, ids), []string{"Hades"})
}

func TestListNumericPredicates(t *testing.T) {
	store := listFixture(t)

	ids := store.ListGames("*playcount > 1", library.FilterAll, library.OrderTitle, true)
	assertTitles(t, titlesOf(t, store, ids), []string{"Hades"})

	ids = store.ListGames("*rating < 90", library.FilterAll, library.OrderTitle, true)
	assertTitles(t, titlesOf(t, store, ids), []string{"Hades"})
}

func TestListCombinedClauses(t *testing.T) {
	store := listFixture(t)
	ids := store.ListGames("a & *playcount > 0", library.FilterAll, library.OrderTitle, true)
	assertTitles(t, titlesOf(t, store, ids), []string{"Hades", "Portal 2"})
}

func TestListMalformedClauseIgnored(t *testing.T) {
	store := listFixture(t)
	ids := store.ListGames("*playcount ? wat", library.FilterAll, library.OrderTitle, true)
	if len(ids) != 4 {
		t.Fatalf("malformed clause should not filter, got %d results", len(ids))
	}
}

func TestListOrderByRating(t *testing.T) {
	store := listFixture(t)
	ids := store.ListGames("", library.FilterAll, library.OrderRating, false)
	titles := titlesOf(t, store, ids)
	if titles[0] != "Portal 2" || titles[1] != "Hades" {
		t.Fatalf("rating order = %v, want Portal 2 then Hades first", titles)
	}
}

func TestListOrderByLastPlayed(t *testing.T) {
	store := listFixture(t)
	ids := store.ListGames("", library.FilterAll, library.OrderLastPlayed, true)
	// Never-played lead, newest addition first; then played, longest idle
	// first.
	assertTitles(t, titlesOf(t, store, ids), []string{"Celeste", "Gone Home", "Portal 2", "Hades"})
}
