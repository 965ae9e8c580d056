package library_test

import (
	"testing"
	"time"

	"gamedex/internal/library"
	"gamedex/internal/sourcedata"
)

func TestSessionLogRoundTrip(t *testing.T) {
	start := time.Date(2026, 3, 14, 21, 30, 5, 123_400_000, time.Local)
	game := library.Game{
		Title:    "Hollow Knight",
		Sessions: library.FormatSession(start, 45) + ";" + library.FormatSession(start.Add(24*time.Hour), 0) + ";",
	}

	if got := game.PlayCount(); got != 2 {
		t.Fatalf("PlayCount = %d, want 2", got)
	}
	if got := game.LocalPlayMinutes(); got != 45 {
		t.Fatalf("LocalPlayMinutes = %d, want 45", got)
	}
	first := game.FirstPlayed()
	if first == nil || !first.Equal(start) {
		t.Fatalf("FirstPlayed = %v, want %v", first, start)
	}
	last := game.LastPlayed()
	if last == nil || !last.Equal(start.Add(24*time.Hour)) {
		t.Fatalf("LastPlayed = %v, want %v", last, start.Add(24*time.Hour))
	}
}

func TestSessionLogSkipsMalformedEntries(t *testing.T) {
	game := library.Game{
		Title:    "Celeste",
		Sessions: "garbage;2026;" + library.FormatSession(time.Date(2026, 1, 2, 10, 0, 0, 0, time.Local), 30) + ";",
	}
	if got := game.PlayCount(); got != 1 {
		t.Fatalf("PlayCount = %d, want 1", got)
	}
	if got := game.LocalPlayMinutes(); got != 30 {
		t.Fatalf("LocalPlayMinutes = %d, want 30", got)
	}
}

func TestTotalPlayMinutesPrefersStorefrontCounter(t *testing.T) {
	start := time.Date(2026, 2, 1, 20, 0, 0, 0, time.Local)
	game := library.Game{
		Title:    "Portal 2",
		Sessions: library.FormatSession(start, 60) + ";",
		Data: sourcedata.Items{
			&sourcedata.SteamInfo{AppID: 620, PlayTimeForever: 200},
		},
	}
	if got := game.TotalPlayMinutes(); got != 200 {
		t.Fatalf("TotalPlayMinutes = %d, want 200", got)
	}

	game.Data = nil
	if got := game.TotalPlayMinutes(); got != 60 {
		t.Fatalf("TotalPlayMinutes without storefront counter = %d, want 60", got)
	}
}

func TestBeatenInSumsSessionsBeforeCompletion(t *testing.T) {
	completed := time.Date(2026, 4, 1, 0, 0, 0, 0, time.Local)
	game := library.Game{
		Title:     "Hades",
		Completed: &completed,
		Sessions: library.FormatSession(completed.AddDate(0, 0, -2), 90) + ";" +
			library.FormatSession(completed.AddDate(0, 0, -1), 30) + ";" +
			library.FormatSession(completed.AddDate(0, 0, 5), 120) + ";",
	}
	beaten := game.BeatenIn()
	if beaten == nil || *beaten != 120 {
		t.Fatalf("BeatenIn = %v, want 120", beaten)
	}

	uncompleted := library.Game{Title: "Hades", Sessions: game.Sessions}
	if uncompleted.BeatenIn() != nil {
		t.Fatal("BeatenIn should be nil for an uncompleted game")
	}
}

func TestLastMonthPlayCount(t *testing.T) {
	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.Local)
	game := library.Game{
		Title: "Stardew Valley",
		Sessions: library.FormatSession(now.AddDate(0, 0, -3), 60) + ";" +
			library.FormatSession(now.AddDate(0, 0, -40), 60) + ";",
	}
	if got := game.LastMonthPlayCount(now); got != 1 {
		t.Fatalf("LastMonthPlayCount = %d, want 1", got)
	}
}

func TestGameIDIsStable(t *testing.T) {
	if library.GameID("Portal 2") != library.GameID("Portal 2") {
		t.Fatal("GameID must be deterministic")
	}
	if library.GameID("Portal 2") == library.GameID("portal 2") {
		t.Fatal("GameID must be case sensitive")
	}
}
