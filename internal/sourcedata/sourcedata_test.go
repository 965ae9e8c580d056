package sourcedata_test

import (
	"encoding/json"
	"strings"
	"testing"

	"gamedex/internal/sourcedata"
)

func intPtr(v int) *int    { return &v }
func boolPtr(v bool) *bool { return &v }

func TestBestImagePicksHighestPriorityRegardlessOfOrder(t *testing.T) {
	igdb := &sourcedata.IGDB{Source: "Portal 2"}
	cryo := &sourcedata.CryoTank{
		Source: "Portal 2",
		Cover:  &sourcedata.ImageRef{LocalPath: "/cache/cryotank/Portal 2.jpg"},
	}
	steamInfo := &sourcedata.SteamInfo{Source: "Portal 2"}

	orders := [][]sourcedata.Item{
		{igdb, cryo, steamInfo},
		{steamInfo, igdb, cryo},
		{cryo, steamInfo, igdb},
	}
	for _, order := range orders {
		items := sourcedata.Items(order)
		image := items.BestImage()
		if image == nil || image.LocalPath != cryo.Cover.LocalPath {
			t.Fatalf("expected the only populated image to win, got %+v", image)
		}
	}
}

func TestHigherPriorityImageWins(t *testing.T) {
	items := sourcedata.Items{
		&sourcedata.CryoTank{Cover: &sourcedata.ImageRef{LocalPath: "/cache/cryotank/x.jpg"}},
		&sourcedata.User{Cover: &sourcedata.ImageRef{LocalPath: "/cache/user/x.png"}},
		&sourcedata.SteamInfo{Cover: &sourcedata.ImageRef{LocalPath: "/cache/steam/x.jpg"}},
	}
	image := items.BestImage()
	if image == nil || image.LocalPath != "/cache/user/x.png" {
		t.Fatalf("user override must outrank remote providers, got %+v", image)
	}
}

func TestAverageRatingIsMeanNotPriorityPick(t *testing.T) {
	items := sourcedata.Items{
		&sourcedata.SteamInfo{Rating: intPtr(80)},
		&sourcedata.IGDB{Rating: intPtr(60)},
	}
	rating := items.AverageRating()
	if rating == nil || *rating != 70 {
		t.Fatalf("expected mean 70, got %v", rating)
	}

	if sourcedata.Items(nil).AverageRating() != nil {
		t.Fatal("no ratings must yield nil, not zero")
	}
}

func TestGamepadFriendlyTieBreaksByOrder(t *testing.T) {
	first := &sourcedata.SteamInfo{Gamepad: boolPtr(true)}
	second := &sourcedata.SteamInfo{Gamepad: boolPtr(false)}
	// Same priority twice cannot happen through Upsert, but the picker
	// must still break the tie deterministically.
	items := sourcedata.Items{first, second}
	got := items.GamepadFriendly()
	if got == nil || *got != true {
		t.Fatalf("expected first item to win the tie, got %v", got)
	}
}

func TestItemsRoundTripPreservesVariants(t *testing.T) {
	items := sourcedata.Items{
		&sourcedata.SteamInfo{
			Source:          "Portal 2",
			AppID:           620,
			Summary:         "Sequel to the acclaimed puzzler.",
			Rating:          intPtr(95),
			PlayTimeForever: 1200,
			Gamepad:         boolPtr(true),
			Cover:           &sourcedata.ImageRef{LocalPath: "/cache/steam/Portal 2.jpg", SourceURL: "https://cdn/620.jpg"},
		},
		&sourcedata.IGDB{
			Source:    "Portal 2",
			ID:        71,
			Developer: "Valve",
			Genres:    []string{"Puzzle", "Shooter"},
			TimeToBeat: &sourcedata.TimeToBeat{
				Normal: intPtr(30600),
			},
		},
		&sourcedata.User{Gamepad: boolPtr(false)},
	}

	data, err := json.Marshal(items)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var loaded sourcedata.Items
	if err := json.Unmarshal(data, &loaded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(loaded) != 3 {
		t.Fatalf("expected 3 items, got %d", len(loaded))
	}
	si, ok := loaded.ByType(sourcedata.TypeSteamInfo).(*sourcedata.SteamInfo)
	if !ok {
		t.Fatal("storefront item lost its concrete type")
	}
	if si.AppID != 620 || si.PlayTimeForever != 1200 || si.Cover == nil || si.Cover.SourceURL != "https://cdn/620.jpg" {
		t.Fatalf("storefront payload mangled: %+v", si)
	}
	igdb, ok := loaded.ByType(sourcedata.TypeIGDB).(*sourcedata.IGDB)
	if !ok || igdb.TimeToBeat == nil || igdb.TimeToBeat.Normal == nil || *igdb.TimeToBeat.Normal != 30600 {
		t.Fatalf("igdb payload mangled: %+v", igdb)
	}
}

func TestUnknownTypeTagSurvivesRoundTrip(t *testing.T) {
	raw := `[{"type":"future-provider","some_field":"kept"}]`
	var items sourcedata.Items
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	unknown, ok := items[0].(*sourcedata.Unknown)
	if !ok || unknown.Tag != "future-provider" {
		t.Fatalf("expected unknown wrapper, got %T", items[0])
	}

	data, err := json.Marshal(items)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(data), `"some_field":"kept"`) {
		t.Fatalf("unknown payload dropped on save: %s", data)
	}
}

func TestUpsertMergesInsteadOfDuplicating(t *testing.T) {
	var items sourcedata.Items
	if added := items.Upsert(&sourcedata.IGDB{Developer: "Valve", Rating: intPtr(80)}); !added {
		t.Fatal("first upsert must add")
	}
	if added := items.Upsert(&sourcedata.IGDB{Rating: intPtr(85), Genres: []string{"Puzzle"}}); added {
		t.Fatal("second upsert of the same type must merge")
	}
	if len(items) != 1 {
		t.Fatalf("one item per provider type, got %d", len(items))
	}
	igdb := items.ByType(sourcedata.TypeIGDB).(*sourcedata.IGDB)
	if igdb.Developer != "Valve" {
		t.Fatal("merge must not clear the stored developer")
	}
	if igdb.Rating == nil || *igdb.Rating != 85 {
		t.Fatalf("merge must track the fresh rating, got %v", igdb.Rating)
	}
	if len(igdb.Genres) != 1 {
		t.Fatalf("merge must adopt fresh genres, got %v", igdb.Genres)
	}
}

func TestSteamInfoMergeKeepsFirstPayload(t *testing.T) {
	items := sourcedata.Items{&sourcedata.SteamInfo{
		Summary:         "original",
		PlayTimeForever: 100,
	}}
	items.Upsert(&sourcedata.SteamInfo{Summary: "replacement", PlayTimeForever: 150})
	si := items.ByType(sourcedata.TypeSteamInfo).(*sourcedata.SteamInfo)
	if si.Summary != "original" {
		t.Fatal("repeat fetch must not replace the stored payload")
	}
	if si.PlayTimeForever != 150 {
		t.Fatalf("play time counter must move forward, got %d", si.PlayTimeForever)
	}
}
