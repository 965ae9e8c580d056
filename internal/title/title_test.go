package title_test

import (
	"testing"

	"gamedex/internal/title"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Fallout", "fallout"},
		{"  Fallout:   New  Vegas!! ", "fallout new vegas"},
		{"S.T.A.L.K.E.R.", "s t a l k e r"},
		{"Half-Life 2", "half life 2"},
		{"", ""},
		{"!!!", ""},
	}
	for _, tc := range cases {
		if got := title.Normalize(tc.in); got != tc.want {
			t.Errorf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestEditDistanceProperties(t *testing.T) {
	pairs := [][2]string{
		{"fallout", "fallout 2"},
		{"oblivion", "morrowind"},
		{"abc", ""},
		{"kitten", "sitting"},
	}
	for _, p := range pairs {
		ab := title.EditDistance(p[0], p[1])
		ba := title.EditDistance(p[1], p[0])
		if ab != ba {
			t.Errorf("EditDistance not symmetric for %q/%q: %d vs %d", p[0], p[1], ab, ba)
		}
	}
	for _, s := range []string{"", "a", "fallout new vegas"} {
		if d := title.EditDistance(s, s); d != 0 {
			t.Errorf("EditDistance(%q, %q) = %d, want 0", s, s, d)
		}
	}
}

func TestEditDistanceValues(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"kitten", "sitting", 3},
		{"ab", "ba", 1}, // adjacent transposition costs 1
		{"fallout", "fallout 2", 2},
		{"abc", "", 3},
	}
	for _, tc := range cases {
		if got := title.EditDistance(tc.a, tc.b); got != tc.want {
			t.Errorf("EditDistance(%q, %q) = %d, want %d", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestFindBestMatchExactShortCircuits(t *testing.T) {
	candidates := []string{"fallout 2", "fallout", "completely different"}
	m, ok := title.FindBestMatch("Fallout!", candidates)
	if !ok {
		t.Fatal("expected a match")
	}
	if !m.Exact || m.Index != 1 || m.Distance != 0 {
		t.Fatalf("unexpected match %+v", m)
	}
}

func TestFindBestMatchSubstringAndThreshold(t *testing.T) {
	// "fallout" has length 7; "fallout 2" is distance 2, "fallout 3" the
	// same, "oblivion" does not contain the target at all.
	candidates := []string{"fallout 2", "fallout 3", "oblivion"}
	m, ok := title.FindBestMatch("Fallout", candidates)
	if !ok {
		t.Fatal("expected a match")
	}
	if m.Index != 0 || m.Distance != 2 {
		t.Fatalf("expected first minimal candidate to win, got %+v", m)
	}
}

func TestFindBestMatchRejectsDistantCandidates(t *testing.T) {
	// Candidate contains the target but the distance far exceeds the
	// target length (3), so it is discarded.
	if _, ok := title.FindBestMatch("rim", []string{"rimming simulator"}); ok {
		t.Fatal("expected no match past the distance threshold")
	}
	if _, ok := title.FindBestMatch("Fallout", []string{"morrowind", "oblivion"}); ok {
		t.Fatal("expected no match without substring containment")
	}
}

func TestFindBestMatchTieBreaksByInputOrder(t *testing.T) {
	candidates := []string{"fallout a", "fallout b"}
	m, ok := title.FindBestMatch("Fallout", candidates)
	if !ok {
		t.Fatal("expected a match")
	}
	if m.Index != 0 {
		t.Fatalf("expected first candidate on tie, got index %d", m.Index)
	}
}

func TestDeriveTitle(t *testing.T) {
	if got := title.DeriveTitle("/games/The Witcher 3.lnk"); got != "The Witcher 3" {
		t.Fatalf("DeriveTitle = %q", got)
	}
	if got := title.DeriveTitle(""); got != "Unknown Game" {
		t.Fatalf("DeriveTitle fallback = %q", got)
	}
}
