package title

import (
	"path/filepath"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Normalize lowercases a title and strips punctuation so that cosmetic
// variants compare equal. Letters and digits are kept; every other run of
// characters collapses to a single space.
func Normalize(title string) string {
	var b strings.Builder
	b.Grow(len(title))
	pendingSpace := false
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			if pendingSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			pendingSpace = false
			b.WriteRune(r)
		} else {
			pendingSpace = true
		}
	}
	return b.String()
}

// EditDistance computes the Damerau-Levenshtein distance between a and b:
// insertions, deletions, substitutions, and adjacent transpositions each
// cost 1. Inputs are compared rune-wise; callers normally pass normalized
// titles.
func EditDistance(a, b string) int {
	ra := []rune(a)
	rb := []rune(b)
	la, lb := len(ra), len(rb)
	if la == 0 {
		return lb
	}
	if lb == 0 {
		return la
	}

	// Three rolling rows: i-2, i-1, i.
	prev2 := make([]int, lb+1)
	prev := make([]int, lb+1)
	cur := make([]int, lb+1)
	for j := 0; j <= lb; j++ {
		prev[j] = j
	}

	for i := 1; i <= la; i++ {
		cur[0] = i
		for j := 1; j <= lb; j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			best := min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
			if i > 1 && j > 1 && ra[i-1] == rb[j-2] && ra[i-2] == rb[j-1] {
				best = min(best, prev2[j-2]+1)
			}
			cur[j] = best
		}
		prev2, prev, cur = prev, cur, prev2
	}
	return prev[lb]
}

// Match describes the winner of FindBestMatch.
type Match struct {
	// Index into the candidate slice.
	Index int
	// Distance is the edit distance from the normalized target; zero for
	// an exact normalized match.
	Distance int
	// Exact reports whether the match short-circuited on normalized equality.
	Exact bool
}

// FindBestMatch selects the candidate closest to target. Candidates must
// already be normalized; target is normalized here.
//
// An exact normalized match wins immediately. Otherwise only candidates that
// contain the normalized target as a substring are considered, any candidate
// whose distance reaches the target's length is discarded as too dissimilar,
// and the minimum-distance survivor wins with ties broken by input order.
func FindBestMatch(target string, candidates []string) (Match, bool) {
	normalized := Normalize(target)
	if normalized == "" {
		return Match{}, false
	}

	best := Match{Index: -1}
	for i, candidate := range candidates {
		if candidate == normalized {
			return Match{Index: i, Distance: 0, Exact: true}, true
		}
		if !strings.Contains(candidate, normalized) {
			continue
		}
		distance := EditDistance(normalized, candidate)
		if distance >= len([]rune(normalized)) {
			continue
		}
		if best.Index < 0 || distance < best.Distance {
			best = Match{Index: i, Distance: distance}
		}
	}
	if best.Index < 0 {
		return Match{}, false
	}
	return best, true
}

// DeriveTitle produces a game title from a shortcut path: the base name
// without its extension, verbatim. The base name is authoritative because
// the library's integrity check requires title and shortcut name to agree.
func DeriveTitle(shortcutPath string) string {
	if shortcutPath == "" {
		return unknownTitle
	}
	base := filepath.Base(shortcutPath)
	derived := strings.TrimSpace(strings.TrimSuffix(base, filepath.Ext(base)))
	if derived == "" {
		return unknownTitle
	}
	return derived
}

var unknownTitle = cases.Title(language.Und).String("unknown game")
