package library

import (
	"sort"
	"strconv"
	"strings"
	"time"
)

// GameFilter narrows a listing to one record category.
type GameFilter int

const (
	FilterAll GameFilter = iota
	FilterInstalled
	FilterRemoved
	FilterBeaten
	FilterUnbeaten
	FilterWithControllerSupport
	FilterUnidentified
)

// GameOrder selects the listing sort key.
type GameOrder int

const (
	OrderTitle GameOrder = iota
	OrderPlayTime
	OrderPlayCount
	OrderRating
	OrderLastPlayed
	OrderBeatTime
	OrderDateAdded
)

// ListGames returns record ids filtered and ordered for display. The
// filter expression is `&`-separated clauses: a clause starting with `*`
// is a structured predicate (`*field op value` with op one of = < > and
// field one of beaten, added, played, playcount, rating), anything else
// is a case-insensitive substring match against the title. Clauses that
// fail to parse are dropped rather than erroring.
func (s *Store) ListGames(filterExpr string, filter GameFilter, order GameOrder, ascending bool) []string {
	s.mu.RLock()
	games := make([]*Game, 0, len(s.games))
	ids := make(map[*Game]string, len(s.games))
	for id, game := range s.games {
		games = append(games, game)
		ids[game] = id
	}
	s.mu.RUnlock()

	games = applyFilterExpr(games, filterExpr)
	games = applyCategoryFilter(games, filter)
	sortGames(games, order)

	result := make([]string, len(games))
	for i, game := range games {
		result[i] = ids[game]
	}
	if !ascending {
		for i, j := 0, len(result)-1; i < j; i, j = i+1, j-1 {
			result[i], result[j] = result[j], result[i]
		}
	}
	return result
}

func applyFilterExpr(games []*Game, filterExpr string) []*Game {
	filterExpr = strings.ToLower(strings.TrimSpace(filterExpr))
	if filterExpr == "" {
		return games
	}
	for _, clause := range strings.Split(filterExpr, "&") {
		clause = strings.TrimSpace(clause)
		if clause == "" {
			continue
		}
		if strings.HasPrefix(clause, "*") {
			games = applyPredicate(games, strings.ReplaceAll(clause, " ", ""))
		} else {
			games = keep(games, func(g *Game) bool {
				return strings.Contains(strings.ToLower(g.Title), clause)
			})
		}
	}
	return games
}

func applyPredicate(games []*Game, clause string) []*Game {
	op := operatorIn(clause)
	if op == "" {
		return games
	}
	field, value, ok := strings.Cut(clause[1:], op)
	if !ok {
		return games
	}

	switch field {
	case "beaten":
		year, month, day, ok := parseDateValue(value)
		if !ok {
			return games
		}
		return keep(games, func(g *Game) bool {
			return g.Completed != nil && evalDate(*g.Completed, op, year, month, day)
		})
	case "added":
		year, month, day, ok := parseDateValue(value)
		if !ok {
			return games
		}
		return keep(games, func(g *Game) bool {
			return evalDate(g.Added, op, year, month, day)
		})
	case "played":
		year, month, day, ok := parseDateValue(value)
		if !ok {
			return games
		}
		return keep(games, func(g *Game) bool {
			for _, played := range g.playedDates() {
				if evalDate(played, op, year, month, day) {
					return true
				}
			}
			return false
		})
	case "playcount":
		count, err := strconv.Atoi(value)
		if err != nil {
			return games
		}
		return keep(games, func(g *Game) bool {
			return evalNum(g.PlayCount(), op, count)
		})
	case "rating":
		rating, err := strconv.Atoi(value)
		if err != nil {
			return games
		}
		return keep(games, func(g *Game) bool {
			r := g.Data.AverageRating()
			return r != nil && evalNum(*r, op, rating)
		})
	}
	return games
}

func operatorIn(clause string) string {
	switch {
	case strings.Contains(clause, "="):
		return "="
	case strings.Contains(clause, "<"):
		return "<"
	case strings.Contains(clause, ">"):
		return ">"
	}
	return ""
}

// parseDateValue reads `year[/month[/day]]`; any unparsable component is
// simply left unset.
func parseDateValue(value string) (year, month, day int, ok bool) {
	parts := strings.Split(value, "/")
	if v, err := strconv.Atoi(parts[0]); err == nil {
		year = v
	}
	if len(parts) > 1 {
		if v, err := strconv.Atoi(parts[1]); err == nil {
			month = v
		}
	}
	if len(parts) > 2 {
		if v, err := strconv.Atoi(parts[2]); err == nil {
			day = v
		}
	}
	return year, month, day, year != 0 || month != 0 || day != 0
}

// evalDate compares per date component; zero components are unconstrained.
func evalDate(date time.Time, op string, year, month, day int) bool {
	switch op {
	case "=":
		return (year == 0 || date.Year() == year) &&
			(month == 0 || int(date.Month()) == month) &&
			(day == 0 || date.Day() == day)
	case "<":
		return (year == 0 || date.Year() < year) &&
			(month == 0 || int(date.Month()) < month) &&
			(day == 0 || date.Day() < day)
	case ">":
		return (year == 0 || date.Year() > year) &&
			(month == 0 || int(date.Month()) > month) &&
			(day == 0 || date.Day() > day)
	}
	return false
}

func evalNum(have int, op string, want int) bool {
	switch op {
	case "=":
		return have == want
	case "<":
		return have < want
	case ">":
		return have > want
	}
	return false
}

func keep(games []*Game, predicate func(*Game) bool) []*Game {
	filtered := games[:0:0]
	for _, game := range games {
		if predicate(game) {
			filtered = append(filtered, game)
		}
	}
	return filtered
}

func applyCategoryFilter(games []*Game, filter GameFilter) []*Game {
	switch filter {
	case FilterInstalled:
		return keep(games, func(g *Game) bool { return !g.Removed() })
	case FilterRemoved:
		return keep(games, func(g *Game) bool { return g.Removed() })
	case FilterBeaten:
		return keep(games, func(g *Game) bool { return g.Completed != nil })
	case FilterUnbeaten:
		return keep(games, func(g *Game) bool { return g.Completed == nil && !g.Removed() })
	case FilterWithControllerSupport:
		return keep(games, func(g *Game) bool {
			friendly := g.Data.GamepadFriendly()
			return friendly != nil && *friendly && !g.Removed()
		})
	case FilterUnidentified:
		return keep(games, func(g *Game) bool { return g.Data.BestImage() == nil })
	default:
		return games
	}
}

func sortGames(games []*Game, order GameOrder) {
	switch order {
	case OrderPlayTime:
		sort.SliceStable(games, func(i, j int) bool {
			return games[i].TotalPlayMinutes() < games[j].TotalPlayMinutes()
		})
	case OrderPlayCount:
		sort.SliceStable(games, func(i, j int) bool {
			return games[i].PlayCount() < games[j].PlayCount()
		})
	case OrderRating:
		sort.SliceStable(games, func(i, j int) bool {
			return ratingOrZero(games[i]) < ratingOrZero(games[j])
		})
	case OrderBeatTime:
		sort.SliceStable(games, func(i, j int) bool {
			return beatenOrZero(games[i]) < beatenOrZero(games[j])
		})
	case OrderDateAdded:
		sort.SliceStable(games, func(i, j int) bool {
			return games[i].Added.Before(games[j].Added)
		})
	case OrderLastPlayed:
		// Never-played games lead, newest additions first, followed by
		// played games from longest idle to most recent.
		var neverPlayed, played []*Game
		for _, game := range games {
			if game.LastPlayed() == nil {
				neverPlayed = append(neverPlayed, game)
			} else {
				played = append(played, game)
			}
		}
		sort.SliceStable(neverPlayed, func(i, j int) bool {
			return neverPlayed[i].Added.After(neverPlayed[j].Added)
		})
		sort.SliceStable(played, func(i, j int) bool {
			return played[i].LastPlayed().Before(*played[j].LastPlayed())
		})
		copy(games, append(neverPlayed, played...))
	default:
		sort.SliceStable(games, func(i, j int) bool {
			return games[i].Title < games[j].Title
		})
	}
}

func ratingOrZero(g *Game) int {
	if r := g.Data.AverageRating(); r != nil {
		return *r
	}
	return 0
}

func beatenOrZero(g *Game) int {
	if b := g.BeatenIn(); b != nil {
		return *b
	}
	return 0
}
