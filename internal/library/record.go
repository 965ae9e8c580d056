package library

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gamedex/internal/sourcedata"
)

// GameID derives the stable record key from a title.
func GameID(title string) string {
	sum := sha1.Sum([]byte(title))
	return hex.EncodeToString(sum[:])
}

// Session stamps use a fixed-width sortable layout: seconds precision plus
// four digits of sub-second fraction.
const sessionStampLayout = "20060102150405"

const sessionStampLen = len(sessionStampLayout) + 4

// Game is one tracked game. An empty Shortcut means the game is still
// tracked but its launcher entry is gone ("removed"). Sessions is a
// semicolon-delimited log of play sessions, each a start stamp with an
// optional "+minutes" duration.
type Game struct {
	Title      string               `json:"title"`
	Shortcut   string               `json:"shortcut,omitempty"`
	Added      time.Time            `json:"added"`
	Completed  *time.Time           `json:"completed,omitempty"`
	Sessions   string               `json:"sessions,omitempty"`
	Data       sourcedata.Items     `json:"data,omitempty"`
	LastUpdate map[string]time.Time `json:"last_update,omitempty"`
}

// Removed reports whether the game's launcher entry is gone.
func (g *Game) Removed() bool { return g.Shortcut == "" }

// ID returns the derived record key.
func (g *Game) ID() string { return GameID(g.Title) }

func formatSessionStamp(start time.Time) string {
	return start.Format(sessionStampLayout) + fmt.Sprintf("%04d", start.Nanosecond()/100_000)
}

// FormatSession renders one session log entry, without the trailing
// separator.
func FormatSession(start time.Time, minutes int) string {
	if minutes > 0 {
		return fmt.Sprintf("%s+%d", formatSessionStamp(start), minutes)
	}
	return formatSessionStamp(start)
}

type session struct {
	start   time.Time
	minutes int
}

// sessions parses the session log, skipping entries that fail to parse.
func (g *Game) sessions() []session {
	if g.Sessions == "" {
		return nil
	}
	var parsed []session
	for _, entry := range strings.Split(g.Sessions, ";") {
		entry = strings.TrimSpace(entry)
		if len(entry) < sessionStampLen {
			continue
		}
		start, err := time.ParseInLocation(sessionStampLayout, entry[:len(sessionStampLayout)], time.Local)
		if err != nil {
			continue
		}
		if fraction, err := strconv.Atoi(entry[len(sessionStampLayout):sessionStampLen]); err == nil {
			start = start.Add(time.Duration(fraction) * 100 * time.Microsecond)
		}
		s := session{start: start}
		if plus := strings.IndexByte(entry, '+'); plus >= 0 {
			if minutes, err := strconv.Atoi(entry[plus+1:]); err == nil {
				s.minutes = minutes
			}
		}
		parsed = append(parsed, s)
	}
	return parsed
}

// PlayCount returns the number of logged sessions.
func (g *Game) PlayCount() int { return len(g.sessions()) }

// LocalPlayMinutes sums the durations of all logged sessions.
func (g *Game) LocalPlayMinutes() int {
	total := 0
	for _, s := range g.sessions() {
		total += s.minutes
	}
	return total
}

// TotalPlayMinutes is the larger of the storefront counter and the locally
// tracked total.
func (g *Game) TotalPlayMinutes() int {
	if steam := g.Data.SteamPlayMinutes(); steam > g.LocalPlayMinutes() {
		return steam
	}
	return g.LocalPlayMinutes()
}

// LastMonthPlayCount counts sessions started within the last month.
func (g *Game) LastMonthPlayCount(now time.Time) int {
	cutoff := now.AddDate(0, -1, 0)
	count := 0
	for _, s := range g.sessions() {
		if s.start.After(cutoff) {
			count++
		}
	}
	return count
}

// FirstPlayed returns the start of the earliest logged session.
func (g *Game) FirstPlayed() *time.Time {
	sessions := g.sessions()
	if len(sessions) == 0 {
		return nil
	}
	first := sessions[0].start
	return &first
}

// LastPlayed returns the start of the latest logged session.
func (g *Game) LastPlayed() *time.Time {
	sessions := g.sessions()
	if len(sessions) == 0 {
		return nil
	}
	last := sessions[len(sessions)-1].start
	return &last
}

// BeatenIn sums play minutes logged before the completion timestamp, or
// nil for an uncompleted game or one with no session log.
func (g *Game) BeatenIn() *int {
	if g.Completed == nil || g.Sessions == "" {
		return nil
	}
	total := 0
	for _, s := range g.sessions() {
		if s.start.Before(*g.Completed) {
			total += s.minutes
		}
	}
	return &total
}

// playedDates returns the start times of every logged session.
func (g *Game) playedDates() []time.Time {
	sessions := g.sessions()
	if len(sessions) == 0 {
		return nil
	}
	dates := make([]time.Time, len(sessions))
	for i, s := range sessions {
		dates[i] = s.start
	}
	return dates
}

// clone returns a copy safe to hand to callers. Provider payloads are
// shared; callers treat them as read-only.
func (g *Game) clone() Game {
	copied := *g
	copied.Data = append(sourcedata.Items(nil), g.Data...)
	if g.LastUpdate != nil {
		copied.LastUpdate = make(map[string]time.Time, len(g.LastUpdate))
		for k, v := range g.LastUpdate {
			copied.LastUpdate[k] = v
		}
	}
	return copied
}
