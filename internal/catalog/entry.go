package catalog

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"gamedex/internal/title"
)

// Entry is one row of the external catalog cache: a numeric id mapped to a
// typed, normalized title.
type Entry struct {
	ID              int64
	Type            string
	NormalizedTitle string
	Title           string
}

// NewEntry builds an entry from a remote lookup result, normalizing the
// display title.
func NewEntry(id int64, typeTag, displayTitle string) Entry {
	return Entry{
		ID:              id,
		Type:            strings.ToLower(strings.TrimSpace(typeTag)),
		NormalizedTitle: title.Normalize(displayTitle),
		Title:           strings.TrimSpace(displayTitle),
	}
}

// ParseLine decodes the cache file format: id;type;normalizedTitle;title.
// The title itself may contain semicolons, so only the first three
// separators split.
func ParseLine(line string) (Entry, error) {
	parts := strings.SplitN(line, ";", 4)
	if len(parts) != 4 {
		return Entry{}, fmt.Errorf("expected 4 fields, got %d", len(parts))
	}
	id, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return Entry{}, fmt.Errorf("parse id %q: %w", parts[0], err)
	}
	if id <= 0 {
		return Entry{}, fmt.Errorf("non-positive id %d", id)
	}
	return Entry{
		ID:              id,
		Type:            strings.ToLower(parts[1]),
		NormalizedTitle: parts[2],
		Title:           parts[3],
	}, nil
}

// Line renders the entry in the cache file format.
func (e Entry) Line() string {
	return fmt.Sprintf("%d;%s;%s;%s", e.ID, e.Type, e.NormalizedTitle, e.Title)
}

func (e Entry) String() string {
	return e.Line()
}

const missingDateLayout = "2006-01-02"

// missingEntry is an id known to be absent from the catalog, with the date
// of the last failed lookup (zero when never checked).
type missingEntry struct {
	id      int64
	checked time.Time
}

func parseMissingLine(line string) (missingEntry, error) {
	parts := strings.SplitN(line, ";", 2)
	id, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return missingEntry{}, fmt.Errorf("parse missing id %q: %w", parts[0], err)
	}
	m := missingEntry{id: id}
	if len(parts) == 2 && strings.TrimSpace(parts[1]) != "" {
		checked, err := time.Parse(missingDateLayout, parts[1])
		if err != nil {
			return missingEntry{}, fmt.Errorf("parse checked date %q: %w", parts[1], err)
		}
		m.checked = checked
	}
	return m, nil
}

func (m missingEntry) line() string {
	if m.checked.IsZero() {
		return strconv.FormatInt(m.id, 10)
	}
	return fmt.Sprintf("%d;%s", m.id, m.checked.Format(missingDateLayout))
}
