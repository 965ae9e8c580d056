package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"gamedex/internal/errkind"
	"gamedex/internal/logging"
	"gamedex/internal/title"
)

// Remote answers live catalog queries. Search returns every hit for a free
// text title query; Lookup resolves a single numeric id and returns nil
// (no error) when the id does not exist or has a disallowed type.
type Remote interface {
	Search(ctx context.Context, query string) ([]Entry, error)
	Lookup(ctx context.Context, id int64) (*Entry, error)
}

// Options describes cache construction parameters.
type Options struct {
	// Path of the entry cache file. Required; a load failure is fatal.
	Path string
	// AllowedTypes filters entries on load and remote discovery.
	AllowedTypes []string
	// Remote serves cache misses and the background scraper. Optional;
	// without it the cache answers from disk only.
	Remote Remote
	Logger *slog.Logger
	// Scrape starts the background worker immediately after construction.
	Scrape bool
	// RateLimit is the fixed sleep before every scraper remote lookup.
	RateLimit time.Duration
	// Cooldown is how long a failed id lookup suppresses re-querying.
	Cooldown time.Duration
	// MaxID bounds the generated missing-id space.
	MaxID int64
	// Clock overrides time.Now, for tests.
	Clock func() time.Time
	// Rand overrides the sweep-offset source, for tests.
	Rand *rand.Rand
}

// Cache is the persistent external catalog lookup table. All entry and
// missing-list mutations happen under one coarse lock shared between the
// public API and the background scraper.
type Cache struct {
	path        string
	missingPath string
	allowed     []string
	remote      Remote
	logger      *slog.Logger
	rateLimit   time.Duration
	cooldown    time.Duration
	maxID       int64
	now         func() time.Time

	mu      sync.Mutex
	entries map[int64]Entry
	missing []missingEntry
	rng     *rand.Rand

	scrapeMu sync.Mutex
	stop     chan struct{}
	done     chan struct{}
}

// New loads the on-disk entry list and, if scraping is requested, the
// missing-id sidecar (generating it when absent) before starting the
// background worker. A failure reading the entry file is fatal: the caller
// decides whether to run without a catalog at all.
func New(opts Options) (*Cache, error) {
	if strings.TrimSpace(opts.Path) == "" {
		return nil, errkind.Wrap(errkind.ErrConfiguration, "catalog", "New", "cache path required", nil)
	}
	now := opts.Clock
	if now == nil {
		now = time.Now
	}
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(now().UnixNano()))
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 5 * time.Second
	}
	if opts.Cooldown <= 0 {
		opts.Cooldown = 7 * 24 * time.Hour
	}
	if opts.MaxID <= 0 {
		opts.MaxID = 999999
	}

	c := &Cache{
		path:        opts.Path,
		missingPath: opts.Path + ".missing",
		allowed:     normalizeTypes(opts.AllowedTypes),
		remote:      opts.Remote,
		logger:      logging.NewComponentLogger(opts.Logger, "catalog"),
		rateLimit:   opts.RateLimit,
		cooldown:    opts.Cooldown,
		maxID:       opts.MaxID,
		now:         now,
		rng:         rng,
		entries:     make(map[int64]Entry),
	}

	if err := c.load(); err != nil {
		return nil, err
	}

	if opts.Scrape {
		if c.remote == nil {
			c.logger.Warn("scraping requested without a remote client",
				logging.String(logging.FieldEventType, "catalog_scrape_disabled"),
				logging.String(logging.FieldImpact, "missing ids will never be filled"))
		} else {
			if err := c.loadOrGenerateMissing(); err != nil {
				return nil, err
			}
			c.StartScraping()
		}
	}

	return c, nil
}

// GetByTitle resolves a title to a catalog entry. With ignoreCache set the
// in-memory entry set is bypassed and the remote search is consulted
// directly; discovered entries are inserted into the cache either way.
// Returns nil when nothing matches.
func (c *Cache) GetByTitle(ctx context.Context, gameTitle string, ignoreCache bool) (*Entry, error) {
	start := c.now()

	if !ignoreCache {
		if entry, match, ok := c.matchLocal(gameTitle); ok {
			c.logLookup("catalog_lookup_local", gameTitle, entry, match, c.now().Sub(start))
			return &entry, nil
		}
	}

	if c.remote == nil {
		return nil, nil
	}

	results, err := c.remote.Search(ctx, gameTitle)
	if err != nil {
		return nil, errkind.Wrap(errkind.ErrTransient, "catalog", "GetByTitle", gameTitle, err)
	}

	kept := results[:0]
	for _, entry := range results {
		if !c.typeAllowed(entry.Type) {
			continue
		}
		c.AddOrUpdate(entry)
		kept = append(kept, entry)
	}

	candidates := make([]string, len(kept))
	for i, entry := range kept {
		candidates[i] = entry.NormalizedTitle
	}
	match, ok := title.FindBestMatch(gameTitle, candidates)
	if !ok {
		c.logger.Debug("no catalog match",
			logging.String(logging.FieldEventType, "catalog_lookup_miss"),
			logging.String(logging.FieldTitle, gameTitle),
			logging.Int("search_results", len(kept)),
			logging.Duration("elapsed", c.now().Sub(start)))
		return nil, nil
	}
	entry := kept[match.Index]
	c.logLookup("catalog_lookup_remote", gameTitle, entry, match, c.now().Sub(start))
	return &entry, nil
}

// Get returns the entry for id if present.
func (c *Cache) Get(id int64) (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[id]
	return entry, ok
}

// Count returns the number of cached entries.
func (c *Cache) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// MissingCount returns the number of ids awaiting a scraper visit.
func (c *Cache) MissingCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.missing)
}

// AddOrUpdate inserts an entry or replaces a stale title for the same id,
// removes the id from the missing list, and flushes both files. A no-op
// when the entry is already present with the same normalized title.
func (c *Cache) AddOrUpdate(entry Entry) {
	if entry.ID <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.entries[entry.ID]; ok && existing.NormalizedTitle == entry.NormalizedTitle {
		return
	}

	c.entries[entry.ID] = entry
	c.logger.Debug("catalog entry stored",
		logging.String(logging.FieldEventType, "catalog_entry_stored"),
		logging.Int64(logging.FieldCatalogID, entry.ID),
		logging.String(logging.FieldTitle, entry.Title))

	if err := c.saveEntriesLocked(); err != nil {
		c.logger.Error("persist catalog entries failed",
			logging.String(logging.FieldEventType, "catalog_persist_failed"),
			logging.Error(err))
	}
	if c.removeMissingLocked(entry.ID) {
		if err := c.saveMissingLocked(); err != nil {
			c.logger.Error("persist missing list failed",
				logging.String(logging.FieldEventType, "catalog_persist_failed"),
				logging.Error(err))
		}
	}
}

// Close stops the background scraper if it is running.
func (c *Cache) Close() {
	c.StopScraping()
}

func (c *Cache) matchLocal(gameTitle string) (Entry, title.Match, bool) {
	c.mu.Lock()
	snapshot := make([]Entry, 0, len(c.entries))
	for _, entry := range c.entries {
		snapshot = append(snapshot, entry)
	}
	c.mu.Unlock()

	// Ascending id order keeps the first-wins tie-break deterministic.
	sort.Slice(snapshot, func(i, j int) bool { return snapshot[i].ID < snapshot[j].ID })

	candidates := make([]string, len(snapshot))
	for i, entry := range snapshot {
		candidates[i] = entry.NormalizedTitle
	}
	match, ok := title.FindBestMatch(gameTitle, candidates)
	if !ok {
		return Entry{}, title.Match{}, false
	}
	return snapshot[match.Index], match, true
}

func (c *Cache) typeAllowed(typeTag string) bool {
	if len(c.allowed) == 0 {
		return true
	}
	return slices.Contains(c.allowed, strings.ToLower(typeTag))
}

func (c *Cache) logLookup(event, gameTitle string, entry Entry, match title.Match, elapsed time.Duration) {
	c.logger.Info("catalog lookup",
		logging.String(logging.FieldEventType, event),
		logging.String(logging.FieldTitle, gameTitle),
		logging.Int64(logging.FieldCatalogID, entry.ID),
		logging.String("matched_title", entry.Title),
		logging.Int("distance", match.Distance),
		logging.Bool("exact", match.Exact),
		logging.Duration("elapsed", elapsed))
}

func (c *Cache) load() error {
	data, err := os.ReadFile(c.path)
	if err != nil {
		return errkind.Wrap(errkind.ErrConfiguration, "catalog", "load", c.path, err)
	}

	entries := make(map[int64]Entry)
	var badLines int
	for i, line := range strings.Split(string(data), "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		entry, err := ParseLine(line)
		if err != nil {
			badLines++
			c.logger.Warn("skipping corrupt cache line",
				logging.String(logging.FieldEventType, "catalog_line_corrupt"),
				logging.Int("line", i+1),
				logging.Error(err))
			continue
		}
		if !c.typeAllowed(entry.Type) {
			continue
		}
		entries[entry.ID] = entry
	}

	c.mu.Lock()
	c.entries = entries
	c.mu.Unlock()

	c.logger.Info("catalog cache loaded",
		logging.String(logging.FieldEventType, "catalog_loaded"),
		logging.Int("entry_count", len(entries)),
		logging.Int("corrupt_lines", badLines),
		logging.String("path", c.path))
	return nil
}

func (c *Cache) loadOrGenerateMissing() error {
	data, err := os.ReadFile(c.missingPath)
	if err != nil {
		if os.IsNotExist(err) {
			return c.generateMissing()
		}
		return errkind.Wrap(errkind.ErrConfiguration, "catalog", "loadMissing", c.missingPath, err)
	}

	var missing []missingEntry
	for i, line := range strings.Split(string(data), "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		m, err := parseMissingLine(line)
		if err != nil {
			c.logger.Warn("skipping corrupt missing line",
				logging.String(logging.FieldEventType, "catalog_line_corrupt"),
				logging.Int("line", i+1),
				logging.Error(err))
			continue
		}
		missing = append(missing, m)
	}

	c.mu.Lock()
	c.missing = missing
	c.mu.Unlock()

	c.logger.Info("missing id list loaded",
		logging.String(logging.FieldEventType, "catalog_missing_loaded"),
		logging.Int("missing_count", len(missing)))
	return nil
}

func (c *Cache) generateMissing() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.missing = c.missing[:0]
	for id := int64(10); id < c.maxID; id += 10 {
		if _, ok := c.entries[id]; ok {
			continue
		}
		c.missing = append(c.missing, missingEntry{id: id})
	}

	c.logger.Info("missing id list generated",
		logging.String(logging.FieldEventType, "catalog_missing_generated"),
		logging.Int("missing_count", len(c.missing)))
	return c.saveMissingLocked()
}

func (c *Cache) removeMissingLocked(id int64) bool {
	for i, m := range c.missing {
		if m.id == id {
			c.missing = append(c.missing[:i], c.missing[i+1:]...)
			return true
		}
	}
	return false
}

func (c *Cache) saveEntriesLocked() error {
	ids := make([]int64, 0, len(c.entries))
	for id := range c.entries {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	var b strings.Builder
	for _, id := range ids {
		b.WriteString(c.entries[id].Line())
		b.WriteByte('\n')
	}
	return writeFileAtomic(c.path, []byte(b.String()))
}

func (c *Cache) saveMissingLocked() error {
	var b strings.Builder
	for _, m := range c.missing {
		b.WriteString(m.line())
		b.WriteByte('\n')
	}
	return writeFileAtomic(c.missingPath, []byte(b.String()))
}

func writeFileAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

func normalizeTypes(types []string) []string {
	out := make([]string, 0, len(types))
	for _, t := range types {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}
