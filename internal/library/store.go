package library

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"gamedex/internal/errkind"
	"gamedex/internal/imagecache"
	"gamedex/internal/logging"
	"gamedex/internal/playtime"
	"gamedex/internal/provider"
)

// Options describes store construction parameters.
type Options struct {
	// Path is the library file. It need not exist yet.
	Path string
	// PreviousPath optionally points at a library file written by an
	// earlier release, used to back-fill fields on load.
	PreviousPath string
	// GamesDir is the shortcut directory tree scanned for games. Empty
	// disables scanning.
	GamesDir string
	// BackupDir receives timestamped copies of the library file on save.
	BackupDir string
	// BackupRetention bounds how long backups are kept.
	BackupRetention time.Duration
	// MaxDataAge bounds how long a provider fetch stays fresh.
	MaxDataAge time.Duration

	Registry  *provider.Registry
	Images    *imagecache.Store
	PlayTimes *playtime.Client

	Logger *slog.Logger
	Clock  func() time.Time
}

// Store owns the authoritative game map: the only writer of the library
// file, safe for concurrent readers and per-record writers.
type Store struct {
	mu    sync.RWMutex
	games map[string]*Game

	path            string
	previousPath    string
	gamesDir        string
	backupDir       string
	backupRetention time.Duration
	maxDataAge      time.Duration

	registry  *provider.Registry
	images    *imagecache.Store
	playTimes *playtime.Client

	logger   *slog.Logger
	now      func() time.Time
	fileLock *flock.Flock
}

// Open loads the library: deserialize, verify integrity, back-fill from a
// previous version, then scan the games directory for new shortcuts. A
// file lock guards against a second process writing the same library.
func Open(opts Options) (*Store, error) {
	if opts.Path == "" {
		return nil, errkind.Wrap(errkind.ErrConfiguration, "library", "open", "library file path required", nil)
	}
	s := &Store{
		games:           map[string]*Game{},
		path:            opts.Path,
		previousPath:    opts.PreviousPath,
		gamesDir:        opts.GamesDir,
		backupDir:       opts.BackupDir,
		backupRetention: opts.BackupRetention,
		maxDataAge:      opts.MaxDataAge,
		registry:        opts.Registry,
		images:          opts.Images,
		playTimes:       opts.PlayTimes,
		logger:          logging.NewComponentLogger(opts.Logger, "library"),
		now:             opts.Clock,
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.backupRetention <= 0 {
		s.backupRetention = 7 * 24 * time.Hour
	}
	if s.maxDataAge <= 0 {
		s.maxDataAge = 30 * 24 * time.Hour
	}

	s.fileLock = flock.New(opts.Path + ".lock")
	locked, err := s.fileLock.TryLock()
	if err != nil {
		return nil, errkind.Wrap(errkind.ErrConfiguration, "library", "open", "acquire library lock", err)
	}
	if !locked {
		return nil, errkind.Wrap(errkind.ErrConfiguration, "library", "open", "library is locked by another process", nil)
	}

	if err := s.load(); err != nil {
		s.fileLock.Unlock()
		return nil, err
	}
	return s, nil
}

// Close releases the library file lock.
func (s *Store) Close() error {
	return s.fileLock.Unlock()
}

// Get returns a copy of one record.
func (s *Store) Get(id string) (Game, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	game, ok := s.games[id]
	if !ok {
		return Game{}, false
	}
	return game.clone(), true
}

// Count returns the number of tracked games.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.games)
}

// IDs returns every record key, sorted for deterministic iteration.
func (s *Store) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.games))
	for id := range s.games {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
