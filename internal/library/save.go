package library

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gamedex/internal/errkind"
	"gamedex/internal/logging"
)

const backupInfix = ".backup-"

// Save copies the current library file into the backup directory, prunes
// backups past the retention window, then writes the full map back
// atomically. It also logs a per-provider census for observability.
func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked()
}

func (s *Store) saveLocked() error {
	if err := s.backupCurrentFile(); err != nil {
		s.logger.Warn("library backup failed",
			logging.String(logging.FieldEventType, "library_backup_failed"),
			logging.Error(err))
	}

	data, err := json.MarshalIndent(s.games, "", "  ")
	if err != nil {
		return errkind.Wrap(errkind.ErrValidation, "library", "save", "encode library", err)
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errkind.Wrap(errkind.ErrTransient, "library", "save", "create library directory", err)
		}
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return errkind.Wrap(errkind.ErrTransient, "library", "save", "write library file", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return errkind.Wrap(errkind.ErrTransient, "library", "save", "replace library file", err)
	}

	s.logCensusLocked()
	return nil
}

func (s *Store) backupCurrentFile() error {
	if s.backupDir == "" {
		return nil
	}
	current, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.backupDir, 0o755); err != nil {
		return err
	}
	name := filepath.Base(s.path) + backupInfix + formatSessionStamp(s.now())
	if err := os.WriteFile(filepath.Join(s.backupDir, name), current, 0o644); err != nil {
		return err
	}
	s.pruneBackups()
	return nil
}

func (s *Store) pruneBackups() {
	entries, err := os.ReadDir(s.backupDir)
	if err != nil {
		return
	}
	cutoff := s.now().Add(-s.backupRetention)
	for _, entry := range entries {
		stamp, ok := backupStamp(entry.Name())
		if !ok {
			continue
		}
		if stamp.Before(cutoff) {
			path := filepath.Join(s.backupDir, entry.Name())
			if err := os.Remove(path); err == nil {
				s.logger.Info("deleted expired backup",
					logging.String(logging.FieldEventType, "library_backup_pruned"),
					logging.String("backup", entry.Name()))
			}
		}
	}
}

// backupStamp parses the timestamp suffix of a backup file name.
func backupStamp(name string) (time.Time, bool) {
	idx := strings.LastIndex(name, backupInfix)
	if idx < 0 {
		return time.Time{}, false
	}
	suffix := name[idx+len(backupInfix):]
	if len(suffix) != sessionStampLen {
		return time.Time{}, false
	}
	stamp, err := time.ParseInLocation(sessionStampLayout, suffix[:len(sessionStampLayout)], time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return stamp, true
}

func (s *Store) logCensusLocked() {
	census := map[string]int{}
	for _, game := range s.games {
		for _, item := range game.Data {
			census[item.Type()]++
		}
	}
	attrs := []logging.Attr{
		logging.String(logging.FieldEventType, "library_saved"),
		logging.Int("games", len(s.games)),
	}
	for providerType, count := range census {
		attrs = append(attrs, logging.Int("with_"+strings.ReplaceAll(providerType, "-", "_"), count))
	}
	s.logger.Info("library saved", logging.Args(attrs...)...)
}
