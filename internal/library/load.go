package library

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gamedex/internal/errkind"
	"gamedex/internal/logging"
	"gamedex/internal/sourcedata"
	"gamedex/internal/title"
)

// Shortcut extensions picked up by the games directory scan.
var shortcutExtensions = map[string]bool{
	".lnk": true,
	".exe": true,
	".url": true,
	".cmd": true,
	".bat": true,
}

func (s *Store) load() error {
	if err := s.readLibraryFile(); err != nil {
		return err
	}
	if err := s.checkIntegrity(); err != nil {
		return err
	}
	s.fixup()
	if err := s.scanGamesDir(); err != nil {
		return err
	}
	s.logger.Info("library loaded",
		logging.String(logging.FieldEventType, "library_loaded"),
		logging.Int("games", len(s.games)))
	return nil
}

func (s *Store) readLibraryFile() error {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return errkind.Wrap(errkind.ErrCorrupt, "library", "load", "read library file", err)
	}
	var games map[string]*Game
	if err := json.Unmarshal(data, &games); err != nil {
		return errkind.Wrap(errkind.ErrCorrupt, "library", "load", "decode library file", err)
	}
	for id, game := range games {
		if game == nil {
			delete(games, id)
		}
	}
	s.games = games
	if s.games == nil {
		s.games = map[string]*Game{}
	}
	return nil
}

// checkIntegrity enforces the identity invariants. Dead shortcuts are
// cleared, key corruption is rekeyed when safe, and anything requiring
// manual repair aborts the load.
func (s *Store) checkIntegrity() error {
	// Games whose shortcut no longer exists become "removed" but survive.
	for id, game := range s.games {
		if game.Shortcut != "" {
			if _, err := os.Stat(game.Shortcut); err != nil {
				s.logger.Info("shortcut not found, marked removed",
					logging.String(logging.FieldEventType, "library_shortcut_cleared"),
					logging.String(logging.FieldGameID, id),
					logging.String(logging.FieldTitle, game.Title))
				game.Shortcut = ""
			}
		}
	}

	shortcutOwners := map[string]int{}
	for _, game := range s.games {
		if game.Shortcut != "" {
			shortcutOwners[game.Shortcut]++
		}
	}

	var rekey []string
	for id, game := range s.games {
		if game.Shortcut != "" {
			// The shortcut base name is the title's source of truth.
			if derived := title.DeriveTitle(game.Shortcut); derived != game.Title {
				return errkind.Wrap(errkind.ErrCorrupt, "library", "load",
					fmt.Sprintf("record %q title does not match shortcut %q, manual fix needed", game.Title, filepath.Base(game.Shortcut)), nil)
			}
			if shortcutOwners[game.Shortcut] > 1 {
				s.logger.Warn("multiple games point at the same shortcut",
					logging.String(logging.FieldEventType, "library_duplicate_shortcut"),
					logging.String(logging.FieldGameID, id),
					logging.String("shortcut", game.Shortcut))
			}
		}

		if trueID := GameID(game.Title); id != trueID {
			if _, taken := s.games[trueID]; taken {
				return errkind.Wrap(errkind.ErrCorrupt, "library", "load",
					fmt.Sprintf("record %q has corrupt key %s and %s is already in use", game.Title, id, trueID), nil)
			}
			rekey = append(rekey, id)
		}
	}

	for _, oldID := range rekey {
		game := s.games[oldID]
		trueID := GameID(game.Title)
		delete(s.games, oldID)
		s.games[trueID] = game
		s.logger.Info("rekeyed corrupt record",
			logging.String(logging.FieldEventType, "library_rekeyed"),
			logging.String(logging.FieldTitle, game.Title),
			logging.String("old_id", oldID),
			logging.String(logging.FieldGameID, trueID))
	}
	return nil
}

// fixup normalizes loaded records and back-fills provider fields from a
// previous library version. The back-fill is additive: populated fields
// are never overwritten.
func (s *Store) fixup() {
	previous := s.readPreviousLibrary()

	for id, game := range s.games {
		if game.LastUpdate == nil {
			game.LastUpdate = map[string]time.Time{}
		}
		// A refresh stamp without a payload blocks the next fetch for no
		// benefit; drop it.
		for providerType := range game.LastUpdate {
			if game.Data.ByType(providerType) == nil {
				delete(game.LastUpdate, providerType)
			}
		}

		prev, ok := previous[id]
		if !ok {
			continue
		}
		for _, item := range game.Data {
			prevItem := prev.Data.ByType(item.Type())
			if prevItem == nil {
				continue
			}
			backfillItem(item, prevItem)
		}
	}
}

// backfillItem copies provider fields the current record is missing from
// the prior version of the same item.
func backfillItem(current, prev sourcedata.Item) {
	switch cur := current.(type) {
	case *sourcedata.SteamInfo:
		old, ok := prev.(*sourcedata.SteamInfo)
		if !ok {
			return
		}
		if cur.Rating == nil {
			cur.Rating = old.Rating
		}
		if cur.Summary == "" {
			cur.Summary = old.Summary
		}
		if cur.AppID == 0 {
			cur.AppID = old.AppID
		}
		if cur.Source == "" {
			cur.Source = old.Source
		}
		if cur.Gamepad == nil {
			cur.Gamepad = old.Gamepad
		}
	case *sourcedata.Salenauts:
		old, ok := prev.(*sourcedata.Salenauts)
		if !ok {
			return
		}
		if cur.Source == "" {
			cur.Source = old.Source
		}
	case *sourcedata.User:
		old, ok := prev.(*sourcedata.User)
		if !ok {
			return
		}
		if cur.Source == "" {
			cur.Source = old.Source
		}
		if cur.Gamepad == nil {
			cur.Gamepad = old.Gamepad
		}
	}
}

func (s *Store) readPreviousLibrary() map[string]*Game {
	if s.previousPath == "" {
		return nil
	}
	data, err := os.ReadFile(s.previousPath)
	if err != nil {
		s.logger.Warn("previous library unreadable, skipping back-fill",
			logging.String(logging.FieldEventType, "library_fixup_skipped"),
			logging.Error(err))
		return nil
	}
	var games map[string]*Game
	if err := json.Unmarshal(data, &games); err != nil {
		s.logger.Warn("previous library undecodable, skipping back-fill",
			logging.String(logging.FieldEventType, "library_fixup_skipped"),
			logging.Error(err))
		return nil
	}
	return games
}

// scanGamesDir inserts a fresh record per previously-unseen shortcut and
// refreshes the shortcut path of known games unconditionally, which
// handles a moved shortcut whose title did not change.
func (s *Store) scanGamesDir() error {
	if s.gamesDir == "" {
		return nil
	}
	if _, err := os.Stat(s.gamesDir); err != nil {
		s.logger.Warn("games directory missing, scan skipped",
			logging.String(logging.FieldEventType, "library_scan_skipped"),
			logging.String("dir", s.gamesDir))
		return nil
	}

	return filepath.WalkDir(s.gamesDir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() || !shortcutExtensions[strings.ToLower(filepath.Ext(path))] {
			return nil
		}

		gameTitle := title.DeriveTitle(path)
		id := GameID(gameTitle)
		if game, ok := s.games[id]; ok {
			game.Shortcut = path
			return nil
		}
		s.games[id] = &Game{
			Title:      gameTitle,
			Shortcut:   path,
			Added:      s.now(),
			LastUpdate: map[string]time.Time{},
		}
		s.logger.Info("new game discovered",
			logging.String(logging.FieldEventType, "library_game_added"),
			logging.String(logging.FieldGameID, id),
			logging.String(logging.FieldTitle, gameTitle))
		return nil
	})
}
