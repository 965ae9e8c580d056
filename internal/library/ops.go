package library

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gamedex/internal/errkind"
	"gamedex/internal/logging"
	"gamedex/internal/sourcedata"
)

// RemoveGame deletes the shortcut file and clears the shortcut path,
// turning the record into a "removed" one that keeps its history.
func (s *Store) RemoveGame(id string) error {
	s.mu.Lock()
	game, ok := s.games[id]
	if !ok {
		s.mu.Unlock()
		return errkind.Wrap(errkind.ErrNotFound, "library", "remove", "unknown game id "+id, nil)
	}
	shortcut := game.Shortcut
	game.Shortcut = ""
	s.mu.Unlock()

	if shortcut != "" {
		if err := os.Remove(shortcut); err != nil && !os.IsNotExist(err) {
			return errkind.Wrap(errkind.ErrTransient, "library", "remove", "delete shortcut", err)
		}
	}
	s.logger.Info("game removed",
		logging.String(logging.FieldEventType, "library_game_removed"),
		logging.String(logging.FieldGameID, id))
	return s.Save()
}

// DeleteGame erases the record entirely, history included. Reports
// whether the id existed.
func (s *Store) DeleteGame(id string) (bool, error) {
	s.mu.Lock()
	game, ok := s.games[id]
	if ok {
		delete(s.games, id)
	}
	s.mu.Unlock()
	if !ok {
		return false, nil
	}

	if game.Shortcut != "" {
		if err := os.Remove(game.Shortcut); err != nil && !os.IsNotExist(err) {
			return true, errkind.Wrap(errkind.ErrTransient, "library", "delete", "delete shortcut", err)
		}
	}
	s.logger.Info("game deleted",
		logging.String(logging.FieldEventType, "library_game_deleted"),
		logging.String(logging.FieldGameID, id),
		logging.String(logging.FieldTitle, game.Title))
	return true, s.Save()
}

// RenameGame moves a record to a new title. Play history survives, but
// provider data is discarded because it was matched against the old
// title; a forced refresh runs in the background and onRefreshed (if
// set) fires with the new id once it finishes. Returns the new id.
func (s *Store) RenameGame(ctx context.Context, id, newTitle string, onRefreshed func(newID string)) (string, error) {
	newTitle = strings.TrimSpace(newTitle)
	if newTitle == "" {
		return "", errkind.Wrap(errkind.ErrValidation, "library", "rename", "new title is empty", nil)
	}
	newID := GameID(newTitle)

	s.mu.Lock()
	game, ok := s.games[id]
	if !ok {
		s.mu.Unlock()
		return "", errkind.Wrap(errkind.ErrNotFound, "library", "rename", "unknown game id "+id, nil)
	}
	for otherID, other := range s.games {
		if otherID != id && strings.EqualFold(other.Title, newTitle) {
			s.mu.Unlock()
			return "", errkind.Wrap(errkind.ErrValidation, "library", "rename",
				fmt.Sprintf("a game titled %q already exists", other.Title), nil)
		}
	}

	shortcut := game.Shortcut
	if shortcut != "" {
		if _, err := os.Stat(shortcut); err != nil {
			shortcut = ""
		}
	}
	if shortcut != "" {
		renamed := filepath.Join(filepath.Dir(shortcut), newTitle+filepath.Ext(shortcut))
		if err := os.Rename(shortcut, renamed); err != nil {
			s.mu.Unlock()
			return "", errkind.Wrap(errkind.ErrTransient, "library", "rename", "rename shortcut", err)
		}
		shortcut = renamed
	}

	// Provider data keyed to the old title would mislabel the new one.
	delete(s.games, id)
	s.games[newID] = &Game{
		Title:      newTitle,
		Shortcut:   shortcut,
		Added:      game.Added,
		Completed:  game.Completed,
		Sessions:   game.Sessions,
		LastUpdate: map[string]time.Time{},
	}
	s.mu.Unlock()

	s.logger.Info("game renamed",
		logging.String(logging.FieldEventType, "library_game_renamed"),
		logging.String("old_id", id),
		logging.String(logging.FieldGameID, newID),
		logging.String(logging.FieldTitle, newTitle))
	if err := s.Save(); err != nil {
		return newID, err
	}

	go func() {
		if _, err := s.UpdateGame(ctx, newID, true); err != nil {
			s.logger.Warn("refresh after rename failed",
				logging.String(logging.FieldEventType, "library_refresh_game_failed"),
				logging.String(logging.FieldGameID, newID),
				logging.Error(err))
		}
		if err := s.Save(); err != nil {
			s.logger.Warn("save after rename refresh failed",
				logging.String(logging.FieldEventType, "library_save_failed"),
				logging.Error(err))
		}
		if onRefreshed != nil {
			onRefreshed(newID)
		}
	}()
	return newID, nil
}

// SetCompleted marks the game beaten as of now.
func (s *Store) SetCompleted(id string) error {
	s.mu.Lock()
	game, ok := s.games[id]
	if !ok {
		s.mu.Unlock()
		return errkind.Wrap(errkind.ErrNotFound, "library", "complete", "unknown game id "+id, nil)
	}
	completed := s.now()
	game.Completed = &completed
	s.mu.Unlock()

	s.logger.Info("game marked beaten",
		logging.String(logging.FieldEventType, "library_game_completed"),
		logging.String(logging.FieldGameID, id))
	return s.Save()
}

// AddSession appends one play session to the record's session log.
func (s *Store) AddSession(id string, start time.Time, minutes int) error {
	if minutes < 0 {
		return errkind.Wrap(errkind.ErrValidation, "library", "session", "negative session length", nil)
	}
	s.mu.Lock()
	game, ok := s.games[id]
	if !ok {
		s.mu.Unlock()
		return errkind.Wrap(errkind.ErrNotFound, "library", "session", "unknown game id "+id, nil)
	}
	game.Sessions += FormatSession(start, minutes) + ";"
	s.mu.Unlock()
	return s.Save()
}

// SetUserImage copies an image file into the cache as the user-supplied
// cover, which outranks every scraped one.
func (s *Store) SetUserImage(id, sourcePath string) error {
	if s.images == nil {
		return errkind.Wrap(errkind.ErrConfiguration, "library", "set_image", "image cache not configured", nil)
	}
	s.mu.RLock()
	game, ok := s.games[id]
	if !ok {
		s.mu.RUnlock()
		return errkind.Wrap(errkind.ErrNotFound, "library", "set_image", "unknown game id "+id, nil)
	}
	gameTitle := game.Title
	s.mu.RUnlock()

	ext := strings.ToLower(filepath.Ext(sourcePath))
	if ext == "" {
		ext = ".jpg"
	}
	dest := s.images.PathFor(sourcedata.TypeUser, gameTitle, ext)
	if err := copyFile(sourcePath, dest); err != nil {
		return errkind.Wrap(errkind.ErrTransient, "library", "set_image", "copy image into cache", err)
	}

	s.mu.Lock()
	if game, ok := s.games[id]; ok {
		game.Data.Upsert(&sourcedata.User{
			Source: gameTitle,
			Cover:  &sourcedata.ImageRef{LocalPath: dest},
		})
	}
	s.mu.Unlock()

	s.logger.Info("user image set",
		logging.String(logging.FieldEventType, "library_user_image_set"),
		logging.String(logging.FieldGameID, id))
	return s.Save()
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dest)
		return err
	}
	return out.Close()
}
