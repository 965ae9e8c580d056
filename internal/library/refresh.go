package library

import (
	"context"
	"runtime"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"gamedex/internal/errkind"
	"gamedex/internal/logging"
	"gamedex/internal/provider"
	"gamedex/internal/sourcedata"
)

// UpdateGame runs every registered provider for one record, honoring the
// refresh policy: a provider whose last attempt is younger than the
// max-age window is skipped unless force is set, and a provider whose
// payload is already stored has only its timestamp refreshed. Afterwards
// every stored image reference is re-validated and re-downloaded if the
// cached file went missing. Reports whether anything changed.
func (s *Store) UpdateGame(ctx context.Context, id string, force bool) (bool, error) {
	s.mu.RLock()
	game, ok := s.games[id]
	if !ok {
		s.mu.RUnlock()
		return false, errkind.Wrap(errkind.ErrNotFound, "library", "update", "unknown game id "+id, nil)
	}
	gameTitle := game.Title
	s.mu.RUnlock()

	changed := false
	if s.registry != nil {
		for _, p := range s.registry.All() {
			if s.refreshProvider(ctx, id, gameTitle, p, force) {
				changed = true
			}
		}
	}
	if s.revalidateImages(ctx, id, gameTitle) {
		changed = true
	}
	return changed, nil
}

func (s *Store) refreshProvider(ctx context.Context, id, gameTitle string, p provider.Provider, force bool) bool {
	s.mu.RLock()
	game, ok := s.games[id]
	if !ok {
		s.mu.RUnlock()
		return false
	}
	lastUpdate, attempted := game.LastUpdate[p.Type()]
	existing := game.Data.ByType(p.Type())
	s.mu.RUnlock()

	if !force && attempted && s.now().Sub(lastUpdate) < s.maxDataAge {
		return false
	}

	// A stored payload is kept as-is on a routine refresh; only a forced
	// update re-fetches and merges.
	if existing != nil && !force {
		s.stampProvider(id, p.Type())
		return false
	}

	item := s.registry.Fetch(ctx, p, gameTitle, force)
	if item == nil {
		if existing != nil {
			s.stampProvider(id, p.Type())
		}
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	game, ok = s.games[id]
	if !ok {
		return false
	}
	added := game.Data.Upsert(item)
	game.LastUpdate[p.Type()] = s.now()
	return added
}

func (s *Store) stampProvider(id, providerType string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if game, ok := s.games[id]; ok {
		game.LastUpdate[providerType] = s.now()
	}
}

// revalidateImages re-downloads any stored image whose cached file is
// gone but whose source URL survives.
func (s *Store) revalidateImages(ctx context.Context, id, gameTitle string) bool {
	if s.images == nil {
		return false
	}
	s.mu.RLock()
	game, ok := s.games[id]
	if !ok {
		s.mu.RUnlock()
		return false
	}
	type pending struct {
		ref          *sourcedata.ImageRef
		providerType string
	}
	var refs []pending
	for _, item := range game.Data {
		imaged, ok := item.(sourcedata.Imaged)
		if !ok {
			continue
		}
		ref := imaged.CoverImage()
		if ref == nil || ref.SourceURL == "" {
			continue
		}
		refs = append(refs, pending{ref: ref, providerType: item.Type()})
	}
	s.mu.RUnlock()

	changed := false
	for _, p := range refs {
		before := p.ref.LocalPath
		if err := s.images.EnsureLocal(ctx, p.ref, p.providerType, gameTitle); err != nil {
			s.logger.Warn("image revalidation failed",
				logging.String(logging.FieldEventType, "image_download_failed"),
				logging.String(logging.FieldGameID, id),
				logging.String(logging.FieldProvider, p.providerType),
				logging.Error(err))
			continue
		}
		if p.ref.LocalPath != before {
			changed = true
		}
	}
	return changed
}

// UpdateAll refreshes every installed game that has no provider data yet,
// fanned out over a bounded worker pool. Records are disjoint, so workers
// share nothing but the store itself. After the batch a sequential pass
// reconciles play times against the storefront counters, then the library
// is persisted. Returns the number of games that changed.
func (s *Store) UpdateAll(ctx context.Context, onUpdated func(id string)) (int, error) {
	s.mu.RLock()
	var ids []string
	for id, game := range s.games {
		if !game.Removed() && len(game.Data) == 0 {
			ids = append(ids, id)
		}
	}
	s.mu.RUnlock()

	batchID := uuid.NewString()
	s.logger.Info("refresh batch started",
		logging.String(logging.FieldEventType, "library_refresh_started"),
		logging.String(logging.FieldBatchID, batchID),
		logging.Int("games", len(ids)))

	var group errgroup.Group
	group.SetLimit(runtime.NumCPU())
	updates := make(chan string, len(ids))

	// Callbacks fire as games finish, not after the whole batch.
	updated := 0
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		for id := range updates {
			updated++
			if onUpdated != nil {
				onUpdated(id)
			}
		}
	}()

	for _, id := range ids {
		id := id
		group.Go(func() error {
			changed, err := s.UpdateGame(ctx, id, false)
			if err != nil {
				// One stubborn game must not sink the batch.
				s.logger.Warn("game refresh failed",
					logging.String(logging.FieldEventType, "library_refresh_game_failed"),
					logging.String(logging.FieldBatchID, batchID),
					logging.String(logging.FieldGameID, id),
					logging.Error(err))
				return nil
			}
			if changed {
				updates <- id
			}
			return nil
		})
	}
	group.Wait()
	close(updates)
	<-drained

	s.reconcilePlayTimes(ctx)
	if err := s.Save(); err != nil {
		return updated, err
	}
	s.logger.Info("refresh batch finished",
		logging.String(logging.FieldEventType, "library_refresh_finished"),
		logging.String(logging.FieldBatchID, batchID),
		logging.Int("updated", updated))
	return updated, nil
}

// reconcilePlayTimes copies the authoritative storefront play-time
// counters onto the matching stored payloads.
func (s *Store) reconcilePlayTimes(ctx context.Context) {
	if s.playTimes == nil {
		return
	}
	minutes, err := s.playTimes.OwnedGames(ctx)
	if err != nil {
		s.logger.Warn("play time reconciliation failed",
			logging.String(logging.FieldEventType, "library_playtime_failed"),
			logging.Error(err))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	reconciled := 0
	for _, game := range s.games {
		si, ok := game.Data.ByType(sourcedata.TypeSteamInfo).(*sourcedata.SteamInfo)
		if !ok || si.AppID == 0 {
			continue
		}
		if played, owned := minutes[si.AppID]; owned && played != si.PlayTimeForever {
			si.PlayTimeForever = played
			reconciled++
		}
	}
	s.logger.Info("play times reconciled",
		logging.String(logging.FieldEventType, "library_playtime_reconciled"),
		logging.Int("games", reconciled))
}
