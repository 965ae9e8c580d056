package provider

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gamedex/internal/logging"
	"gamedex/internal/sourcedata"
)

// Provider is one pluggable metadata source. Implementations return a nil
// item with a nil error when they simply have nothing for the title; an
// error means the attempt failed and may be retried on a later refresh.
type Provider interface {
	// Type returns the provider type tag, matching the tag of the items
	// it produces.
	Type() string

	// GetData fetches the provider's payload for a title. When
	// ignoreLocalCache is set the provider bypasses any local lookup
	// caches and goes straight to its upstream.
	GetData(ctx context.Context, gameTitle string, ignoreLocalCache bool) (sourcedata.Item, error)
}

// Registry holds the enabled providers in registration order, which by
// convention is also descending reliability order for log readability.
type Registry struct {
	providers []Provider
	logger    *slog.Logger
}

// NewRegistry builds a registry over the given providers.
func NewRegistry(logger *slog.Logger, providers ...Provider) *Registry {
	return &Registry{
		providers: providers,
		logger:    logging.NewComponentLogger(logger, "provider"),
	}
}

// All returns the registered providers in order.
func (r *Registry) All() []Provider {
	return r.providers
}

// Fetch runs one provider for one title, translating every failure mode
// into "no data": errors are logged and swallowed, panics are recovered.
// One misbehaving source never blocks the others.
func (r *Registry) Fetch(ctx context.Context, p Provider, gameTitle string, ignoreLocalCache bool) (item sourcedata.Item) {
	defer func() {
		if recovered := recover(); recovered != nil {
			item = nil
			r.logger.Error("provider panicked",
				logging.String(logging.FieldEventType, "provider_panic"),
				logging.String(logging.FieldProvider, p.Type()),
				logging.String(logging.FieldTitle, gameTitle),
				logging.Error(fmt.Errorf("%v", recovered)))
		}
	}()

	fetchStart := time.Now()
	item, err := p.GetData(ctx, gameTitle, ignoreLocalCache)
	elapsed := time.Since(fetchStart)
	if err != nil {
		r.logger.Warn("provider fetch failed",
			logging.String(logging.FieldEventType, "provider_fetch_failed"),
			logging.String(logging.FieldProvider, p.Type()),
			logging.String(logging.FieldTitle, gameTitle),
			logging.Duration("elapsed", elapsed),
			logging.Error(err))
		return nil
	}
	if item == nil {
		r.logger.Debug("provider has no data",
			logging.String(logging.FieldEventType, "provider_no_data"),
			logging.String(logging.FieldProvider, p.Type()),
			logging.String(logging.FieldTitle, gameTitle),
			logging.Duration("elapsed", elapsed))
		return nil
	}
	r.logger.Info("provider fetched data",
		logging.String(logging.FieldEventType, "provider_fetched"),
		logging.String(logging.FieldProvider, p.Type()),
		logging.String(logging.FieldTitle, gameTitle),
		logging.String("source_title", item.SourceTitle()),
		logging.Duration("elapsed", elapsed))
	return item
}
