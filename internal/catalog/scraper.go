package catalog

import (
	"context"
	"time"

	"gamedex/internal/logging"
)

// StartScraping launches the background worker that sweeps the missing-id
// list. Any previous worker is stopped first, so at most one scraper
// goroutine is ever alive per cache.
func (c *Cache) StartScraping() {
	c.StopScraping()

	c.scrapeMu.Lock()
	defer c.scrapeMu.Unlock()

	c.stop = make(chan struct{})
	c.done = make(chan struct{})
	go c.scrapeLoop(c.stop, c.done)

	c.logger.Info("background scraper started",
		logging.String(logging.FieldEventType, "catalog_scrape_started"),
		logging.Duration("rate_limit", c.rateLimit))
}

// StopScraping signals the background worker and blocks until it has
// exited. After it returns no further disk writes happen on the scraper's
// behalf. Safe to call when no worker is running.
func (c *Cache) StopScraping() {
	c.scrapeMu.Lock()
	stop, done := c.stop, c.done
	c.stop, c.done = nil, nil
	c.scrapeMu.Unlock()

	if stop == nil {
		return
	}
	close(stop)
	<-done

	c.logger.Info("background scraper stopped",
		logging.String(logging.FieldEventType, "catalog_scrape_stopped"))
}

func (c *Cache) scrapeLoop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	for {
		select {
		case <-stop:
			return
		default:
		}
		if !c.sweep(stop) {
			// Nothing left to try this pass; idle briefly before the
			// next sweep so an exhausted list does not spin.
			select {
			case <-stop:
				return
			case <-time.After(c.rateLimit):
			}
		}
	}
}

// sweep scans forward from a pseudo-random offset and stops after the first
// discovery. Returns true when at least one remote lookup was issued.
func (c *Cache) sweep(stop <-chan struct{}) bool {
	c.mu.Lock()
	total := len(c.missing)
	c.mu.Unlock()
	if total == 0 {
		return false
	}

	queried := false
	for i := c.rng.Intn(total); ; i++ {
		select {
		case <-stop:
			return queried
		default:
		}

		c.mu.Lock()
		if i >= len(c.missing) {
			c.mu.Unlock()
			return queried
		}
		m := c.missing[i]
		if _, present := c.entries[m.id]; present {
			// Discovered through another path; just drop it.
			c.missing = append(c.missing[:i], c.missing[i+1:]...)
			err := c.saveMissingLocked()
			c.mu.Unlock()
			if err != nil {
				c.logger.Error("persist missing list failed",
					logging.String(logging.FieldEventType, "catalog_persist_failed"),
					logging.Error(err))
			}
			i--
			continue
		}
		c.mu.Unlock()

		if !m.checked.IsZero() && c.now().Sub(m.checked) < c.cooldown {
			continue
		}

		// External quota: one request per fixed delay.
		select {
		case <-stop:
			return queried
		case <-time.After(c.rateLimit):
		}

		queried = true
		entry, err := c.remote.Lookup(context.Background(), m.id)
		switch {
		case err != nil:
			c.logger.Warn("scraper lookup failed",
				logging.String(logging.FieldEventType, "catalog_scrape_lookup_failed"),
				logging.Int64(logging.FieldCatalogID, m.id),
				logging.Error(err))
			c.stampChecked(i, m.id)
		case entry != nil && c.typeAllowed(entry.Type):
			c.logger.Info("scraper discovered entry",
				logging.String(logging.FieldEventType, "catalog_scrape_found"),
				logging.Int64(logging.FieldCatalogID, entry.ID),
				logging.String(logging.FieldTitle, entry.Title))
			c.AddOrUpdate(*entry)
			return true
		default:
			c.stampChecked(i, m.id)
		}
	}
}

func (c *Cache) stampChecked(index int, id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if index < len(c.missing) && c.missing[index].id == id {
		c.missing[index].checked = c.now()
	} else {
		for i := range c.missing {
			if c.missing[i].id == id {
				c.missing[i].checked = c.now()
				break
			}
		}
	}
	if err := c.saveMissingLocked(); err != nil {
		c.logger.Error("persist missing list failed",
			logging.String(logging.FieldEventType, "catalog_persist_failed"),
			logging.Error(err))
	}
}
