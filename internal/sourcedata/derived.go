package sourcedata

// Derived fields are computed on read, never stored. Each picker considers
// only items exposing the capability with a usable value, takes the highest
// priority, and breaks ties by slice order (first wins). Rating is the one
// exception: it averages across providers instead of picking.

// BestImage returns the highest-priority cover image with a local path.
func (items Items) BestImage() *ImageRef {
	var best *ImageRef
	bestPriority := 0
	for _, item := range items {
		imaged, ok := item.(Imaged)
		if !ok {
			continue
		}
		ref := imaged.CoverImage()
		if ref == nil || ref.LocalPath == "" {
			continue
		}
		if best == nil || item.Priority() > bestPriority {
			best = ref
			bestPriority = item.Priority()
		}
	}
	return best
}

// AllImages returns every cover image with a local path, highest priority
// first.
func (items Items) AllImages() []*ImageRef {
	type candidate struct {
		ref      *ImageRef
		priority int
	}
	var found []candidate
	for _, item := range items {
		imaged, ok := item.(Imaged)
		if !ok {
			continue
		}
		ref := imaged.CoverImage()
		if ref == nil || ref.LocalPath == "" {
			continue
		}
		found = append(found, candidate{ref, item.Priority()})
	}
	if len(found) == 0 {
		return nil
	}
	// Stable insertion sort keeps the first-wins tie break.
	for i := 1; i < len(found); i++ {
		for j := i; j > 0 && found[j].priority > found[j-1].priority; j-- {
			found[j], found[j-1] = found[j-1], found[j]
		}
	}
	refs := make([]*ImageRef, len(found))
	for i, c := range found {
		refs[i] = c.ref
	}
	return refs
}

// BestSummary returns the highest-priority non-empty description.
func (items Items) BestSummary() string {
	best := ""
	bestPriority := 0
	for _, item := range items {
		summarized, ok := item.(Summarized)
		if !ok || summarized.SummaryText() == "" {
			continue
		}
		if best == "" || item.Priority() > bestPriority {
			best = summarized.SummaryText()
			bestPriority = item.Priority()
		}
	}
	return best
}

// GamepadFriendly returns the highest-priority controller-support opinion,
// or nil when no provider had one.
func (items Items) GamepadFriendly() *bool {
	var best *bool
	bestPriority := 0
	for _, item := range items {
		aware, ok := item.(ControllerAware)
		if !ok {
			continue
		}
		value := aware.ControllerFriendly()
		if value == nil {
			continue
		}
		if best == nil || item.Priority() > bestPriority {
			best = value
			bestPriority = item.Priority()
		}
	}
	return best
}

// Developer returns the highest-priority non-empty developer name.
func (items Items) Developer() string {
	best := ""
	bestPriority := 0
	for _, item := range items {
		developed, ok := item.(Developed)
		if !ok || developed.DeveloperName() == "" {
			continue
		}
		if best == "" || item.Priority() > bestPriority {
			best = developed.DeveloperName()
			bestPriority = item.Priority()
		}
	}
	return best
}

// Genres returns the highest-priority non-empty genre list.
func (items Items) Genres() []string {
	var best []string
	bestPriority := 0
	for _, item := range items {
		genred, ok := item.(Genred)
		if !ok || len(genred.GenreNames()) == 0 {
			continue
		}
		if best == nil || item.Priority() > bestPriority {
			best = genred.GenreNames()
			bestPriority = item.Priority()
		}
	}
	return best
}

// AverageRating returns the arithmetic mean of every provider rating,
// truncated to an int, or nil when no provider rated the game.
func (items Items) AverageRating() *int {
	sum, count := 0, 0
	for _, item := range items {
		rated, ok := item.(Rated)
		if !ok {
			continue
		}
		value := rated.RatingValue()
		if value == nil {
			continue
		}
		sum += *value
		count++
	}
	if count == 0 {
		return nil
	}
	mean := sum / count
	return &mean
}

// SteamPlayMinutes returns the total play time the storefront has
// recorded, or zero when no storefront payload is present.
func (items Items) SteamPlayMinutes() int {
	if si, ok := items.ByType(TypeSteamInfo).(*SteamInfo); ok {
		return si.PlayTimeForever
	}
	return 0
}
