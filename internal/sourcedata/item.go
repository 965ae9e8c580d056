package sourcedata

// ImageRef points at one cover image: the cached local file and the remote
// URL it was downloaded from. Either side may be empty; a ref with a URL
// but no local path is a pending download.
type ImageRef struct {
	LocalPath string `json:"local_path,omitempty"`
	SourceURL string `json:"source_url,omitempty"`
}

// Item is the typed payload one provider contributes for one game. Each
// variant carries a fixed priority; higher priority wins when multiple
// providers disagree on a derived field.
type Item interface {
	// Type returns the provider type tag, stable across releases since it
	// keys the serialized form.
	Type() string

	// Priority returns the fixed merge priority for this provider type.
	Priority() int

	// SourceTitle returns the title as the provider reported it, which may
	// differ cosmetically from the library title.
	SourceTitle() string

	// Merge folds a freshly fetched payload of the same type into the
	// receiver. Most variants keep the first-fetched payload and treat
	// repeat fetches as no-ops.
	Merge(newer Item)
}

// Capability interfaces. The merge engine asks for these explicitly
// instead of switching on concrete types, so a variant opts into a derived
// field by implementing the matching method.

// Rated is implemented by items carrying a review score on a 0-100 scale.
type Rated interface {
	RatingValue() *int
}

// Summarized is implemented by items carrying a description text.
type Summarized interface {
	SummaryText() string
}

// Imaged is implemented by items carrying a cover image reference.
type Imaged interface {
	CoverImage() *ImageRef
}

// ControllerAware is implemented by items that know whether the game plays
// well with a gamepad. Nil means the provider had no opinion.
type ControllerAware interface {
	ControllerFriendly() *bool
}

// Developed is implemented by items that name the developer.
type Developed interface {
	DeveloperName() string
}

// Genred is implemented by items carrying genre tags.
type Genred interface {
	GenreNames() []string
}
