package sourcedata

// Provider type tags. These key the serialized form of every item, so they
// must never change once a library file has been written with them.
const (
	TypeSteamInfo = "steam-info"
	TypeIGDB      = "igdb"
	TypeCryoTank  = "cryotank"
	TypeSalenauts = "salenauts"
	TypeUser      = "user"
)

// Merge priorities per provider type. Higher wins.
const (
	PrioritySteamInfo = 100
	PriorityIGDB      = 40
	PriorityCryoTank  = 50
	PrioritySalenauts = 50
	PriorityUser      = 1000
)

// SteamInfo is the payload fetched from the Steam storefront: description,
// review score, cover art, controller support and total recorded play time.
type SteamInfo struct {
	Source          string    `json:"source_title,omitempty"`
	AppID           int64     `json:"app_id,omitempty"`
	Summary         string    `json:"summary,omitempty"`
	Rating          *int      `json:"rating,omitempty"`
	PlayTimeForever int       `json:"play_time_forever,omitempty"`
	Gamepad         *bool     `json:"gamepad_friendly,omitempty"`
	Cover           *ImageRef `json:"cover,omitempty"`
}

func (s *SteamInfo) Type() string              { return TypeSteamInfo }
func (s *SteamInfo) Priority() int             { return PrioritySteamInfo }
func (s *SteamInfo) SourceTitle() string       { return s.Source }
func (s *SteamInfo) RatingValue() *int         { return s.Rating }
func (s *SteamInfo) SummaryText() string       { return s.Summary }
func (s *SteamInfo) CoverImage() *ImageRef     { return s.Cover }
func (s *SteamInfo) ControllerFriendly() *bool { return s.Gamepad }

// Merge keeps the first-fetched payload except for play time, which is a
// counter and always moves forward.
func (s *SteamInfo) Merge(newer Item) {
	n, ok := newer.(*SteamInfo)
	if !ok {
		return
	}
	if n.PlayTimeForever > s.PlayTimeForever {
		s.PlayTimeForever = n.PlayTimeForever
	}
}

// TimeToBeat holds completion estimates in seconds. Zero-valued fields mean
// the upstream had no figure.
type TimeToBeat struct {
	Complete *int `json:"complete,omitempty"`
	Normal   *int `json:"normal,omitempty"`
	Fast     *int `json:"fast,omitempty"`
}

// IGDB is the payload fetched from the IGDB API: user rating, summary,
// developer, genres, completion estimates and cover art.
type IGDB struct {
	Source     string      `json:"source_title,omitempty"`
	ID         int64       `json:"id,omitempty"`
	Developer  string      `json:"developer,omitempty"`
	Rating     *int        `json:"rating,omitempty"`
	Genres     []string    `json:"genres,omitempty"`
	TimeToBeat *TimeToBeat `json:"time_to_beat,omitempty"`
	Summary    string      `json:"summary,omitempty"`
	Cover      *ImageRef   `json:"cover,omitempty"`
}

func (i *IGDB) Type() string          { return TypeIGDB }
func (i *IGDB) Priority() int         { return PriorityIGDB }
func (i *IGDB) SourceTitle() string   { return i.Source }
func (i *IGDB) RatingValue() *int     { return i.Rating }
func (i *IGDB) SummaryText() string   { return i.Summary }
func (i *IGDB) CoverImage() *ImageRef { return i.Cover }
func (i *IGDB) DeveloperName() string { return i.Developer }
func (i *IGDB) GenreNames() []string  { return i.Genres }

// Merge folds a fresh fetch into the stored payload. Ratings and completion
// estimates track the upstream, the developer is back-filled only when
// missing, and the cover is replaced when the upstream URL changed.
func (i *IGDB) Merge(newer Item) {
	n, ok := newer.(*IGDB)
	if !ok {
		return
	}
	i.Rating = n.Rating
	if n.TimeToBeat != nil {
		ttb := *n.TimeToBeat
		i.TimeToBeat = &ttb
	}
	if i.Developer == "" {
		i.Developer = n.Developer
	}
	if n.Cover != nil && (i.Cover == nil || n.Cover.SourceURL != i.Cover.SourceURL) {
		cover := *n.Cover
		i.Cover = &cover
	}
	if len(n.Genres) > 0 {
		i.Genres = append([]string(nil), n.Genres...)
	}
}

// CryoTank is the payload scraped from the cryotank grid-image gallery:
// cover art only.
type CryoTank struct {
	Source string    `json:"source_title,omitempty"`
	Cover  *ImageRef `json:"cover,omitempty"`
}

func (c *CryoTank) Type() string          { return TypeCryoTank }
func (c *CryoTank) Priority() int         { return PriorityCryoTank }
func (c *CryoTank) SourceTitle() string   { return c.Source }
func (c *CryoTank) CoverImage() *ImageRef { return c.Cover }
func (c *CryoTank) Merge(Item)            {}

// Salenauts is the payload scraped from the salenauts deal tracker: the
// game page URL and its icon.
type Salenauts struct {
	Source string    `json:"source_title,omitempty"`
	URL    string    `json:"url,omitempty"`
	Cover  *ImageRef `json:"cover,omitempty"`
}

func (s *Salenauts) Type() string          { return TypeSalenauts }
func (s *Salenauts) Priority() int         { return PrioritySalenauts }
func (s *Salenauts) SourceTitle() string   { return s.Source }
func (s *Salenauts) CoverImage() *ImageRef { return s.Cover }
func (s *Salenauts) Merge(Item)            {}

// User is a user-supplied override: a hand-picked cover image or a manual
// controller-support flag. Outranks every remote provider.
type User struct {
	Source  string    `json:"source_title,omitempty"`
	Gamepad *bool     `json:"gamepad_friendly,omitempty"`
	Cover   *ImageRef `json:"cover,omitempty"`
}

func (u *User) Type() string              { return TypeUser }
func (u *User) Priority() int             { return PriorityUser }
func (u *User) SourceTitle() string       { return u.Source }
func (u *User) CoverImage() *ImageRef     { return u.Cover }
func (u *User) ControllerFriendly() *bool { return u.Gamepad }

// Merge lets the latest user choice win; overrides are always deliberate.
func (u *User) Merge(newer Item) {
	n, ok := newer.(*User)
	if !ok {
		return
	}
	if n.Cover != nil {
		cover := *n.Cover
		u.Cover = &cover
	}
	if n.Gamepad != nil {
		u.Gamepad = n.Gamepad
	}
	if n.Source != "" {
		u.Source = n.Source
	}
}

var (
	_ Item = (*SteamInfo)(nil)
	_ Item = (*IGDB)(nil)
	_ Item = (*CryoTank)(nil)
	_ Item = (*Salenauts)(nil)
	_ Item = (*User)(nil)
)
