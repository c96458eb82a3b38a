package catalog

import "github.com/balonis/storefront/pkg/backend"

// Tier separates failures that replace the page from those shown inline.
type Tier string

const (
	TierBootstrap Tier = "bootstrap"
	TierRefresh   Tier = "refresh"
)

const (
	MessageLookupsFailed  = "Błąd ładowania danych"
	MessageProductsFailed = "Błąd ładowania produktów"
)

type Failure struct {
	Tier    Tier   `json:"tier"`
	Message string `json:"message"`
}

// State is owned by a single controller loop; snapshots share the
// slices, which are replaced wholesale and never mutated in place.
type State struct {
	Products   []backend.Product  `json:"products"`
	Categories []backend.Category `json:"categories"`
	Colors     []backend.Color    `json:"colors"`
	Sources    []backend.Source   `json:"sources"`
	Loading    bool               `json:"loading"`
	Error      *Failure           `json:"error"`
	Filters    Filters            `json:"filters"`

	Mounted        bool   `json:"-"`
	LookupsPending bool   `json:"-"`
	Epoch          uint64 `json:"-"`
	Seq            uint64 `json:"-"`
	tier           Tier
}

// Idle reports that no lookups or products request is outstanding.
func (s State) Idle() bool {
	return !s.Loading && !s.LookupsPending
}

type ViewKind string

const (
	ViewBootstrapError ViewKind = "bootstrap_error"
	ViewRefreshError   ViewKind = "refresh_error"
	ViewLoading        ViewKind = "loading"
	ViewEmpty          ViewKind = "empty"
	ViewGrid           ViewKind = "grid"
)

// View derives what the page shows; the first matching row wins.
func (s State) View() ViewKind {
	switch {
	case s.Error != nil && s.Error.Tier == TierBootstrap:
		return ViewBootstrapError
	case s.Error != nil:
		return ViewRefreshError
	case s.Loading:
		return ViewLoading
	case len(s.Products) == 0:
		return ViewEmpty
	default:
		return ViewGrid
	}
}

// ShowsGrid reports whether product cards are rendered.
func (s State) ShowsGrid() bool {
	return s.View() == ViewGrid
}
