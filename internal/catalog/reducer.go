package catalog

import "github.com/balonis/storefront/pkg/backend"

// Event is an input to Reduce: a user intent or the completion of a
// request issued by an earlier Effect.
type Event interface{ event() }

type (
	Mounted struct{}

	FilterChanged struct {
		Field Field
		Value string
	}

	// FiltersApplied replaces every filter at once, as when a page is
	// opened from a shared URL.
	FiltersApplied struct{ Filters Filters }

	FiltersCleared struct{}

	// Reloaded is a full page load carrying the URL filters. It
	// bootstraps a session that is new or stuck on a page-level error.
	Reloaded struct{ Filters Filters }

	RetryRequested struct{}

	LookupsLoaded struct {
		Epoch      uint64
		Categories []backend.Category
		Colors     []backend.Color
		Sources    []backend.Source
	}

	LookupsFailed struct {
		Epoch uint64
		Err   error
	}

	ProductsLoaded struct {
		Seq      uint64
		Products []backend.Product
	}

	ProductsFailed struct {
		Seq uint64
		Err error
	}
)

func (Mounted) event() {}
func (FilterChanged) event() {}
func (FiltersApplied) event() {}
func (FiltersCleared) event() {}
func (Reloaded) event() {}
func (RetryRequested) event() {}
func (LookupsLoaded) event() {}
func (LookupsFailed) event() {}
func (ProductsLoaded) event() {}
func (ProductsFailed) event() {}

// Effect is work Reduce asks the runner to perform.
type Effect interface{ effect() }

type (
	// FetchLookups loads categories, colors and sources together.
	FetchLookups struct{ Epoch uint64 }

	// FetchProducts supersedes any products request still in flight.
	FetchProducts struct {
		Seq     uint64
		Filters Filters
		Tier    Tier
	}

	// StaleDiscarded reports a response dropped because a newer request
	// was issued after it.
	StaleDiscarded struct {
		Kind string
		Seq  uint64
	}
)

func (FetchLookups) effect() {}
func (FetchProducts) effect() {}
func (StaleDiscarded) effect() {}

const (
	kindProducts = "products"
	kindLookups  = "lookups"
)

// Reduce is the whole catalog state machine. It never blocks and never
// performs I/O.
func Reduce(s State, ev Event) (State, []Effect) {
	switch e := ev.(type) {
	case Mounted:
		if s.Mounted {
			return s, nil
		}
		return bootstrap(s)

	case RetryRequested:
		return restart(s, s.Filters)

	case Reloaded:
		next := e.Filters.Normalized()
		if !s.Mounted {
			s.Filters = next
			return bootstrap(s)
		}
		if s.Error != nil && s.Error.Tier == TierBootstrap {
			return restart(s, next)
		}
		return refilter(s, next)

	case FilterChanged:
		return refilter(s, s.Filters.With(e.Field, e.Value))

	case FiltersApplied:
		return refilter(s, e.Filters.Normalized())

	case FiltersCleared:
		return refilter(s, Filters{})

	case LookupsLoaded:
		if e.Epoch != s.Epoch || !s.LookupsPending {
			return s, []Effect{StaleDiscarded{Kind: kindLookups, Seq: e.Epoch}}
		}
		s.Categories = e.Categories
		s.Colors = e.Colors
		s.Sources = e.Sources
		s.LookupsPending = false
		return s, nil

	case LookupsFailed:
		if e.Epoch != s.Epoch || !s.LookupsPending {
			return s, []Effect{StaleDiscarded{Kind: kindLookups, Seq: e.Epoch}}
		}
		s.Categories = nil
		s.Colors = nil
		s.Sources = nil
		s.LookupsPending = false
		s.Error = fail(s.Error, TierBootstrap, MessageLookupsFailed)
		return s, nil

	case ProductsLoaded:
		if e.Seq != s.Seq || !s.Loading {
			return s, []Effect{StaleDiscarded{Kind: kindProducts, Seq: e.Seq}}
		}
		s.Products = e.Products
		s.Loading = false
		if s.Error != nil && s.Error.Tier == TierRefresh {
			s.Error = nil
		}
		return s, nil

	case ProductsFailed:
		if e.Seq != s.Seq || !s.Loading {
			return s, []Effect{StaleDiscarded{Kind: kindProducts, Seq: e.Seq}}
		}
		s.Loading = false
		s.Error = fail(s.Error, s.tier, MessageProductsFailed)
		return s, nil
	}
	return s, nil
}

func bootstrap(s State) (State, []Effect) {
	s.Mounted = true
	s.Epoch++
	s.LookupsPending = true
	s, fetch := loadProducts(s, TierBootstrap)
	return s, []Effect{FetchLookups{Epoch: s.Epoch}, fetch}
}

// restart drops everything loaded so far and bootstraps again. The
// counters carry over so late responses stay stale.
func restart(s State, filters Filters) (State, []Effect) {
	return bootstrap(State{
		Filters: filters,
		Epoch:   s.Epoch,
		Seq:     s.Seq,
	})
}

// refilter issues exactly one products request when the filters actually
// change. Before mount only the selection is recorded.
func refilter(s State, next Filters) (State, []Effect) {
	if next == s.Filters {
		return s, nil
	}
	s.Filters = next
	if !s.Mounted {
		return s, nil
	}
	s, fetch := loadProducts(s, TierRefresh)
	return s, []Effect{fetch}
}

func loadProducts(s State, tier Tier) (State, FetchProducts) {
	s.Seq++
	s.Loading = true
	s.tier = tier
	return s, FetchProducts{Seq: s.Seq, Filters: s.Filters, Tier: tier}
}

// fail keeps a page-level failure over an inline one.
func fail(current *Failure, tier Tier, message string) *Failure {
	if current != nil && current.Tier == TierBootstrap {
		return current
	}
	if tier == "" {
		tier = TierRefresh
	}
	return &Failure{Tier: tier, Message: message}
}
