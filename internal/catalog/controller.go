package catalog

import (
	"context"
	"errors"
	"net/url"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/balonis/storefront/pkg/backend"
	"github.com/balonis/storefront/pkg/logger"
)

// ErrClosed is returned once a controller has been closed.
var ErrClosed = errors.New("catalog: controller closed")

// API is the slice of the backend client the catalog reads from.
type API interface {
	Products(ctx context.Context, query url.Values) ([]backend.Product, error)
	Categories(ctx context.Context) ([]backend.Category, error)
	Colors(ctx context.Context) ([]backend.Color, error)
	Sources(ctx context.Context) ([]backend.Source, error)
}

// StaleObserver counts responses dropped by the sequence guard.
type StaleObserver interface {
	IncStaleResponse(kind string)
}

type Options struct {
	Logger  *logger.Logger
	Metrics StaleObserver
	// Context carries log fields for the controller's background work.
	Context context.Context
}

type envelope struct {
	ev      Event
	applied chan struct{}
}

// Controller runs one catalog session. A single loop goroutine owns the
// state; callers communicate through events and read snapshots.
type Controller struct {
	api     API
	logg    *logger.Logger
	metrics StaleObserver

	ctx     context.Context
	cancel  context.CancelFunc
	events  chan envelope
	done    chan struct{}
	workers sync.WaitGroup
	once    sync.Once

	mu      sync.RWMutex
	state   State
	changed chan struct{}

	// loop only
	cancelProducts context.CancelFunc
	cancelLookups  context.CancelFunc
}

func NewController(api API, opts Options) *Controller {
	base := opts.Context
	if base == nil {
		base = context.Background()
	}
	logg := opts.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	ctx, cancel := context.WithCancel(context.WithoutCancel(base))
	c := &Controller{
		api:     api,
		logg:    logg,
		metrics: opts.Metrics,
		ctx:     ctx,
		cancel:  cancel,
		events:  make(chan envelope),
		done:    make(chan struct{}),
		changed: make(chan struct{}),
	}
	go c.loop()
	return c
}

// Mount starts the page bootstrap. Repeated calls are no-ops.
func (c *Controller) Mount() error {
	return c.dispatch(Mounted{})
}

func (c *Controller) SetFilter(field Field, value string) error {
	return c.dispatch(FilterChanged{Field: field, Value: value})
}

func (c *Controller) SetCategory(slug string) error { return c.SetFilter(FieldCategory, slug) }
func (c *Controller) SetColor(name string) error { return c.SetFilter(FieldColor, name) }
func (c *Controller) SetSource(name string) error { return c.SetFilter(FieldSource, name) }
func (c *Controller) SetSearch(text string) error { return c.SetFilter(FieldSearch, text) }

func (c *Controller) ApplyFilters(filters Filters) error {
	return c.dispatch(FiltersApplied{Filters: filters})
}

// Reload is a page load with the given filters. It bootstraps again when
// the session has not mounted yet or is showing a page-level error.
func (c *Controller) Reload(filters Filters) error {
	return c.dispatch(Reloaded{Filters: filters})
}

// ClearFilters resets every filter with a single reload.
func (c *Controller) ClearFilters() error {
	return c.dispatch(FiltersCleared{})
}

// Retry reruns the whole bootstrap, keeping the current filters.
func (c *Controller) Retry() error {
	return c.dispatch(RetryRequested{})
}

func (c *Controller) Snapshot() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// WaitIdle blocks until no request is outstanding and returns that state.
// On timeout it returns the latest state along with the context error.
func (c *Controller) WaitIdle(ctx context.Context) (State, error) {
	for {
		c.mu.RLock()
		st, changed := c.state, c.changed
		c.mu.RUnlock()
		if st.Idle() {
			return st, nil
		}
		select {
		case <-changed:
		case <-ctx.Done():
			return st, ctx.Err()
		case <-c.done:
			return st, ErrClosed
		}
	}
}

// Stop cancels in-flight requests and refuses further events without
// waiting for the controller's goroutines to exit.
func (c *Controller) Stop() {
	c.cancel()
}

// Close cancels in-flight requests and waits for every goroutine the
// controller started. It is safe to call more than once.
func (c *Controller) Close() {
	c.once.Do(func() {
		c.cancel()
		<-c.done
		c.workers.Wait()
	})
}

// dispatch returns after the loop has applied ev, so a following
// Snapshot or WaitIdle observes its effect.
func (c *Controller) dispatch(ev Event) error {
	if c.ctx.Err() != nil {
		return ErrClosed
	}
	env := envelope{ev: ev, applied: make(chan struct{})}
	select {
	case c.events <- env:
	case <-c.ctx.Done():
		return ErrClosed
	}
	select {
	case <-env.applied:
		return nil
	case <-c.done:
		return ErrClosed
	}
}

// deliver hands a request outcome to the loop, dropping it after close.
func (c *Controller) deliver(ev Event) {
	select {
	case c.events <- envelope{ev: ev}:
	case <-c.ctx.Done():
	}
}

func (c *Controller) loop() {
	defer close(c.done)
	for {
		select {
		case <-c.ctx.Done():
			return
		case env := <-c.events:
			c.apply(env.ev)
			if env.applied != nil {
				close(env.applied)
			}
		}
	}
}

func (c *Controller) apply(ev Event) {
	c.mu.Lock()
	next, effects := Reduce(c.state, ev)
	c.state = next
	changed := c.changed
	c.changed = make(chan struct{})
	c.mu.Unlock()
	close(changed)

	for _, eff := range effects {
		switch e := eff.(type) {
		case FetchLookups:
			c.fetchLookups(e)
		case FetchProducts:
			c.fetchProducts(e)
		case StaleDiscarded:
			if c.metrics != nil {
				c.metrics.IncStaleResponse(e.Kind)
			}
			ctx := c.logg.WithFields(c.ctx, map[string]any{"kind": e.Kind, "seq": e.Seq})
			c.logg.Debug(ctx, "stale catalog response discarded")
		}
	}
}

func (c *Controller) fetchProducts(e FetchProducts) {
	if c.cancelProducts != nil {
		c.cancelProducts()
	}
	ctx, cancel := context.WithCancel(c.ctx)
	c.cancelProducts = cancel

	c.workers.Add(1)
	go func() {
		defer c.workers.Done()
		defer cancel()

		products, err := c.api.Products(ctx, e.Filters.Query())
		if err != nil {
			if ctx.Err() == nil {
				logCtx := c.logg.WithFields(c.ctx, map[string]any{"seq": e.Seq, "tier": string(e.Tier)})
				c.logg.Error(logCtx, "catalog products load failed", err)
			}
			c.deliver(ProductsFailed{Seq: e.Seq, Err: err})
			return
		}
		c.deliver(ProductsLoaded{Seq: e.Seq, Products: products})
	}()
}

// fetchLookups loads the three lookup lists concurrently; the first
// failure cancels the others and fails the whole batch.
func (c *Controller) fetchLookups(e FetchLookups) {
	if c.cancelLookups != nil {
		c.cancelLookups()
	}
	ctx, cancel := context.WithCancel(c.ctx)
	c.cancelLookups = cancel

	c.workers.Add(1)
	go func() {
		defer c.workers.Done()
		defer cancel()

		var (
			categories []backend.Category
			colors     []backend.Color
			sources    []backend.Source
		)
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() (err error) {
			categories, err = c.api.Categories(gctx)
			return err
		})
		g.Go(func() (err error) {
			colors, err = c.api.Colors(gctx)
			return err
		})
		g.Go(func() (err error) {
			sources, err = c.api.Sources(gctx)
			return err
		})
		if err := g.Wait(); err != nil {
			if ctx.Err() == nil {
				logCtx := c.logg.WithField(c.ctx, "epoch", e.Epoch)
				c.logg.Error(logCtx, "catalog lookups load failed", err)
			}
			c.deliver(LookupsFailed{Epoch: e.Epoch, Err: err})
			return
		}
		c.deliver(LookupsLoaded{
			Epoch:      e.Epoch,
			Categories: categories,
			Colors:     colors,
			Sources:    sources,
		})
	}()
}
