package catalog

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/balonis/storefront/pkg/logger"
)

// SessionObserver tracks live catalog sessions.
type SessionObserver interface {
	SessionOpened()
	SessionClosed()
}

type RegistryConfig struct {
	MaxSessions int
	TTL         time.Duration
}

type RegistryOptions struct {
	Logger   *logger.Logger
	Stale    StaleObserver
	Sessions SessionObserver
}

// Registry keeps one Controller per browser session. Entries expire TTL
// after their last use; eviction stops the controller.
//
// The underlying expirable LRU runs a sweeper goroutine that Close cannot
// stop, so a Registry is meant to live as long as the process.
type Registry struct {
	api    API
	logg   *logger.Logger
	opts   RegistryOptions
	mu     sync.Mutex
	closed bool
	cache  *expirable.LRU[string, *Controller]

	retiredMu sync.Mutex
	retired   []*Controller
}

func NewRegistry(api API, cfg RegistryConfig, opts RegistryOptions) *Registry {
	if cfg.MaxSessions <= 0 {
		cfg.MaxSessions = 1000
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 30 * time.Minute
	}
	logg := opts.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	r := &Registry{api: api, logg: logg, opts: opts}
	r.cache = expirable.NewLRU[string, *Controller](cfg.MaxSessions, r.evicted, cfg.TTL)
	return r
}

// Acquire returns the session's controller, creating one on first use.
// A new controller is not mounted, so callers can record the page filters
// before the bootstrap load. Each call refreshes the session's expiry.
func (r *Registry) Acquire(ctx context.Context, sessionID string) (*Controller, error) {
	r.mu.Lock()
	ctrl, err := r.acquire(ctx, sessionID)
	retired := r.takeRetired()
	r.mu.Unlock()
	closeAll(retired)
	return ctrl, err
}

func (r *Registry) acquire(ctx context.Context, sessionID string) (*Controller, error) {
	if r.closed {
		return nil, ErrClosed
	}
	if ctrl, ok := r.cache.Get(sessionID); ok {
		r.cache.Add(sessionID, ctrl)
		return ctrl, nil
	}
	// An expired entry may linger until the next sweep.
	r.cache.Remove(sessionID)

	ctrl := NewController(r.api, Options{
		Logger:  r.logg,
		Metrics: r.opts.Stale,
		Context: r.logg.WithSessionID(context.Background(), sessionID),
	})
	r.cache.Add(sessionID, ctrl)
	if r.opts.Sessions != nil {
		r.opts.Sessions.SessionOpened()
	}
	r.logg.Debug(r.logg.WithSessionID(ctx, sessionID), "catalog session opened")
	return ctrl, nil
}

// Lookup returns an existing controller without creating one.
func (r *Registry) Lookup(sessionID string) (*Controller, bool) {
	return r.cache.Peek(sessionID)
}

// Drop closes and forgets one session.
func (r *Registry) Drop(sessionID string) {
	r.mu.Lock()
	r.cache.Remove(sessionID)
	retired := r.takeRetired()
	r.mu.Unlock()
	closeAll(retired)
}

func (r *Registry) Len() int {
	return r.cache.Len()
}

// Close closes every live session and refuses new ones.
func (r *Registry) Close() {
	r.mu.Lock()
	r.closed = true
	r.cache.Purge()
	retired := r.takeRetired()
	r.mu.Unlock()
	closeAll(retired)
}

// evicted runs under the LRU lock, so it only stops the controller. The
// wait for its goroutines happens after the registry lock is released.
func (r *Registry) evicted(sessionID string, ctrl *Controller) {
	ctrl.Stop()
	r.retiredMu.Lock()
	r.retired = append(r.retired, ctrl)
	r.retiredMu.Unlock()
	if r.opts.Sessions != nil {
		r.opts.Sessions.SessionClosed()
	}
	r.logg.Debug(r.logg.WithSessionID(context.Background(), sessionID), "catalog session closed")
}

// takeRetired hands the controllers stopped so far to the caller. The
// sweeper adds to the list without holding r.mu.
func (r *Registry) takeRetired() []*Controller {
	r.retiredMu.Lock()
	defer r.retiredMu.Unlock()
	retired := r.retired
	r.retired = nil
	return retired
}

func closeAll(ctrls []*Controller) {
	for _, ctrl := range ctrls {
		ctrl.Close()
	}
}
