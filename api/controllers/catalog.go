package controllers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/balonis/storefront/api/middleware"
	"github.com/balonis/storefront/api/responses"
	"github.com/balonis/storefront/api/validators"
	"github.com/balonis/storefront/api/views"
	"github.com/balonis/storefront/internal/catalog"
	"github.com/balonis/storefront/pkg/backend"
	pkgerrors "github.com/balonis/storefront/pkg/errors"
	"github.com/balonis/storefront/pkg/logger"
)

// Sessions hands out the catalog controller bound to a browser session.
type Sessions interface {
	Acquire(ctx context.Context, sessionID string) (*catalog.Controller, error)
	Drop(sessionID string)
}

type CatalogOptions struct {
	Sessions      Sessions
	Renderer      Renderer
	Logger        *logger.Logger
	SettleTimeout time.Duration
}

type productCard struct {
	backend.Product
	Price catalog.Price `json:"price"`
}

type catalogResponse struct {
	View       catalog.ViewKind   `json:"view"`
	Loading    bool               `json:"loading"`
	Error      *catalog.Failure   `json:"error"`
	Filters    catalog.Filters    `json:"filters"`
	Categories []backend.Category `json:"categories"`
	Colors     []backend.Color    `json:"colors"`
	Sources    []backend.Source   `json:"sources"`
	Products   []productCard      `json:"products"`
}

func newCatalogResponse(st catalog.State) catalogResponse {
	resp := catalogResponse{
		View:       st.View(),
		Loading:    st.Loading,
		Error:      st.Error,
		Filters:    st.Filters,
		Categories: nonNil(st.Categories),
		Colors:     nonNil(st.Colors),
		Sources:    nonNil(st.Sources),
		Products:   make([]productCard, 0, len(st.Products)),
	}
	for _, p := range st.Products {
		resp.Products = append(resp.Products, productCard{Product: p, Price: catalog.PriceFor(p)})
	}
	return resp
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

// CatalogPage applies the URL filters to the session in one step and
// renders once the reload settles or the settle timeout passes. A session
// showing a bootstrap error loads from scratch, as a browser reload would.
func CatalogPage(opts CatalogOptions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		filters, err := validators.ParseCatalogFilters(r)
		if err != nil {
			renderError(ctx, opts.Logger, opts.Renderer, w, err)
			return
		}

		st, err := runCatalog(ctx, opts, func(c *catalog.Controller) error {
			return c.Reload(filters)
		})
		if err != nil {
			renderError(ctx, opts.Logger, opts.Renderer, w, err)
			return
		}

		renderPage(ctx, opts.Logger, opts.Renderer, w, views.PageCatalog, views.Layout{
			Title:  "Katalog",
			Active: "/catalog",
			Page:   views.NewCatalogPage(st),
		})
	}
}

// CatalogRetryPage reruns the bootstrap and redirects back to the
// filtered catalog.
func CatalogRetryPage(opts CatalogOptions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if err := r.ParseForm(); err != nil {
			renderError(ctx, opts.Logger, opts.Renderer, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid form"))
			return
		}
		filters, err := validators.CatalogFilters(r.PostForm)
		if err != nil {
			renderError(ctx, opts.Logger, opts.Renderer, w, err)
			return
		}
		_, err = runCatalog(ctx, opts, func(c *catalog.Controller) error {
			return c.Retry()
		})
		if err != nil {
			renderError(ctx, opts.Logger, opts.Renderer, w, err)
			return
		}

		target := "/catalog"
		if q := filters.Query(); len(q) > 0 {
			target += "?" + q.Encode()
		}
		http.Redirect(w, r, target, http.StatusSeeOther)
	}
}

// CatalogState returns the current snapshot without waiting.
func CatalogState(opts CatalogOptions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctrl, err := acquire(r.Context(), opts)
		if err == nil {
			err = ctrl.Mount()
		}
		if err != nil {
			if errors.Is(err, catalog.ErrClosed) {
				err = pkgerrors.Wrap(pkgerrors.CodeUnavailable, err, "catalog session closed")
			}
			responses.WriteError(r.Context(), opts.Logger, w, err)
			return
		}
		responses.WriteSuccess(w, newCatalogResponse(ctrl.Snapshot()))
	}
}

func CatalogSetFilter(opts CatalogOptions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		field, value, err := validators.DecodeFilterChange(r)
		if err != nil {
			responses.WriteError(r.Context(), opts.Logger, w, err)
			return
		}
		writeCatalog(w, r, opts, func(c *catalog.Controller) error {
			return c.SetFilter(field, value)
		})
	}
}

func CatalogClearFilters(opts CatalogOptions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeCatalog(w, r, opts, func(c *catalog.Controller) error {
			return c.ClearFilters()
		})
	}
}

func CatalogRetry(opts CatalogOptions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeCatalog(w, r, opts, func(c *catalog.Controller) error {
			return c.Retry()
		})
	}
}

func writeCatalog(w http.ResponseWriter, r *http.Request, opts CatalogOptions, action func(*catalog.Controller) error) {
	st, err := runCatalog(r.Context(), opts, action)
	if err != nil {
		responses.WriteError(r.Context(), opts.Logger, w, err)
		return
	}
	responses.WriteSuccess(w, newCatalogResponse(st))
}

func acquire(ctx context.Context, opts CatalogOptions) (*catalog.Controller, error) {
	sid := middleware.SessionIDFromContext(ctx)
	if sid == "" {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "session middleware missing")
	}
	ctrl, err := opts.Sessions.Acquire(ctx, sid)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnavailable, err, "acquire catalog session")
	}
	return ctrl, nil
}

// runCatalog performs action on the session controller, mounts it if the
// session is new and waits for the resulting loads. A controller evicted
// between acquire and use is replaced once.
func runCatalog(ctx context.Context, opts CatalogOptions, action func(*catalog.Controller) error) (catalog.State, error) {
	for attempt := 0; ; attempt++ {
		ctrl, err := acquire(ctx, opts)
		if err != nil {
			return catalog.State{}, err
		}
		st, err := settle(ctx, opts, ctrl, action)
		if errors.Is(err, catalog.ErrClosed) && attempt == 0 {
			opts.Sessions.Drop(middleware.SessionIDFromContext(ctx))
			continue
		}
		if errors.Is(err, catalog.ErrClosed) {
			return st, pkgerrors.Wrap(pkgerrors.CodeUnavailable, err, "catalog session closed")
		}
		return st, err
	}
}

func settle(ctx context.Context, opts CatalogOptions, ctrl *catalog.Controller, action func(*catalog.Controller) error) (catalog.State, error) {
	if err := action(ctrl); err != nil {
		return catalog.State{}, err
	}
	if err := ctrl.Mount(); err != nil {
		return catalog.State{}, err
	}
	timeout := opts.SettleTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	st, err := ctrl.WaitIdle(waitCtx)
	if errors.Is(err, context.DeadlineExceeded) {
		if opts.Logger != nil {
			opts.Logger.Warn(ctx, "catalog.settle_timeout")
		}
		return st, nil
	}
	return st, err
}
