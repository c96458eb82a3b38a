package home

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/balonis/storefront/pkg/backend"
	"github.com/balonis/storefront/pkg/fallback"
	"github.com/balonis/storefront/pkg/logger"
)

// API is what the home page reads from the backend.
type API interface {
	FeaturedProducts(ctx context.Context) ([]backend.Product, error)
	AllProducts(ctx context.Context) ([]backend.Product, error)
	FeaturedGallery(ctx context.Context) ([]backend.GalleryImage, error)
	GalleryImages(ctx context.Context) ([]backend.GalleryImage, error)
	FeaturedReviews(ctx context.Context) ([]backend.ClientReview, error)
	ClientReviews(ctx context.Context) ([]backend.ClientReview, error)
}

type FallbackObserver interface {
	IncFallback(resource string)
}

// Page is the data behind the home page. Degraded is set when a chain
// was exhausted and every list was emptied.
type Page struct {
	Products []backend.Product      `json:"products"`
	Gallery  []backend.GalleryImage `json:"gallery"`
	Reviews  []backend.ClientReview `json:"reviews"`
	Degraded bool                   `json:"degraded"`
}

type Loader struct {
	api     API
	logg    *logger.Logger
	metrics FallbackObserver
}

func NewLoader(api API, logg *logger.Logger, metrics FallbackObserver) *Loader {
	if logg == nil {
		logg = logger.Nop()
	}
	return &Loader{api: api, logg: logg, metrics: metrics}
}

// Load runs the three featured-with-fallback chains concurrently. Any
// exhausted chain empties the whole page instead of failing it.
func (l *Loader) Load(ctx context.Context) Page {
	var page Page
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		page.Products, err = chain(gctx, l, "products",
			fallback.Step[[]backend.Product]{Name: "featured", Fetch: l.api.FeaturedProducts},
			fallback.Step[[]backend.Product]{Name: "all", Fetch: l.api.AllProducts},
		)
		return err
	})
	g.Go(func() (err error) {
		page.Gallery, err = chain(gctx, l, "gallery",
			fallback.Step[[]backend.GalleryImage]{Name: "featured", Fetch: l.api.FeaturedGallery},
			fallback.Step[[]backend.GalleryImage]{Name: "all", Fetch: l.api.GalleryImages},
		)
		return err
	})
	g.Go(func() (err error) {
		page.Reviews, err = chain(gctx, l, "reviews",
			fallback.Step[[]backend.ClientReview]{Name: "featured", Fetch: l.api.FeaturedReviews},
			fallback.Step[[]backend.ClientReview]{Name: "all", Fetch: l.api.ClientReviews},
		)
		return err
	})

	if err := g.Wait(); err != nil {
		if !errors.Is(err, context.Canceled) {
			l.logg.Error(ctx, "home.load_failed", err)
		}
		return Page{Products: []backend.Product{}, Gallery: []backend.GalleryImage{}, Reviews: []backend.ClientReview{}, Degraded: true}
	}
	return page
}

func chain[T any](ctx context.Context, l *Loader, resource string, steps ...fallback.Step[[]T]) ([]T, error) {
	res, err := fallback.First(ctx, steps...)
	if err != nil {
		return nil, err
	}
	if res.UsedFallback() {
		if l.metrics != nil {
			l.metrics.IncFallback(resource)
		}
		l.logg.Warn(l.logg.WithFields(ctx, map[string]any{"resource": resource, "step": res.Name}), "home.fallback_used")
	}
	if res.Value == nil {
		return []T{}, nil
	}
	return res.Value, nil
}
