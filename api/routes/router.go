package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/balonis/storefront/api/controllers"
	"github.com/balonis/storefront/api/middleware"
	"github.com/balonis/storefront/pkg/config"
	"github.com/balonis/storefront/pkg/logger"
)

type backendClient interface {
	controllers.Pinger
	controllers.ProductReader
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	backend backendClient,
	redisPinger controllers.Pinger,
	sessions controllers.Sessions,
	homeLoader controllers.HomeLoader,
	renderer controllers.Renderer,
	metricsHandler http.Handler,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	catalogOpts := controllers.CatalogOptions{
		Sessions:      sessions,
		Renderer:      renderer,
		Logger:        logg,
		SettleTimeout: cfg.Catalog.SettleTimeout,
	}
	session := middleware.Session(middleware.SessionOptions{
		TTL:    cfg.Session.TTL,
		Secure: cfg.Session.SecureCookie,
	}, logg)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, backend, redisPinger))
	})
	if metricsHandler != nil {
		r.Handle("/metrics", metricsHandler)
	}

	r.Get("/", controllers.HomePage(homeLoader, renderer, logg))
	r.Get("/catalog/{slug}", controllers.ProductPage(backend, renderer, logg))
	r.Group(func(r chi.Router) {
		r.Use(session)
		r.Get("/catalog", controllers.CatalogPage(catalogOpts))
		r.Post("/catalog/retry", controllers.CatalogRetryPage(catalogOpts))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.CORS(cfg.CORS.Origins))
		r.Get("/home", controllers.HomeData(homeLoader))
		r.Route("/catalog", func(r chi.Router) {
			r.Use(session)
			r.Get("/", controllers.CatalogState(catalogOpts))
			r.Post("/filters", controllers.CatalogSetFilter(catalogOpts))
			r.Post("/filters/clear", controllers.CatalogClearFilters(catalogOpts))
			r.Post("/retry", controllers.CatalogRetry(catalogOpts))
		})
	})

	r.NotFound(controllers.NotFoundPage(renderer, logg))

	return r
}
