package controllers

import (
	"context"
	"net/http"

	"github.com/balonis/storefront/api/responses"
	"github.com/balonis/storefront/api/views"
	"github.com/balonis/storefront/internal/home"
	"github.com/balonis/storefront/pkg/logger"
)

type HomeLoader interface {
	Load(ctx context.Context) home.Page
}

// HomePage never fails on backend errors; the loader degrades to empty lists.
func HomePage(loader HomeLoader, renderer Renderer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page := loader.Load(r.Context())
		renderPage(r.Context(), logg, renderer, w, views.PageHome, views.Layout{
			Active: "/",
			Page:   views.NewHomePage(page),
		})
	}
}

func HomeData(loader HomeLoader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, loader.Load(r.Context()))
	}
}

// NotFoundPage renders the 404 page for unknown routes.
func NotFoundPage(renderer Renderer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		renderError(r.Context(), logg, renderer, w, errNotFound)
	}
}
