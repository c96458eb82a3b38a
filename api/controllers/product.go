package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/balonis/storefront/api/views"
	"github.com/balonis/storefront/pkg/backend"
	pkgerrors "github.com/balonis/storefront/pkg/errors"
	"github.com/balonis/storefront/pkg/logger"
)

type ProductReader interface {
	Product(ctx context.Context, slug string) (*backend.Product, error)
}

// ProductPage renders one product; an unknown slug renders the 404 page.
func ProductPage(products ProductReader, renderer Renderer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		slug := strings.TrimSpace(chi.URLParam(r, "slug"))
		if slug == "" {
			renderError(ctx, logg, renderer, w, pkgerrors.New(pkgerrors.CodeNotFound, "product not found"))
			return
		}

		product, err := products.Product(ctx, slug)
		if err != nil {
			renderError(ctx, logg, renderer, w, err)
			return
		}

		renderPage(ctx, logg, renderer, w, views.PageProduct, views.Layout{
			Title:  product.Name,
			Active: "/catalog",
			Page:   *product,
		})
	}
}
