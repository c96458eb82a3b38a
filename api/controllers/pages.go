package controllers

import (
	"context"
	"net/http"

	"github.com/balonis/storefront/api/responses"
	"github.com/balonis/storefront/api/views"
	pkgerrors "github.com/balonis/storefront/pkg/errors"
	"github.com/balonis/storefront/pkg/logger"
)

var errNotFound = pkgerrors.New(pkgerrors.CodeNotFound, "page not found")

const (
	messagePageNotFound = "Nie znaleziono strony"
	messagePageFailed   = "Błąd ładowania danych"
)

// Renderer is the HTML side of the views package.
type Renderer interface {
	Render(w http.ResponseWriter, status int, page string, layout views.Layout) error
}

func renderPage(ctx context.Context, logg *logger.Logger, renderer Renderer, w http.ResponseWriter, page string, layout views.Layout) {
	if err := renderer.Render(w, http.StatusOK, page, layout); err != nil {
		renderError(ctx, logg, renderer, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "render page"))
	}
}

// renderError is the HTML counterpart of responses.WriteError.
func renderError(ctx context.Context, logg *logger.Logger, renderer Renderer, w http.ResponseWriter, err error) {
	typed := responses.Normalize(err)
	status := pkgerrors.MetadataFor(typed.Code()).HTTPStatus
	message := messagePageFailed
	if typed.Code() == pkgerrors.CodeNotFound {
		message = messagePageNotFound
	} else {
		responses.LogError(ctx, logg, err)
	}

	layout := views.Layout{Title: "Błąd", Page: views.ErrorPage{Status: status, Message: message}}
	if rerr := renderer.Render(w, status, views.PageError, layout); rerr != nil {
		responses.LogError(ctx, logg, rerr)
		http.Error(w, message, status)
	}
}
