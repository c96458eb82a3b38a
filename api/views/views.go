// Package views renders the storefront pages from embedded templates.
package views

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/Masterminds/sprig/v3"

	"github.com/balonis/storefront/internal/catalog"
	"github.com/balonis/storefront/pkg/backend"
)

//go:embed templates/*.html
var templatesFS embed.FS

const (
	PageHome    = "home.html"
	PageCatalog = "catalog.html"
	PageProduct = "product.html"
	PageError   = "error.html"
)

var pages = []string{PageHome, PageCatalog, PageProduct, PageError}

type NavLink struct {
	Label string
	Href  string
}

// Navigation is shared by the header and the footer.
var Navigation = []NavLink{
	{Label: "GŁÓWNA", Href: "/"},
	{Label: "KATALOG", Href: "/catalog"},
	{Label: "GALLERY", Href: "/gallery"},
	{Label: "DOSTAWA", Href: "/delivery"},
	{Label: "KONTAKT", Href: "/contacts"},
}

// Layout wraps page specific data with the chrome every page needs.
type Layout struct {
	Title  string
	Active string
	Nav    []NavLink
	Page   any
}

type Renderer struct {
	pages map[string]*template.Template
}

func New() (*Renderer, error) {
	r := &Renderer{pages: make(map[string]*template.Template, len(pages))}
	for _, page := range pages {
		tmpl, err := template.New("layout.html").
			Funcs(funcs()).
			ParseFS(templatesFS, "templates/layout.html", "templates/card.html", "templates/"+page)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", page, err)
		}
		r.pages[page] = tmpl
	}
	return r, nil
}

// Render executes into a buffer first so a template failure never leaves
// a half written page behind.
func (r *Renderer) Render(w http.ResponseWriter, status int, page string, layout Layout) error {
	tmpl, ok := r.pages[page]
	if !ok {
		return fmt.Errorf("unknown page %q", page)
	}
	if layout.Nav == nil {
		layout.Nav = Navigation
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout.html", layout); err != nil {
		return fmt.Errorf("render %s: %w", page, err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

func funcs() template.FuncMap {
	f := sprig.HtmlFuncMap()
	f["price"] = func(p backend.Product) catalog.Price { return catalog.PriceFor(p) }
	f["image"] = func(p backend.Product) string { return p.PrimaryImage() }
	f["summary"] = func(p backend.Product) string { return p.Summary() }
	f["productHref"] = ProductHref
	f["stars"] = func(rating int) []int {
		if rating < 0 {
			rating = 0
		}
		if rating > 5 {
			rating = 5
		}
		return make([]int, rating)
	}
	return f
}
