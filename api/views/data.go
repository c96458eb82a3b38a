package views

import (
	"net/url"

	"github.com/balonis/storefront/internal/catalog"
	"github.com/balonis/storefront/internal/home"
	"github.com/balonis/storefront/pkg/backend"
)

const (
	MessageEmpty   = "Nie znaleziono produktów"
	MessageLoading = "Ładowanie produktów..."
	LabelRetry     = "Spróbuj ponownie"
	LabelClear     = "Wyczyść"
	BadgeFeatured  = "Hit"
)

type Advantage struct {
	Title       string
	Description string
}

var advantages = []Advantage{
	{Title: "Szybka dostawa", Description: "Dostarczamy w całej Warszawie tego samego dnia"},
	{Title: "Indywidualne dekoracje", Description: "Tworzymy unikalne kompozycje według Twoich życzeń"},
	{Title: "Gwarancja jakości", Description: "Używamy tylko wysokiej jakości materiałów"},
	{Title: "Doświadczony zespół", Description: "Ponad 5 lat tworzenia świątecznego nastroju"},
}

type HomePage struct {
	home.Page
	Advantages []Advantage
}

func NewHomePage(page home.Page) HomePage {
	return HomePage{Page: page, Advantages: advantages}
}

// CatalogPage is what the catalog template needs for one state snapshot.
type CatalogPage struct {
	View       catalog.ViewKind
	Error      string
	Filters    catalog.Filters
	Categories []backend.Category
	Colors     []backend.Color
	Sources    []backend.Source
	Products   []backend.Product
	Count      int
}

func NewCatalogPage(st catalog.State) CatalogPage {
	page := CatalogPage{
		View:       st.View(),
		Filters:    st.Filters,
		Categories: st.Categories,
		Colors:     st.Colors,
		Sources:    st.Sources,
	}
	if st.Error != nil {
		page.Error = st.Error.Message
	}
	if page.View == catalog.ViewGrid {
		page.Products = st.Products
		page.Count = len(st.Products)
	}
	return page
}

func (p CatalogPage) BootstrapError() bool { return p.View == catalog.ViewBootstrapError }
func (p CatalogPage) RefreshError() bool { return p.View == catalog.ViewRefreshError }
func (p CatalogPage) Loading() bool { return p.View == catalog.ViewLoading }
func (p CatalogPage) Empty() bool { return p.View == catalog.ViewEmpty }
func (p CatalogPage) Grid() bool { return p.View == catalog.ViewGrid }

// ProductHref links a card to its detail page; products without a slug get no link.
func ProductHref(p backend.Product) string {
	if p.Slug != "" {
		return "/catalog/" + url.PathEscape(p.Slug)
	}
	return ""
}

type ErrorPage struct {
	Status  int
	Message string
}
