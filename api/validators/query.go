package validators

import (
	"net/http"
	"net/url"

	"github.com/balonis/storefront/internal/catalog"
)

const (
	MaxFilterValueLen = 100
	MaxSearchLen      = 200
)

type catalogQuery struct {
	Category string `json:"category" validate:"max=100"`
	Color    string `json:"color" validate:"max=100"`
	Source   string `json:"source" validate:"max=100"`
	Search   string `json:"search" validate:"max=200"`
}

// ParseCatalogFilters reads the catalog filters from a page URL.
func ParseCatalogFilters(r *http.Request) (catalog.Filters, error) {
	return CatalogFilters(r.URL.Query())
}

// CatalogFilters validates filters carried in a query string or form.
func CatalogFilters(q url.Values) (catalog.Filters, error) {
	in := catalogQuery{
		Category: SanitizeString(q.Get(string(catalog.FieldCategory)), 0),
		Color:    SanitizeString(q.Get(string(catalog.FieldColor)), 0),
		Source:   SanitizeString(q.Get(string(catalog.FieldSource)), 0),
		Search:   SanitizeString(q.Get(string(catalog.FieldSearch)), 0),
	}
	if err := Struct(in); err != nil {
		return catalog.Filters{}, err
	}
	return in.filters(), nil
}

func (q catalogQuery) filters() catalog.Filters {
	return catalog.Filters{
		Category: q.Category,
		Color:    q.Color,
		Source:   q.Source,
		Search:   q.Search,
	}
}

// FilterChange is the body of a single filter update. Value is held to
// the same per-field limits as the page URL.
type FilterChange struct {
	Field string `json:"field" validate:"required,oneof=category color source search"`
	Value string `json:"value" validate:"max=200"`
}

func DecodeFilterChange(r *http.Request) (catalog.Field, string, error) {
	var body FilterChange
	if err := DecodeJSONBody(r, &body); err != nil {
		return "", "", err
	}
	field, err := catalog.ParseField(body.Field)
	if err != nil {
		return "", "", err
	}
	value := SanitizeString(body.Value, 0)
	in := catalogQuery{}
	switch field {
	case catalog.FieldCategory:
		in.Category = value
	case catalog.FieldColor:
		in.Color = value
	case catalog.FieldSource:
		in.Source = value
	case catalog.FieldSearch:
		in.Search = value
	}
	if err := Struct(in); err != nil {
		return "", "", err
	}
	return field, value, nil
}
