package catalog

import (
	"fmt"
	"net/url"
	"strings"
)

// Field names one filter dimension. The string value doubles as the
// query parameter sent to the backend.
type Field string

const (
	FieldCategory Field = "category"
	FieldColor    Field = "color"
	FieldSource   Field = "source"
	FieldSearch   Field = "search"
)

// Fields lists every filter dimension in query order.
var Fields = []Field{FieldCategory, FieldColor, FieldSource, FieldSearch}

func ParseField(value string) (Field, error) {
	f := Field(strings.ToLower(strings.TrimSpace(value)))
	switch f {
	case FieldCategory, FieldColor, FieldSource, FieldSearch:
		return f, nil
	}
	return "", fmt.Errorf("unknown filter field %q", value)
}

// Filters holds the selections of a catalog session. An empty value
// means the dimension is unconstrained.
type Filters struct {
	Category string `json:"category"`
	Color    string `json:"color"`
	Source   string `json:"source"`
	Search   string `json:"search"`
}

func (f Filters) Get(field Field) string {
	switch field {
	case FieldCategory:
		return f.Category
	case FieldColor:
		return f.Color
	case FieldSource:
		return f.Source
	case FieldSearch:
		return f.Search
	}
	return ""
}

// With returns a copy with one field replaced by its normalized value.
func (f Filters) With(field Field, value string) Filters {
	value = normalize(value)
	switch field {
	case FieldCategory:
		f.Category = value
	case FieldColor:
		f.Color = value
	case FieldSource:
		f.Source = value
	case FieldSearch:
		f.Search = value
	}
	return f
}

func (f Filters) Normalized() Filters {
	return Filters{
		Category: normalize(f.Category),
		Color:    normalize(f.Color),
		Source:   normalize(f.Source),
		Search:   normalize(f.Search),
	}
}

func (f Filters) IsEmpty() bool {
	return f.Normalized() == Filters{}
}

// Query builds the backend query from the non-empty fields only.
func (f Filters) Query() url.Values {
	q := url.Values{}
	for _, field := range Fields {
		if v := normalize(f.Get(field)); v != "" {
			q.Set(string(field), v)
		}
	}
	return q
}

func normalize(value string) string {
	return strings.TrimSpace(value)
}
