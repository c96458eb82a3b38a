package backend

import (
	"time"

	"github.com/shopspring/decimal"
)

// Category groups balloon compositions; Slug is the catalog filter value.
type Category struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug,omitempty"`
	Description string `json:"description,omitempty"`
	Image       string `json:"image,omitempty"`
}

type Color struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	HexCode string `json:"hex_code,omitempty"`
}

// Source is where the materials for a composition can be bought.
type Source struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	URL         string `json:"url,omitempty"`
	Description string `json:"description,omitempty"`
}

type Image struct {
	ID      int    `json:"id"`
	Image   string `json:"image"`
	AltText string `json:"alt_text,omitempty"`
	IsMain  bool   `json:"is_main"`
	Order   int    `json:"order,omitempty"`
}

type Product struct {
	ID                  int                 `json:"id"`
	Name                string              `json:"name"`
	Slug                string              `json:"slug,omitempty"`
	Description         string              `json:"description,omitempty"`
	ShortDescription    string              `json:"short_description,omitempty"`
	Category            *Category           `json:"category,omitempty"`
	Color               *Color              `json:"color,omitempty"`
	Colors              []Color             `json:"colors,omitempty"`
	Sources             []Source            `json:"sources,omitempty"`
	Shape               string              `json:"shape,omitempty"`
	Theme               string              `json:"theme,omitempty"`
	BasePrice           decimal.Decimal     `json:"base_price"`
	DiscountPrice       decimal.NullDecimal `json:"discount_price"`
	CurrentPrice        decimal.NullDecimal `json:"current_price"`
	HasDiscount         bool                `json:"has_discount"`
	IsFeatured          bool                `json:"is_featured"`
	MainImage           *Image              `json:"main_image,omitempty"`
	ImageURL            string              `json:"image,omitempty"`
	Images              []Image             `json:"images,omitempty"`
	MinQuantity         int                 `json:"min_quantity,omitempty"`
	MaxQuantity         int                 `json:"max_quantity,omitempty"`
	IsCustomizable      bool                `json:"is_customizable,omitempty"`
	CustomTextAvailable bool                `json:"custom_text_available,omitempty"`
	ViewsCount          int                 `json:"views_count,omitempty"`
	CreatedAt           *time.Time          `json:"created_at,omitempty"`
}

// PrimaryImage resolves the image shown on a product card: the serialized
// main image, then the first image flagged main, then the first image,
// then the flat image url.
func (p Product) PrimaryImage() string {
	if p.MainImage != nil && p.MainImage.Image != "" {
		return p.MainImage.Image
	}
	for _, img := range p.Images {
		if img.IsMain && img.Image != "" {
			return img.Image
		}
	}
	if len(p.Images) > 0 && p.Images[0].Image != "" {
		return p.Images[0].Image
	}
	return p.ImageURL
}

// Summary prefers the short description used on cards.
func (p Product) Summary() string {
	if p.ShortDescription != "" {
		return p.ShortDescription
	}
	return p.Description
}

type GalleryImage struct {
	ID           int        `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description,omitempty"`
	Image        string     `json:"image"`
	CategoryName string     `json:"category_name,omitempty"`
	EventType    string     `json:"event_type,omitempty"`
	IsFeatured   bool       `json:"is_featured"`
	ViewsCount   int        `json:"views_count,omitempty"`
	CreatedAt    *time.Time `json:"created_at,omitempty"`
}

type ClientReview struct {
	ID           int           `json:"id"`
	Name         string        `json:"name"`
	ReviewText   string        `json:"review_text"`
	Rating       int           `json:"rating"`
	GalleryImage *GalleryImage `json:"gallery_image,omitempty"`
	IsFeatured   bool          `json:"is_featured"`
	CreatedAt    *time.Time    `json:"created_at,omitempty"`
}
