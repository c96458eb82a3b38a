package catalog

import (
	"github.com/shopspring/decimal"

	"github.com/balonis/storefront/pkg/backend"
)

const currencySuffix = " zł"

// Price is the rendered price of a product card. Original is empty unless
// a discount applies, in which case it is shown struck through.
type Price struct {
	Current    string `json:"current"`
	Original   string `json:"original,omitempty"`
	Discounted bool   `json:"discounted"`
}

func PriceFor(p backend.Product) Price {
	if p.HasDiscount && p.DiscountPrice.Valid {
		return Price{
			Current:    FormatPLN(p.DiscountPrice.Decimal),
			Original:   FormatPLN(p.BasePrice),
			Discounted: true,
		}
	}
	return Price{Current: FormatPLN(finalPrice(p))}
}

func finalPrice(p backend.Product) decimal.Decimal {
	if p.CurrentPrice.Valid {
		return p.CurrentPrice.Decimal
	}
	if p.DiscountPrice.Valid {
		return p.DiscountPrice.Decimal
	}
	return p.BasePrice
}

// FormatPLN drops the fraction for whole amounts: "80 zł", "79.50 zł".
func FormatPLN(amount decimal.Decimal) string {
	if amount.Equal(amount.Truncate(0)) {
		return amount.Truncate(0).String() + currencySuffix
	}
	return amount.StringFixed(2) + currencySuffix
}
