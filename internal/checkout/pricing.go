package checkout

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/yassinehussein4-cyber/storefront/internal/cart"
	"github.com/yassinehussein4-cyber/storefront/pkg/config"
)

// Pricing holds the storefront's shipping and promo rules.
type Pricing struct {
	PromoCode        string
	PromoPercent     decimal.Decimal
	FreeShippingOver decimal.Decimal
	FlatShipping     decimal.Decimal
}

// Summary is the order total breakdown shown next to the checkout form.
type Summary struct {
	Subtotal     decimal.Decimal `json:"subtotal"`
	Shipping     decimal.Decimal `json:"shipping"`
	Discount     decimal.Decimal `json:"discount"`
	Total        decimal.Decimal `json:"total"`
	PromoApplied bool            `json:"promo_applied"`
}

// DefaultPricing is SAVE10 for 10% off, free shipping over 200 and a flat fee of 5 otherwise.
func DefaultPricing() Pricing {
	return Pricing{
		PromoCode:        "SAVE10",
		PromoPercent:     decimal.NewFromInt(10),
		FreeShippingOver: decimal.NewFromInt(200),
		FlatShipping:     decimal.NewFromInt(5),
	}
}

// PricingFromConfig builds Pricing from storefront settings.
func PricingFromConfig(cfg config.StorefrontConfig) Pricing {
	return Pricing{
		PromoCode:        NormalizePromo(cfg.PromoCode),
		PromoPercent:     decimal.NewFromInt(int64(cfg.PromoPercent)),
		FreeShippingOver: decimal.NewFromFloat(cfg.FreeShippingOver),
		FlatShipping:     decimal.NewFromFloat(cfg.FlatShipping),
	}
}

// NormalizePromo trims and upper-cases a promo code.
func NormalizePromo(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// PromoValid reports whether code matches the configured promo, ignoring case and padding.
func (p Pricing) PromoValid(code string) bool {
	normalized := NormalizePromo(code)
	return normalized != "" && normalized == NormalizePromo(p.PromoCode)
}

// LineTotal is price × qty.
func LineTotal(line cart.Line) decimal.Decimal {
	return decimal.NewFromFloat(line.Price).Mul(decimal.NewFromInt(int64(line.Qty)))
}

// Subtotal sums every line total.
func Subtotal(lines []cart.Line) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(LineTotal(l))
	}
	return total
}

// Quote prices lines with the promo currently typed in the form.
func (p Pricing) Quote(lines []cart.Line, promo string) Summary {
	subtotal := Subtotal(lines)

	shipping := p.FlatShipping
	if subtotal.IsZero() || subtotal.GreaterThan(p.FreeShippingOver) {
		shipping = decimal.Zero
	}

	discount := decimal.Zero
	applied := p.PromoValid(promo)
	if applied {
		discount = subtotal.Mul(p.PromoPercent).Div(decimal.NewFromInt(100))
	}

	total := subtotal.Add(shipping).Sub(discount)
	if total.IsNegative() {
		total = decimal.Zero
	}
	return Summary{
		Subtotal:     subtotal,
		Shipping:     shipping,
		Discount:     discount,
		Total:        total,
		PromoApplied: applied,
	}
}

// FormatMoney renders an amount the way the storefront labels prices.
func FormatMoney(amount decimal.Decimal) string {
	return "€" + amount.StringFixed(2)
}
