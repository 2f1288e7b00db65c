package viewstate

import (
	"net/url"
	"strings"

	"github.com/yassinehussein4-cyber/storefront/internal/catalog"
	"github.com/yassinehussein4-cyber/storefront/pkg/enums"
)

// Query-string keys recognised by the storefront.
const (
	KeyCategory = "category"
	KeySearch   = "search"
	KeySort     = "sort"
	KeyProduct  = "product"
	KeyCart     = "cart"
	KeyCheckout = "checkout"
	KeyPlaced   = "placed"

	flagOn       = "1"
	defaultValue = "default"
)

// Keys lists every recognised key in display order.
var Keys = []string{KeyCategory, KeySearch, KeySort, KeyProduct, KeyCart, KeyCheckout, KeyPlaced}

// ViewState is the projection of the query string into what the storefront shows.
type ViewState struct {
	Category     string          `json:"category"`
	Search       string          `json:"search"`
	Sort         enums.SortOrder `json:"sort"`
	ProductID    string          `json:"product_id,omitempty"`
	CartOpen     bool            `json:"cart_open"`
	CheckoutOpen bool            `json:"checkout_open"`
	PlacedOpen   bool            `json:"placed_open"`
}

// Parse derives a ViewState. Unknown sort values and an empty category fall back to their
// defaults; panel flags are set only by the exact value "1".
func Parse(values url.Values) ViewState {
	category := strings.TrimSpace(values.Get(KeyCategory))
	if category == "" {
		category = catalog.AllCategoryID
	}
	return ViewState{
		Category:     category,
		Search:       values.Get(KeySearch),
		Sort:         enums.SortOrderOrDefault(values.Get(KeySort)),
		ProductID:    strings.TrimSpace(values.Get(KeyProduct)),
		CartOpen:     values.Get(KeyCart) == flagOn,
		CheckoutOpen: values.Get(KeyCheckout) == flagOn,
		PlacedOpen:   values.Get(KeyPlaced) == flagOn,
	}
}

// Values encodes the state canonically, omitting every key that holds its default.
func (s ViewState) Values() url.Values {
	values := url.Values{}
	if s.Category != "" && s.Category != catalog.AllCategoryID {
		values.Set(KeyCategory, s.Category)
	}
	if s.Search != "" {
		values.Set(KeySearch, s.Search)
	}
	if s.Sort != "" && s.Sort != enums.SortOrderDefault {
		values.Set(KeySort, s.Sort.String())
	}
	if s.ProductID != "" {
		values.Set(KeyProduct, s.ProductID)
	}
	if s.CartOpen {
		values.Set(KeyCart, flagOn)
	}
	if s.CheckoutOpen {
		values.Set(KeyCheckout, flagOn)
	}
	if s.PlacedOpen {
		values.Set(KeyPlaced, flagOn)
	}
	return values
}

// ResolveProduct returns the selected product, or nil when nothing is selected or the id no
// longer matches a loaded product.
func ResolveProduct(state ViewState, products []catalog.Product) *catalog.Product {
	return catalog.FindProduct(products, state.ProductID)
}

// String returns a pointer to v, for building Update change sets.
func String(v string) *string {
	return &v
}

func applyChanges(values url.Values, changes map[string]*string) url.Values {
	next := cloneValues(values)
	for key, value := range changes {
		if value == nil || *value == "" || *value == defaultValue {
			next.Del(key)
			continue
		}
		next.Set(key, *value)
	}
	return next
}

func cloneValues(values url.Values) url.Values {
	out := make(url.Values, len(values))
	for k, v := range values {
		out[k] = append([]string(nil), v...)
	}
	return out
}
