package enums

import "fmt"

// SortOrder is the catalog ordering selected in the storefront toolbar.
type SortOrder string

const (
	SortOrderDefault   SortOrder = "default"
	SortOrderPriceAsc  SortOrder = "price-asc"
	SortOrderPriceDesc SortOrder = "price-desc"
	SortOrderNameAsc   SortOrder = "name-asc"
	SortOrderNameDesc  SortOrder = "name-desc"
)

var validSortOrders = []SortOrder{
	SortOrderDefault,
	SortOrderPriceAsc,
	SortOrderPriceDesc,
	SortOrderNameAsc,
	SortOrderNameDesc,
}

// String implements fmt.Stringer.
func (s SortOrder) String() string {
	return string(s)
}

// IsValid reports whether the value is a known SortOrder.
func (s SortOrder) IsValid() bool {
	for _, candidate := range validSortOrders {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseSortOrder converts raw input into a SortOrder.
func ParseSortOrder(value string) (SortOrder, error) {
	for _, candidate := range validSortOrders {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid sort order %q", value)
}

// SortOrderOrDefault parses value and falls back to SortOrderDefault when it is unknown.
func SortOrderOrDefault(value string) SortOrder {
	if parsed, err := ParseSortOrder(value); err == nil {
		return parsed
	}
	return SortOrderDefault
}
