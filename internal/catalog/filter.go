package catalog

import (
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/yassinehussein4-cyber/storefront/pkg/enums"
)

var (
	collatorMu sync.Mutex
	collator   = collate.New(language.English)
)

// FilterProducts keeps products in categoryID (AllCategoryID or empty keeps all) whose title or
// description contains query, case-insensitively. The input slice is not modified.
func FilterProducts(products []Product, categoryID, query string) []Product {
	needle := strings.ToLower(strings.TrimSpace(query))
	out := make([]Product, 0, len(products))
	for _, p := range products {
		if categoryID != "" && categoryID != AllCategoryID && p.CategoryID != categoryID {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(p.Title), needle) &&
			!strings.Contains(strings.ToLower(p.Description), needle) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// SortProducts returns a sorted copy. Default order keeps the input order; ties keep input order.
func SortProducts(products []Product, order enums.SortOrder) []Product {
	out := make([]Product, len(products))
	copy(out, products)

	switch order {
	case enums.SortOrderPriceAsc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price < out[j].Price })
	case enums.SortOrderPriceDesc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price > out[j].Price })
	case enums.SortOrderNameAsc:
		sortByTitle(out, false)
	case enums.SortOrderNameDesc:
		sortByTitle(out, true)
	}
	return out
}

// collate.Collator is not safe for concurrent use.
func sortByTitle(products []Product, desc bool) {
	collatorMu.Lock()
	defer collatorMu.Unlock()
	sort.SliceStable(products, func(i, j int) bool {
		cmp := collator.CompareString(products[i].Title, products[j].Title)
		if desc {
			return cmp > 0
		}
		return cmp < 0
	})
}
