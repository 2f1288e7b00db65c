package catalog

import (
	"context"
	"strings"

	"github.com/yassinehussein4-cyber/storefront/pkg/pagination"
)

// StaticStore serves a fixed in-memory catalog. Full-text search is not supported by the backing
// data, so ListProducts falls back to substring filtering.
type StaticStore struct {
	Products   []Product
	Categories []Category
	Profiles   []Profile
}

var _ Store = (*StaticStore)(nil)

func (s *StaticStore) ListProducts(_ context.Context, params ListProductsParams) (ProductPage, error) {
	filtered := SortProducts(FilterProducts(s.Products, params.CategoryID, params.Query), params.Sort)
	page := pagination.Params{Page: params.Page, Limit: params.Limit}.Normalize()

	start, end := page.Bounds(len(filtered))
	items := make([]Product, end-start)
	copy(items, filtered[start:end])
	return ProductPage{
		Items:     items,
		Total:     len(filtered),
		PageCount: pagination.PageCount(len(filtered), page.Limit),
	}, nil
}

func (s *StaticStore) ListAllProducts(context.Context) ([]Product, error) {
	out := make([]Product, len(s.Products))
	copy(out, s.Products)
	return out, nil
}

func (s *StaticStore) ListCategories(context.Context) ([]Category, error) {
	return cloneCategories(s.Categories), nil
}

func (s *StaticStore) GetProfile(_ context.Context, slug string) (*Profile, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		slug = defaultProfileSlug
	}
	for _, p := range s.Profiles {
		if p.Slug == slug {
			profile := p
			return &profile, nil
		}
	}
	return nil, nil
}
