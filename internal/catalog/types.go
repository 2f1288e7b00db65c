package catalog

import (
	"context"

	"github.com/yassinehussein4-cyber/storefront/pkg/enums"
)

// AllCategoryID selects every category.
const AllCategoryID = "all"

// Product is a read-only copy of a CMS product entry.
type Product struct {
	ID            string  `json:"id"`
	Title         string  `json:"title"`
	Price         float64 `json:"price"`
	ImageURL      string  `json:"image_url,omitempty"`
	Description   string  `json:"description,omitempty"`
	CategoryID    string  `json:"category_id,omitempty"`
	CategoryTitle string  `json:"category_title,omitempty"`
}

// Category groups products; fetched once and cached for the process lifetime.
type Category struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Slug  string `json:"slug,omitempty"`
}

// Profile is the storefront owner's public profile.
type Profile struct {
	ID        string `json:"id"`
	Slug      string `json:"slug"`
	Name      string `json:"name"`
	Role      string `json:"role,omitempty"`
	Bio       string `json:"bio,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// ListProductsParams filters one page of products. Page is zero-based.
type ListProductsParams struct {
	CategoryID string
	Query      string
	Page       int
	Limit      int
	Sort       enums.SortOrder
}

// ProductPage is one offset-paginated slice of the catalog.
type ProductPage struct {
	Items     []Product `json:"items"`
	Total     int       `json:"total"`
	PageCount int       `json:"page_count"`
}

// Store is the read-only catalog surface the storefront depends on.
type Store interface {
	ListProducts(ctx context.Context, params ListProductsParams) (ProductPage, error)
	ListAllProducts(ctx context.Context) ([]Product, error)
	ListCategories(ctx context.Context) ([]Category, error)
	GetProfile(ctx context.Context, slug string) (*Profile, error)
}

// FindProduct returns the product with id, or nil.
func FindProduct(products []Product, id string) *Product {
	if id == "" {
		return nil
	}
	for i := range products {
		if products[i].ID == id {
			p := products[i]
			return &p
		}
	}
	return nil
}
