package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/yassinehussein4-cyber/storefront/api/responses"
	"github.com/yassinehussein4-cyber/storefront/api/validators"
	"github.com/yassinehussein4-cyber/storefront/internal/catalog"
	pkgerrors "github.com/yassinehussein4-cyber/storefront/pkg/errors"
	"github.com/yassinehussein4-cyber/storefront/pkg/logger"
	"github.com/yassinehussein4-cyber/storefront/pkg/pagination"
	"github.com/yassinehussein4-cyber/storefront/pkg/types"
)

const maxSearchLen = 200

// CatalogProducts lists one server-filtered page of products.
func CatalogProducts(store catalog.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if store == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog unavailable"))
			return
		}

		page, err := validators.ParseQueryInt(r, "page", 0, 0, 10000)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		sort, err := validators.ParseQuerySort(r, "sort")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params := catalog.ListProductsParams{
			CategoryID: validators.ParseQueryString(r, "category", 100),
			Query:      validators.ParseQueryString(r, "q", maxSearchLen),
			Page:       page,
			Limit:      limit,
			Sort:       sort,
		}
		result, err := store.ListProducts(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items := result.Items
		if items == nil {
			items = []catalog.Product{}
		}
		responses.WriteSuccessPage(w, items, types.PageMeta{
			Page:      page,
			Limit:     limit,
			Total:     result.Total,
			PageCount: result.PageCount,
		})
	}
}

// CatalogCategories lists every category ordered by title.
func CatalogCategories(store catalog.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if store == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog unavailable"))
			return
		}
		categories, err := store.ListCategories(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if categories == nil {
			categories = []catalog.Category{}
		}
		responses.WriteSuccess(w, categories)
	}
}

// CatalogProfile returns the owner profile for the slug.
func CatalogProfile(store catalog.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if store == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog unavailable"))
			return
		}
		slug := strings.TrimSpace(chi.URLParam(r, "slug"))
		profile, err := store.GetProfile(r.Context(), slug)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if profile == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "profile not found").
				WithDetails(map[string]string{"slug": slug}))
			return
		}
		responses.WriteSuccess(w, profile)
	}
}
