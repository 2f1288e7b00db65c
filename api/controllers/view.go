package controllers

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/yassinehussein4-cyber/storefront/api/responses"
	"github.com/yassinehussein4-cyber/storefront/api/validators"
	"github.com/yassinehussein4-cyber/storefront/internal/storefront"
	pkgerrors "github.com/yassinehussein4-cyber/storefront/pkg/errors"
	"github.com/yassinehussein4-cyber/storefront/pkg/logger"
	"github.com/yassinehussein4-cyber/storefront/pkg/pagination"
	"github.com/yassinehussein4-cyber/storefront/pkg/types"
)

// ViewGet returns the session's page, loading the catalog on first use.
func ViewGet(svc *storefront.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := requireSession(w, r, logg)
		if !ok {
			return
		}
		svc.EnsureLoaded(r.Context(), s)
		responses.WriteSuccess(w, svc.View(s))
	}
}

// ViewReload refetches the catalog for the session. A failed fetch keeps the previous products and
// is reported in the page's error text.
func ViewReload(svc *storefront.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := requireSession(w, r, logg)
		if !ok {
			return
		}
		_ = svc.Load(r.Context(), s)
		responses.WriteSuccess(w, svc.View(s))
	}
}

type viewPatchRequest struct {
	Changes map[string]*string `json:"changes" validate:"required"`
}

// ViewPatch applies a change set to the address bar as one replacement. Keys the storefront does
// not read are set or cleared like any other, so stray parameters can be removed.
func ViewPatch(svc *storefront.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := requireSession(w, r, logg)
		if !ok {
			return
		}

		var payload viewPatchRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		for key := range payload.Changes {
			if strings.TrimSpace(key) == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "view keys must not be blank"))
				return
			}
		}

		s.View.Update(payload.Changes)
		responses.WriteSuccess(w, svc.View(s))
	}
}

type viewNavigateRequest struct {
	Query string `json:"query"`
}

// ViewNavigate pushes a new history entry, as following a link would.
func ViewNavigate(svc *storefront.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := requireSession(w, r, logg)
		if !ok {
			return
		}

		var payload viewNavigateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		values, err := url.ParseQuery(strings.TrimPrefix(strings.TrimSpace(payload.Query), "?"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid query string"))
			return
		}

		s.View.Navigate(values)
		responses.WriteSuccess(w, svc.View(s))
	}
}

// ViewBack moves to the previous history entry.
func ViewBack(svc *storefront.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := requireSession(w, r, logg)
		if !ok {
			return
		}
		if _, moved := s.View.Back(); !moved {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeConflict, "no earlier history entry"))
			return
		}
		responses.WriteSuccess(w, svc.View(s))
	}
}

// ViewProducts returns one server-filtered page for the session's category, debounced search
// and sort.
func ViewProducts(svc *storefront.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := requireSession(w, r, logg)
		if !ok {
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

		// a failed fetch still answers with the last good page and the static error text
		view, _ := svc.Paged(r.Context(), s, page, limit)
		responses.WriteSuccessPage(w, view, types.PageMeta{
			Page:      view.Page,
			Limit:     view.Limit,
			Total:     view.Total,
			PageCount: view.PageCount,
		})
	}
}
