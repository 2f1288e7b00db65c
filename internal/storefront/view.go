package storefront

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/yassinehussein4-cyber/storefront/internal/cart"
	"github.com/yassinehussein4-cyber/storefront/internal/catalog"
	"github.com/yassinehussein4-cyber/storefront/internal/checkout"
	"github.com/yassinehussein4-cyber/storefront/internal/session"
	"github.com/yassinehussein4-cyber/storefront/internal/toast"
	"github.com/yassinehussein4-cyber/storefront/internal/viewstate"
	"github.com/yassinehussein4-cyber/storefront/pkg/pagination"
)

// CartSummary is the cart panel and header badge.
type CartSummary struct {
	Lines    []cart.Line     `json:"lines"`
	Count    int             `json:"count"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

// PageView is everything the storefront renders for one session.
type PageView struct {
	Query           string              `json:"query"`
	State           viewstate.ViewState `json:"state"`
	Search          string              `json:"debounced_search"`
	Categories      []catalog.Category  `json:"categories"`
	Products        []catalog.Product   `json:"products"`
	SelectedProduct *catalog.Product    `json:"selected_product,omitempty"`
	Cart            CartSummary         `json:"cart"`
	Checkout        *checkout.Snapshot  `json:"checkout,omitempty"`
	PlacedOrder     *checkout.Order     `json:"placed_order,omitempty"`
	Toasts          []toast.Toast       `json:"toasts"`
	Loading         bool                `json:"loading"`
	Error           string              `json:"error,omitempty"`
}

// View assembles the page: products filtered by category and the debounced search, then sorted.
func (svc *Service) View(s *session.Session) PageView {
	state := s.View.State()
	search := s.Search.Value()

	st := svc.state(s)
	st.mu.Lock()
	products := st.products
	categories := append([]catalog.Category(nil), st.categories...)
	loading := st.loading
	errText := st.errText
	st.mu.Unlock()

	visible := catalog.SortProducts(catalog.FilterProducts(products, state.Category, search), state.Sort)
	lines := s.Cart.Lines()

	view := PageView{
		Query:           s.View.Query(),
		State:           state,
		Search:          search,
		Categories:      categories,
		Products:        visible,
		SelectedProduct: viewstate.ResolveProduct(state, products),
		Cart: CartSummary{
			Lines:    lines,
			Count:    s.Cart.Count(),
			Subtotal: checkout.Subtotal(lines),
		},
		Toasts:  s.Toasts.List(),
		Loading: loading,
		Error:   errText,
	}
	if state.CheckoutOpen {
		snapshot := s.Checkout.Snapshot()
		view.Checkout = &snapshot
	}
	if state.PlacedOpen {
		view.PlacedOrder = s.Checkout.LastOrder()
	}
	return view
}

// PagedView is one server-filtered page of the catalog.
type PagedView struct {
	Params    catalog.ListProductsParams `json:"-"`
	Page      int                        `json:"page"`
	Limit     int                        `json:"limit"`
	Items     []catalog.Product          `json:"items"`
	Total     int                        `json:"total"`
	PageCount int                        `json:"page_count"`
	// Stale is set when a newer page request superseded this one; the newest stored page is returned.
	Stale bool   `json:"stale,omitempty"`
	Error string `json:"error,omitempty"`
}

// Paged fetches a page filtered by the session's category, debounced search and sort. Only the
// most recently issued request may replace the stored page.
func (svc *Service) Paged(ctx context.Context, s *session.Session, page, limit int) (PagedView, error) {
	state := s.View.State()
	norm := pagination.Params{Page: page, Limit: limit}.Normalize()
	params := catalog.ListProductsParams{
		CategoryID: state.Category,
		Query:      s.Search.Value(),
		Page:       norm.Page,
		Limit:      norm.Limit,
		Sort:       state.Sort,
	}

	st := svc.state(s)
	st.mu.Lock()
	st.pageSeq++
	seq := st.pageSeq
	st.mu.Unlock()

	result, err := svc.store.ListProducts(ctx, params)

	st.mu.Lock()
	defer st.mu.Unlock()
	if seq != st.pageSeq || !s.Active() {
		svc.metrics.IncStale()
		view := pagedFrom(st.page, st.pageParams)
		view.Stale = true
		return view, nil
	}
	if err != nil {
		svc.logg.Error(svc.logg.WithSessionID(ctx, s.ID()), "catalog page failed", err)
		view := pagedFrom(st.page, st.pageParams)
		view.Error = LoadErrorText
		return view, err
	}
	st.page = &result
	st.pageParams = params
	return pagedFrom(st.page, params), nil
}

func pagedFrom(page *catalog.ProductPage, params catalog.ListProductsParams) PagedView {
	view := PagedView{Params: params, Page: params.Page, Limit: params.Limit, Items: []catalog.Product{}}
	if page == nil {
		return view
	}
	view.Items = append([]catalog.Product(nil), page.Items...)
	view.Total = page.Total
	view.PageCount = page.PageCount
	return view
}
