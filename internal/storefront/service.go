package storefront

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/yassinehussein4-cyber/storefront/internal/catalog"
	"github.com/yassinehussein4-cyber/storefront/internal/session"
	pkgerrors "github.com/yassinehussein4-cyber/storefront/pkg/errors"
	"github.com/yassinehussein4-cyber/storefront/pkg/logger"
	"github.com/yassinehussein4-cyber/storefront/pkg/metrics"
)

// LoadErrorText is the only failure detail shown to shoppers.
const LoadErrorText = "Failed to load CMS content."

// AllCategory heads every category list.
var AllCategory = catalog.Category{ID: catalog.AllCategoryID, Title: "All"}

// ServiceParams wire the browse service.
type ServiceParams struct {
	Store   catalog.Store
	Logger  *logger.Logger
	Metrics *metrics.CatalogMetrics
}

// Service loads the catalog for each session and assembles what the storefront shows.
type Service struct {
	store   catalog.Store
	logg    *logger.Logger
	metrics *metrics.CatalogMetrics

	mu     sync.Mutex
	states map[string]*browseState
}

// browseState is one session's loaded catalog. Sequence numbers make the latest request win
// regardless of the order responses arrive in.
type browseState struct {
	mu         sync.Mutex
	seq        uint64
	pageSeq    uint64
	loaded     bool
	loading    bool
	errText    string
	products   []catalog.Product
	categories []catalog.Category
	page       *catalog.ProductPage
	pageParams catalog.ListProductsParams
}

func NewService(params ServiceParams) *Service {
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &Service{
		store:   params.Store,
		logg:    logg,
		metrics: params.Metrics,
		states:  map[string]*browseState{},
	}
}

// Attach starts tracking s and forgets it when s closes. Registry.OnCreate takes this directly.
func (svc *Service) Attach(s *session.Session) {
	svc.mu.Lock()
	svc.states[s.ID()] = &browseState{categories: []catalog.Category{AllCategory}}
	svc.mu.Unlock()

	s.OnSearch(func(query string) { svc.refreshPage(s, query) })

	id := s.ID()
	s.OnClose(func() error {
		svc.mu.Lock()
		defer svc.mu.Unlock()
		delete(svc.states, id)
		return nil
	})
}

// refreshPage refetches the first page once a settled search no longer matches the stored page.
// Sessions that never asked for a page are left alone.
func (svc *Service) refreshPage(s *session.Session, query string) {
	st := svc.state(s)
	st.mu.Lock()
	fetched, prev := st.page != nil, st.pageParams
	st.mu.Unlock()
	if !fetched || prev.Query == query {
		return
	}
	// failures are logged by Paged and keep the previous page
	_, _ = svc.Paged(svc.logg.WithSessionID(context.Background(), s.ID()), s, 0, prev.Limit)
}

func (svc *Service) state(s *session.Session) *browseState {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	st, ok := svc.states[s.ID()]
	if !ok {
		st = &browseState{categories: []catalog.Category{AllCategory}}
		if s.Active() {
			svc.states[s.ID()] = st
		}
	}
	return st
}

// Load fetches every product and the category list concurrently. A failure keeps whatever was
// loaded before and records LoadErrorText; the returned error is for logging only.
func (svc *Service) Load(ctx context.Context, s *session.Session) error {
	st := svc.state(s)
	st.mu.Lock()
	st.seq++
	seq := st.seq
	st.loading = true
	st.mu.Unlock()

	var (
		products   []catalog.Product
		categories []catalog.Category
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		products, err = svc.store.ListAllProducts(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		categories, err = svc.store.ListCategories(gctx)
		return err
	})
	err := g.Wait()

	st.mu.Lock()
	defer st.mu.Unlock()
	if seq != st.seq || !s.Active() {
		svc.metrics.IncStale()
		return nil
	}
	st.loading = false
	if err != nil {
		st.errText = LoadErrorText
		logCtx := svc.logg.WithFields(ctx, map[string]any{"session_id": s.ID(), "retryable": pkgerrors.IsRetryable(err)})
		svc.logg.Error(logCtx, "catalog load failed", err)
		return err
	}
	st.errText = ""
	st.loaded = true
	st.products = products
	st.categories = append([]catalog.Category{AllCategory}, categories...)
	return nil
}

// EnsureLoaded loads the catalog the first time a session needs it.
func (svc *Service) EnsureLoaded(ctx context.Context, s *session.Session) {
	st := svc.state(s)
	st.mu.Lock()
	needed := !st.loaded && !st.loading
	st.mu.Unlock()
	if needed {
		_ = svc.Load(ctx, s)
	}
}

// Products returns the session's loaded products.
func (svc *Service) Products(s *session.Session) []catalog.Product {
	st := svc.state(s)
	st.mu.Lock()
	defer st.mu.Unlock()
	out := make([]catalog.Product, len(st.products))
	copy(out, st.products)
	return out
}

// FindProduct looks id up in the session's loaded products.
func (svc *Service) FindProduct(s *session.Session, id string) *catalog.Product {
	return catalog.FindProduct(svc.Products(s), id)
}
