package session

import (
	"fmt"
	"net/url"
	"sync"
	"time"

	"go.uber.org/multierr"

	"github.com/yassinehussein4-cyber/storefront/internal/cart"
	"github.com/yassinehussein4-cyber/storefront/internal/catalog"
	"github.com/yassinehussein4-cyber/storefront/internal/checkout"
	"github.com/yassinehussein4-cyber/storefront/internal/debounce"
	"github.com/yassinehussein4-cyber/storefront/internal/toast"
	"github.com/yassinehussein4-cyber/storefront/internal/viewstate"
	"github.com/yassinehussein4-cyber/storefront/pkg/metrics"
)

// Options are shared by every session a registry creates.
type Options struct {
	SearchDebounce  time.Duration
	ToastTTL        time.Duration
	Pricing         checkout.Pricing
	CheckoutMetrics *metrics.CheckoutMetrics
}

// Session is one visitor's storefront: cart, toasts, address bar, debounced search and checkout.
type Session struct {
	id string

	Cart     *cart.Store
	Toasts   *toast.Store
	View     *viewstate.Synchronizer
	Search   *debounce.Emitter[string]
	Checkout *checkout.Flow

	// submitMu serializes PlaceOrder so each submission reads only the changes it staged.
	submitMu     sync.Mutex
	mu           sync.Mutex
	lastSeen     time.Time
	closed       bool
	checkoutOpen bool
	// pending collects view changes signalled by the checkout flow during one submission.
	pending     map[string]*string
	searchHooks []func(string)
	closeHooks  []func() error
	unsubscribe func()
}

// New builds a session whose address bar starts at query.
func New(id string, query url.Values, opts Options) *Session {
	s := &Session{
		id:       id,
		Cart:     cart.NewStore(),
		Toasts:   toast.NewStore(opts.ToastTTL),
		View:     viewstate.New(viewstate.NewHistory(query)),
		lastSeen: time.Now(),
	}
	initial := s.View.State()
	s.checkoutOpen = initial.CheckoutOpen
	s.Search = debounce.NewWithValue(opts.SearchDebounce, initial.Search, s.emitSearch)
	s.Checkout = checkout.NewFlow(checkout.FlowParams{
		Cart:     s.Cart,
		Toasts:   s.Toasts,
		Pricing:  opts.Pricing,
		Metrics:  opts.CheckoutMetrics,
		OnClosed: func() { s.stage(viewstate.KeyCheckout, nil) },
		OnPlaced: func(checkout.Order) { s.stage(viewstate.KeyPlaced, viewstate.String("1")) },
	})
	s.unsubscribe = s.View.OnChange(s.onViewChange)
	return s
}

func (s *Session) ID() string {
	return s.id
}

// Touch records activity for idle sweeping.
func (s *Session) Touch(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = now
}

func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// Active reports whether the session is still open. Results that arrive for an inactive session
// are dropped.
func (s *Session) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.closed
}

// OnSearch registers fn for every debounced search value.
func (s *Session) OnSearch(fn func(string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.searchHooks = append(s.searchHooks, fn)
}

// OnClose registers fn to run when the session closes.
func (s *Session) OnClose(fn func() error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeHooks = append(s.closeHooks, fn)
}

// AddToCart adds qty of product, confirms it with a toast and closes the product panel.
func (s *Session) AddToCart(product catalog.Product, qty int) cart.Line {
	if qty < 1 {
		qty = 1
	}
	s.Cart.Add(product, qty)
	added := cart.Line{ProductID: product.ID, Title: product.Title, Price: product.Price, Qty: qty}
	s.Toasts.Push(fmt.Sprintf("Added %d × %s (%s)", qty, product.Title, checkout.FormatMoney(checkout.LineTotal(added))))
	s.View.Update(map[string]*string{viewstate.KeyProduct: nil})
	line, _ := s.Cart.Line(product.ID)
	return line
}

// OpenCart pushes a history entry with the cart panel open, keeping the current filters.
func (s *Session) OpenCart() viewstate.ViewState {
	next := s.View.History().Current()
	next.Set(viewstate.KeyCart, "1")
	return s.View.Navigate(next)
}

// ProceedToCheckout swaps the cart panel for the checkout panel in one replacement.
func (s *Session) ProceedToCheckout() viewstate.ViewState {
	return s.View.Update(map[string]*string{
		viewstate.KeyCart:     nil,
		viewstate.KeyCheckout: viewstate.String("1"),
	})
}

// CloseCheckout closes the checkout panel; the form is discarded.
func (s *Session) CloseCheckout() viewstate.ViewState {
	return s.View.Update(map[string]*string{viewstate.KeyCheckout: nil})
}

// ClosePlaced dismisses the order confirmation and returns to the home view.
func (s *Session) ClosePlaced() viewstate.ViewState {
	return s.View.Reset()
}

// PlaceOrder submits the checkout form. The flow's closed and placed signals are applied to the
// address bar as a single replacement.
func (s *Session) PlaceOrder() (*checkout.Order, error) {
	s.submitMu.Lock()
	defer s.submitMu.Unlock()

	s.mu.Lock()
	s.pending = map[string]*string{}
	s.mu.Unlock()

	order, err := s.Checkout.Submit()

	s.mu.Lock()
	changes := s.pending
	s.pending = nil
	s.mu.Unlock()

	if len(changes) > 0 {
		s.View.Update(changes)
	}
	return order, err
}

// Close cancels pending timers and runs close hooks. Closing twice is a no-op.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	hooks := s.closeHooks
	s.closeHooks = nil
	unsubscribe := s.unsubscribe
	s.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	s.Search.Close()
	s.Toasts.Close()

	var err error
	for _, hook := range hooks {
		err = multierr.Append(err, hook())
	}
	return err
}

func (s *Session) stage(key string, value *string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil {
		s.pending = map[string]*string{}
	}
	s.pending[key] = value
}

func (s *Session) onViewChange(state viewstate.ViewState) {
	s.Search.Set(state.Search)

	s.mu.Lock()
	wasOpen := s.checkoutOpen
	s.checkoutOpen = state.CheckoutOpen
	s.mu.Unlock()

	if wasOpen && !state.CheckoutOpen {
		s.Checkout.Reset()
	}
}

func (s *Session) emitSearch(value string) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	hooks := append([]func(string){}, s.searchHooks...)
	s.mu.Unlock()

	for _, fn := range hooks {
		fn(value)
	}
}
