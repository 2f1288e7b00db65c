package checkout

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yassinehussein4-cyber/storefront/internal/cart"
	"github.com/yassinehussein4-cyber/storefront/internal/toast"
	"github.com/yassinehussein4-cyber/storefront/pkg/enums"
	pkgerrors "github.com/yassinehussein4-cyber/storefront/pkg/errors"
	"github.com/yassinehussein4-cyber/storefront/pkg/metrics"
)

// Toast messages pushed by the flow.
const (
	MessagePromoApplied = "Promo applied"
	MessagePromoInvalid = "Invalid promo"
	MessageOrderPlaced  = "Order placed!"
)

// Submission outcomes recorded in metrics.
const (
	outcomePlaced    = "placed"
	outcomeInvalid   = "invalid"
	outcomeEmptyCart = "empty_cart"
)

// Cart is the part of the cart store the flow reads and clears.
type Cart interface {
	Lines() []cart.Line
	IsEmpty() bool
	Clear()
}

// Toaster shows a transient confirmation.
type Toaster interface {
	Push(message string) toast.Toast
}

// Order is the simulated confirmation produced by a successful submission.
type Order struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	Email    string      `json:"email"`
	Address  string      `json:"address"`
	Lines    []cart.Line `json:"lines"`
	Summary  Summary     `json:"summary"`
	PlacedAt time.Time   `json:"placed_at"`
}

// Snapshot is the flow as the checkout panel renders it.
type Snapshot struct {
	State     enums.CheckoutState `json:"state"`
	Form      Form                `json:"form"`
	Errors    FieldErrors         `json:"errors,omitempty"`
	Notice    string              `json:"notice,omitempty"`
	Attempted bool                `json:"attempted"`
	Lines     []cart.Line         `json:"lines"`
	Summary   Summary             `json:"summary"`
	LastOrder *Order              `json:"last_order,omitempty"`
}

// FlowParams wires a Flow to its collaborators. OnClosed and OnPlaced each fire once per
// placed order, in that order.
type FlowParams struct {
	Cart     Cart
	Toasts   Toaster
	Pricing  Pricing
	Metrics  *metrics.CheckoutMetrics
	OnClosed func()
	OnPlaced func(Order)
}

// Flow is the checkout state machine: editing → submitting → placed.
type Flow struct {
	cart     Cart
	toasts   Toaster
	pricing  Pricing
	metrics  *metrics.CheckoutMetrics
	onClosed func()
	onPlaced func(Order)

	mu        sync.Mutex
	state     enums.CheckoutState
	form      Form
	errors    FieldErrors
	attempted bool
	lastOrder *Order
}

func NewFlow(params FlowParams) *Flow {
	pricing := params.Pricing
	if pricing.PromoCode == "" {
		pricing = DefaultPricing()
	}
	return &Flow{
		cart:     params.Cart,
		toasts:   params.Toasts,
		pricing:  pricing,
		metrics:  params.Metrics,
		onClosed: params.OnClosed,
		onPlaced: params.OnPlaced,
		state:    enums.CheckoutStateEditing,
	}
}

// SetField edits one field. Once a submit has been attempted the form re-validates on every edit.
func (f *Flow) SetField(field, value string) (Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != enums.CheckoutStateEditing {
		return f.snapshotLocked(), pkgerrors.New(pkgerrors.CodeStateConflict, "checkout is not editable").
			WithDetails(map[string]any{"state": f.state})
	}
	if !f.form.set(field, value) {
		return f.snapshotLocked(), pkgerrors.New(pkgerrors.CodeValidation, "unknown checkout field").
			WithDetails(map[string]string{"field": field})
	}
	f.revalidateLocked()
	return f.snapshotLocked(), nil
}

// SetForm replaces every field at once.
func (f *Flow) SetForm(form Form) (Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != enums.CheckoutStateEditing {
		return f.snapshotLocked(), pkgerrors.New(pkgerrors.CodeStateConflict, "checkout is not editable").
			WithDetails(map[string]any{"state": f.state})
	}
	f.form = form
	f.revalidateLocked()
	return f.snapshotLocked(), nil
}

// ApplyPromo upper-cases the promo field and confirms or rejects it with a toast. The discount
// itself always follows the field value, applied or not.
func (f *Flow) ApplyPromo() (Snapshot, bool) {
	f.mu.Lock()
	f.form.Promo = NormalizePromo(f.form.Promo)
	valid := f.pricing.PromoValid(f.form.Promo)
	snapshot := f.snapshotLocked()
	f.mu.Unlock()

	if valid {
		f.toast(MessagePromoApplied)
	} else {
		f.toast(MessagePromoInvalid)
	}
	return snapshot, valid
}

// Submit validates the form and places the order. An empty cart is a state conflict; an invalid
// form keeps the flow editing and leaves the cart untouched.
func (f *Flow) Submit() (*Order, error) {
	f.mu.Lock()
	if f.state != enums.CheckoutStateEditing {
		state := f.state
		f.mu.Unlock()
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "checkout is not accepting submissions").
			WithDetails(map[string]any{"state": state})
	}
	if f.cart == nil || f.cart.IsEmpty() {
		f.mu.Unlock()
		f.metrics.IncOutcome(outcomeEmptyCart)
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "cart is empty")
	}

	f.attempted = true
	if errs := f.form.Validate(); errs != nil {
		f.errors = errs
		f.mu.Unlock()
		f.metrics.IncOutcome(outcomeInvalid)
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, RequiredFieldsNotice).
			WithDetails(map[string]any{"fields": errs})
	}

	f.errors = nil
	f.state = enums.CheckoutStateSubmitting
	lines := f.cart.Lines()
	order := &Order{
		ID:       uuid.NewString(),
		Name:     f.form.Name,
		Email:    f.form.Email,
		Address:  f.form.Address,
		Lines:    lines,
		Summary:  f.pricing.Quote(lines, f.form.Promo),
		PlacedAt: time.Now().UTC(),
	}

	f.cart.Clear()
	f.form = Form{}
	f.attempted = false
	f.state = enums.CheckoutStatePlaced
	f.lastOrder = order
	onClosed, onPlaced := f.onClosed, f.onPlaced
	f.mu.Unlock()

	f.toast(MessageOrderPlaced)
	f.metrics.IncOutcome(outcomePlaced)
	if onClosed != nil {
		onClosed()
	}
	if onPlaced != nil {
		onPlaced(*order)
	}
	return order, nil
}

// Reset discards the form and returns the flow to editing. The last order stays readable.
func (f *Flow) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state = enums.CheckoutStateEditing
	f.form = Form{}
	f.errors = nil
	f.attempted = false
}

// State returns the current state.
func (f *Flow) State() enums.CheckoutState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Snapshot returns the form, errors and a live quote of the cart.
func (f *Flow) Snapshot() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snapshotLocked()
}

// LastOrder returns the most recently placed order, if any.
func (f *Flow) LastOrder() *Order {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.lastOrder == nil {
		return nil
	}
	order := *f.lastOrder
	return &order
}

func (f *Flow) revalidateLocked() {
	if !f.attempted {
		return
	}
	f.errors = f.form.Validate()
}

func (f *Flow) snapshotLocked() Snapshot {
	var lines []cart.Line
	if f.cart != nil {
		lines = f.cart.Lines()
	}
	snapshot := Snapshot{
		State:     f.state,
		Form:      f.form,
		Attempted: f.attempted,
		Lines:     lines,
		Summary:   f.pricing.Quote(lines, f.form.Promo),
	}
	if len(f.errors) > 0 {
		snapshot.Errors = make(FieldErrors, len(f.errors))
		for k, v := range f.errors {
			snapshot.Errors[k] = v
		}
		if f.attempted {
			snapshot.Notice = RequiredFieldsNotice
		}
	}
	if f.lastOrder != nil {
		order := *f.lastOrder
		snapshot.LastOrder = &order
	}
	return snapshot
}

func (f *Flow) toast(message string) {
	if f.toasts != nil {
		f.toasts.Push(message)
	}
}
