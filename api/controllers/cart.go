package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/yassinehussein4-cyber/storefront/api/responses"
	"github.com/yassinehussein4-cyber/storefront/api/validators"
	"github.com/yassinehussein4-cyber/storefront/internal/cart"
	"github.com/yassinehussein4-cyber/storefront/internal/checkout"
	"github.com/yassinehussein4-cyber/storefront/internal/session"
	"github.com/yassinehussein4-cyber/storefront/internal/storefront"
	pkgerrors "github.com/yassinehussein4-cyber/storefront/pkg/errors"
	"github.com/yassinehussein4-cyber/storefront/pkg/logger"
)

type cartResponse struct {
	Lines    []cart.Line `json:"lines"`
	Count    int         `json:"count"`
	Subtotal string      `json:"subtotal"`
	Display  string      `json:"subtotal_display"`
}

func newCartResponse(s *session.Session) cartResponse {
	lines := s.Cart.Lines()
	if lines == nil {
		lines = []cart.Line{}
	}
	subtotal := checkout.Subtotal(lines)
	return cartResponse{
		Lines:    lines,
		Count:    s.Cart.Count(),
		Subtotal: subtotal.StringFixed(2),
		Display:  checkout.FormatMoney(subtotal),
	}
}

// CartGet returns the session's cart.
func CartGet(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := requireSession(w, r, logg)
		if !ok {
			return
		}
		responses.WriteSuccess(w, newCartResponse(s))
	}
}

type addCartItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Qty       int    `json:"qty"`
}

// CartAddItem adds a loaded product to the cart. Quantities below one are raised to one.
func CartAddItem(svc *storefront.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := requireSession(w, r, logg)
		if !ok {
			return
		}

		var payload addCartItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		svc.EnsureLoaded(r.Context(), s)
		product := svc.FindProduct(s, strings.TrimSpace(payload.ProductID))
		if product == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "product not found").
				WithDetails(map[string]string{"product_id": payload.ProductID}))
			return
		}

		s.AddToCart(*product, payload.Qty)
		responses.WriteSuccessStatus(w, http.StatusCreated, newCartResponse(s))
	}
}

// CartIncrement raises a line's quantity by one.
func CartIncrement(logg *logger.Logger) http.HandlerFunc {
	return cartLineAction(logg, func(s *session.Session, id string) { s.Cart.Increment(id) })
}

// CartDecrement lowers a line's quantity by one, never below one.
func CartDecrement(logg *logger.Logger) http.HandlerFunc {
	return cartLineAction(logg, func(s *session.Session, id string) { s.Cart.Decrement(id) })
}

// CartRemoveItem drops a line.
func CartRemoveItem(logg *logger.Logger) http.HandlerFunc {
	return cartLineAction(logg, func(s *session.Session, id string) { s.Cart.Remove(id) })
}

type setQuantityRequest struct {
	Qty *float64 `json:"qty" validate:"required"`
}

// CartSetQuantity sets a line's quantity; fractional or invalid values are clamped.
func CartSetQuantity(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := requireSession(w, r, logg)
		if !ok {
			return
		}
		id, ok := cartLineID(w, r, logg, s)
		if !ok {
			return
		}

		var payload setQuantityRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		s.Cart.SetQuantity(id, *payload.Qty)
		responses.WriteSuccess(w, newCartResponse(s))
	}
}

// CartClear empties the cart.
func CartClear(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := requireSession(w, r, logg)
		if !ok {
			return
		}
		s.Cart.Clear()
		responses.WriteSuccess(w, newCartResponse(s))
	}
}

// CartOpen opens the cart panel as a new history entry.
func CartOpen(svc *storefront.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := requireSession(w, r, logg)
		if !ok {
			return
		}
		s.OpenCart()
		responses.WriteSuccess(w, svc.View(s))
	}
}

// CartProceed swaps the cart panel for the checkout panel.
func CartProceed(svc *storefront.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := requireSession(w, r, logg)
		if !ok {
			return
		}
		if s.Cart.IsEmpty() {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeStateConflict, "cart is empty"))
			return
		}
		s.ProceedToCheckout()
		responses.WriteSuccess(w, svc.View(s))
	}
}

func cartLineAction(logg *logger.Logger, apply func(*session.Session, string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := requireSession(w, r, logg)
		if !ok {
			return
		}
		id, ok := cartLineID(w, r, logg, s)
		if !ok {
			return
		}
		apply(s, id)
		responses.WriteSuccess(w, newCartResponse(s))
	}
}

func cartLineID(w http.ResponseWriter, r *http.Request, logg *logger.Logger, s *session.Session) (string, bool) {
	id := strings.TrimSpace(chi.URLParam(r, "productId"))
	if _, found := s.Cart.Line(id); !found {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "cart line not found").
			WithDetails(map[string]string{"product_id": id}))
		return "", false
	}
	return id, true
}
