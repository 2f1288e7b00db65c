package controllers

import (
	"net/http"

	"github.com/yassinehussein4-cyber/storefront/api/responses"
	"github.com/yassinehussein4-cyber/storefront/api/validators"
	"github.com/yassinehussein4-cyber/storefront/internal/checkout"
	"github.com/yassinehussein4-cyber/storefront/internal/session"
	"github.com/yassinehussein4-cyber/storefront/internal/storefront"
	pkgerrors "github.com/yassinehussein4-cyber/storefront/pkg/errors"
	"github.com/yassinehussein4-cyber/storefront/pkg/logger"
)

type checkoutResponse struct {
	Open     bool              `json:"open"`
	Checkout checkout.Snapshot `json:"checkout"`
}

// CheckoutGet returns the form, its errors and a live quote of the cart.
func CheckoutGet(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := requireSession(w, r, logg)
		if !ok {
			return
		}
		responses.WriteSuccess(w, checkoutResponse{
			Open:     s.View.State().CheckoutOpen,
			Checkout: s.Checkout.Snapshot(),
		})
	}
}

type checkoutFormRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Address string `json:"address"`
	Promo   string `json:"promo"`
}

// CheckoutSetForm replaces the form fields. Validation messages appear once a submit was attempted.
func CheckoutSetForm(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := requireOpenCheckout(w, r, logg)
		if !ok {
			return
		}

		var payload checkoutFormRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		snapshot, err := s.Checkout.SetForm(checkout.Form{
			Name:    payload.Name,
			Email:   payload.Email,
			Address: payload.Address,
			Promo:   payload.Promo,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, checkoutResponse{Open: true, Checkout: snapshot})
	}
}

type checkoutPromoRequest struct {
	Promo *string `json:"promo"`
}

type promoResponse struct {
	Applied  bool              `json:"applied"`
	Checkout checkout.Snapshot `json:"checkout"`
}

// CheckoutApplyPromo checks the promo field, optionally setting it first, and toasts the result.
func CheckoutApplyPromo(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := requireOpenCheckout(w, r, logg)
		if !ok {
			return
		}

		if r.ContentLength != 0 {
			var payload checkoutPromoRequest
			if err := validators.DecodeJSONBody(r, &payload); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			if payload.Promo != nil {
				if _, err := s.Checkout.SetField(checkout.FieldPromo, *payload.Promo); err != nil {
					responses.WriteError(r.Context(), logg, w, err)
					return
				}
			}
		}

		snapshot, applied := s.Checkout.ApplyPromo()
		responses.WriteSuccess(w, promoResponse{Applied: applied, Checkout: snapshot})
	}
}

type placedResponse struct {
	Order *checkout.Order     `json:"order"`
	View  storefront.PageView `json:"view"`
}

// CheckoutSubmit places the order. A rejected form answers 422 with the per-field messages and
// leaves the cart as it was.
func CheckoutSubmit(svc *storefront.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := requireOpenCheckout(w, r, logg)
		if !ok {
			return
		}

		order, err := s.PlaceOrder()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if logg != nil {
			logg.Info(logg.WithField(r.Context(), "order_id", order.ID), "checkout.placed")
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, placedResponse{Order: order, View: svc.View(s)})
	}
}

// CheckoutClose closes the checkout panel and discards the form.
func CheckoutClose(svc *storefront.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := requireSession(w, r, logg)
		if !ok {
			return
		}
		s.CloseCheckout()
		responses.WriteSuccess(w, svc.View(s))
	}
}

// CheckoutClosePlaced dismisses the order confirmation and returns to the home view.
func CheckoutClosePlaced(svc *storefront.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := requireSession(w, r, logg)
		if !ok {
			return
		}
		s.ClosePlaced()
		responses.WriteSuccess(w, svc.View(s))
	}
}

func requireOpenCheckout(w http.ResponseWriter, r *http.Request, logg *logger.Logger) (*session.Session, bool) {
	s, ok := requireSession(w, r, logg)
	if !ok {
		return nil, false
	}
	if !s.View.State().CheckoutOpen {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeStateConflict, "checkout is not open"))
		return nil, false
	}
	return s, true
}
