package controllers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/yassinehussein4-cyber/storefront/api/responses"
	"github.com/yassinehussein4-cyber/storefront/internal/toast"
	pkgerrors "github.com/yassinehussein4-cyber/storefront/pkg/errors"
	"github.com/yassinehussein4-cyber/storefront/pkg/logger"
)

// ToastsList returns the visible toasts, oldest first.
func ToastsList(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := requireSession(w, r, logg)
		if !ok {
			return
		}
		toasts := s.Toasts.List()
		if toasts == nil {
			toasts = []toast.Toast{}
		}
		responses.WriteSuccess(w, toasts)
	}
}

// ToastDismiss removes a toast before it expires.
func ToastDismiss(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := requireSession(w, r, logg)
		if !ok {
			return
		}
		id, err := strconv.ParseInt(chi.URLParam(r, "toastId"), 10, 64)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid toast id"))
			return
		}
		if !s.Toasts.Dismiss(id) {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "toast not found"))
			return
		}
		responses.WriteNoContent(w)
	}
}
