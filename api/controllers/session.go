package controllers

import (
	"net/http"

	"github.com/yassinehussein4-cyber/storefront/api/middleware"
	"github.com/yassinehussein4-cyber/storefront/api/responses"
	"github.com/yassinehussein4-cyber/storefront/internal/session"
	pkgerrors "github.com/yassinehussein4-cyber/storefront/pkg/errors"
	"github.com/yassinehussein4-cyber/storefront/pkg/logger"
)

// requireSession writes an internal error when the session middleware did not run.
func requireSession(w http.ResponseWriter, r *http.Request, logg *logger.Logger) (*session.Session, bool) {
	s := middleware.SessionFromContext(r.Context())
	if s == nil {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "session context missing"))
		return nil, false
	}
	return s, true
}
