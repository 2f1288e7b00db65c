package controllers

import (
	"context"
	"net/http"

	"github.com/yassinehussein4-cyber/storefront/api/responses"
	"github.com/yassinehussein4-cyber/storefront/pkg/config"
	pkgerrors "github.com/yassinehussein4-cyber/storefront/pkg/errors"
	"github.com/yassinehussein4-cyber/storefront/pkg/logger"
)

// Pinger reports whether a backing dependency is reachable.
type Pinger interface {
	Ping(context.Context) error
}

const envHeader = "X-Storefront-Env"

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings Redis when it is configured and reports whether the CMS credentials are set.
func HealthReady(cfg *config.Config, logg *logger.Logger, redis Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		if redis != nil {
			if err := redis.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "redis unavailable").
					WithDetails(map[string]string{"dependency": "redis"}))
				return
			}
		}
		cms := "configured"
		if !cfg.CMS.Configured() {
			cms = "missing"
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready", "cms": cms})
	}
}
