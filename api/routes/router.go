package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/yassinehussein4-cyber/storefront/api/controllers"
	"github.com/yassinehussein4-cyber/storefront/api/middleware"
	"github.com/yassinehussein4-cyber/storefront/api/responses"
	"github.com/yassinehussein4-cyber/storefront/internal/catalog"
	"github.com/yassinehussein4-cyber/storefront/internal/session"
	"github.com/yassinehussein4-cyber/storefront/internal/storefront"
	"github.com/yassinehussein4-cyber/storefront/pkg/config"
	pkgerrors "github.com/yassinehussein4-cyber/storefront/pkg/errors"
	"github.com/yassinehussein4-cyber/storefront/pkg/logger"
	"github.com/yassinehussein4-cyber/storefront/pkg/redis"
)

// NewRouter wires every storefront route. redisPinger and idempotency are nil when Redis is not
// configured; metrics may be nil to skip /metrics.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	redisPinger controllers.Pinger,
	idempotency redis.IdempotencyStore,
	registry *session.Registry,
	store catalog.Store,
	svc *storefront.Service,
	metrics http.Handler,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		responses.WriteError(req.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "route not found"))
	})

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, redisPinger))
	})
	if metrics != nil {
		r.Handle("/metrics", metrics)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/catalog", func(r chi.Router) {
			r.Get("/products", controllers.CatalogProducts(store, logg))
			r.Get("/categories", controllers.CatalogCategories(store, logg))
		})
		r.Get("/profile/{slug}", controllers.CatalogProfile(store, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Session(registry, cfg.Session.CookieName, cfg.App.IsProd(), logg))
			r.Use(middleware.Idempotency(idempotency, logg))

			r.Route("/view", func(r chi.Router) {
				r.Get("/", controllers.ViewGet(svc, logg))
				r.Patch("/", controllers.ViewPatch(svc, logg))
				r.Post("/navigate", controllers.ViewNavigate(svc, logg))
				r.Post("/back", controllers.ViewBack(svc, logg))
				r.Post("/reload", controllers.ViewReload(svc, logg))
				r.Get("/products", controllers.ViewProducts(svc, logg))
			})

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", controllers.CartGet(logg))
				r.Delete("/", controllers.CartClear(logg))
				r.Post("/open", controllers.CartOpen(svc, logg))
				r.Post("/checkout", controllers.CartProceed(svc, logg))
				r.Post("/items", controllers.CartAddItem(svc, logg))
				r.Put("/items/{productId}", controllers.CartSetQuantity(logg))
				r.Delete("/items/{productId}", controllers.CartRemoveItem(logg))
				r.Post("/items/{productId}/increment", controllers.CartIncrement(logg))
				r.Post("/items/{productId}/decrement", controllers.CartDecrement(logg))
			})

			r.Route("/checkout", func(r chi.Router) {
				r.Get("/", controllers.CheckoutGet(logg))
				r.Post("/", controllers.CheckoutSubmit(svc, logg))
				r.Put("/form", controllers.CheckoutSetForm(logg))
				r.Post("/promo", controllers.CheckoutApplyPromo(logg))
				r.Post("/close", controllers.CheckoutClose(svc, logg))
				r.Post("/placed/close", controllers.CheckoutClosePlaced(svc, logg))
			})

			r.Route("/toasts", func(r chi.Router) {
				r.Get("/", controllers.ToastsList(logg))
				r.Delete("/{toastId}", controllers.ToastDismiss(logg))
			})
		})
	})

	return r
}
