package middleware

import (
	"net/http"

	"github.com/yassinehussein4-cyber/storefront/internal/session"
	"github.com/yassinehussein4-cyber/storefront/pkg/logger"
)

// Session loads the visitor session named by the cookie, or opens a fresh one whose address bar
// starts at the request query, and refreshes the cookie.
func Session(registry *session.Registry, cookieName string, secure bool, logg *logger.Logger) func(http.Handler) http.Handler {
	if cookieName == "" {
		cookieName = "sf_session"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var id string
			if c, err := r.Cookie(cookieName); err == nil {
				id = c.Value
			}

			s, created := registry.GetOrCreate(id, r.URL.Query())
			ctx := WithSession(r.Context(), s)
			if logg != nil {
				ctx = logg.WithSessionID(ctx, s.ID())
				if created {
					logg.Debug(ctx, "session.created")
				}
			}

			http.SetCookie(w, &http.Cookie{
				Name:     cookieName,
				Value:    s.ID(),
				Path:     "/",
				HttpOnly: true,
				Secure:   secure,
				SameSite: http.SameSiteLaxMode,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
