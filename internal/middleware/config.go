package middleware

import (
	"net/http"

	"github.com/jewelcase/jewelcase/internal/config"
	"github.com/jewelcase/jewelcase/internal/ctxkeys"
)

// Config puts the sanitized app configuration in the request context for templates.
func Config(cfg *config.Config) func(http.Handler) http.Handler {
	safe := cfg.Sanitized()
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := ctxkeys.WithConfig(r.Context(), safe)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
