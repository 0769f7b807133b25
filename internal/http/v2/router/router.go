// Package router arma el árbol de rutas chi del servicio.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	cryptoctrl "github.com/dropDatabas3/sealjohn/internal/http/v2/controllers/crypto"
	healthctrl "github.com/dropDatabas3/sealjohn/internal/http/v2/controllers/health"
	httperrors "github.com/dropDatabas3/sealjohn/internal/http/v2/errors"
	mw "github.com/dropDatabas3/sealjohn/internal/http/v2/middlewares"
	"github.com/dropDatabas3/sealjohn/internal/metrics"
	"github.com/dropDatabas3/sealjohn/internal/rate"
)

type Deps struct {
	Crypto *cryptoctrl.CryptoController
	Health *healthctrl.HealthController

	// Opcionales
	Metrics            http.Handler // nil deshabilita /metrics
	RateLimiter        rate.Limiter // nil deshabilita rate limit
	CORSAllowedOrigins []string
}

// New registra todas las rutas. La rotación de claves no se expone por HTTP.
func New(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(
		mw.WithRecover(),
		mw.WithRequestID(),
		metrics.Instrument,
	)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, httperrors.ErrNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, httperrors.ErrMethodNotAllowed)
	})

	// health sin logging (muy frecuentes) ni rate limit
	r.Get("/health", deps.Health.Health)
	r.Get("/ready", deps.Health.Ready)
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics)
	}

	r.Route("/api/v1/crypto", func(r chi.Router) {
		r.Use(
			mw.WithLogging(),
			mw.WithSecurityHeaders(),
			mw.WithNoStore(),
			mw.WithCORS(deps.CORSAllowedOrigins),
			mw.WithRateLimit(mw.RateLimitConfig{Limiter: deps.RateLimiter}),
		)

		c := deps.Crypto
		r.Post("/encrypt", c.Encrypt)
		r.Post("/decrypt", c.Decrypt)
		r.Post("/hash", c.Hash)
		r.Post("/verify-hash", c.VerifyHash)
		r.Post("/sign", c.Sign)
		r.Post("/verify", c.Verify)
		r.Get("/keys", c.Keys)
	})

	return r
}
