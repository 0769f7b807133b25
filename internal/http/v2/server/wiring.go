// Package server arma el handler HTTP con todas sus dependencias y lo corre.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	rdb "github.com/redis/go-redis/v9"

	"github.com/dropDatabas3/sealjohn/internal/config"
	"github.com/dropDatabas3/sealjohn/internal/crypto"
	cryptoctrl "github.com/dropDatabas3/sealjohn/internal/http/v2/controllers/crypto"
	healthctrl "github.com/dropDatabas3/sealjohn/internal/http/v2/controllers/health"
	"github.com/dropDatabas3/sealjohn/internal/http/v2/router"
	"github.com/dropDatabas3/sealjohn/internal/metrics"
	"github.com/dropDatabas3/sealjohn/internal/observability/logger"
	"github.com/dropDatabas3/sealjohn/internal/rate"
	"github.com/dropDatabas3/sealjohn/internal/security/password"
)

const serviceName = "sealjohn"

// App agrupa lo que main necesita para correr el servicio.
type App struct {
	Handler http.Handler
	Crypto  *crypto.Service
	Rotator *crypto.Rotator

	redis *rdb.Client
}

// Build construye servicio, limiter, métricas y router a partir de la config.
// Un error de crypto.New envuelve crypto.ErrCryptoInit: el proceso no debe arrancar.
func Build(ctx context.Context, cfg *config.Config) (*App, error) {
	log := logger.From(ctx).With(logger.Component("wiring"))

	svc, err := crypto.New(ctx, crypto.Config{
		MasterKey:       cfg.Security.MasterKey,
		SigningKeyLabel: cfg.Security.SigningKeyLabel,
		Argon2: password.Params{
			Memory:      cfg.Security.Argon2.MemoryKiB,
			Time:        cfg.Security.Argon2.Time,
			Parallelism: cfg.Security.Argon2.Parallelism,
			KeyLen:      cfg.Security.Argon2.KeyLen,
		},
	})
	if err != nil {
		return nil, err
	}

	app := &App{
		Crypto:  svc,
		Rotator: crypto.NewRotator(svc, config.Duration(cfg.Security.RotationInterval)),
	}

	checks := map[string]healthctrl.Check{
		"crypto": func(context.Context) error {
			if !svc.IsReady() {
				return errors.New("crypto service not ready")
			}
			return nil
		},
	}

	var limiter rate.Limiter
	if cfg.Rate.Enabled {
		window := config.Duration(cfg.Rate.Window)
		switch cfg.Rate.Kind {
		case "redis":
			app.redis = rdb.NewClient(&rdb.Options{Addr: cfg.Cache.Redis.Addr, DB: cfg.Cache.Redis.DB})
			if err := app.redis.Ping(ctx).Err(); err != nil {
				// el limiter hace fail open; sólo avisamos
				log.Warn("redis not reachable at startup", logger.Err(err))
			}
			limiter = rate.NewRedisLimiter(app.redis, cfg.Cache.Redis.Prefix, cfg.Rate.MaxRequests, window)
			checks["rate_limiter"] = func(ctx context.Context) error {
				return app.redis.Ping(ctx).Err()
			}
		default:
			limiter = rate.NewMemoryLimiter(cfg.Rate.MaxRequests, window)
		}
		log.Info("rate limit enabled",
			logger.String("kind", cfg.Rate.Kind),
			logger.Count(cfg.Rate.MaxRequests),
			logger.String("window", cfg.Rate.Window),
		)
	}

	var metricsHandler http.Handler
	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		if err := reg.Register(collectors.NewGoCollector()); err != nil {
			return nil, fmt.Errorf("metrics: %w", err)
		}
		if err := metrics.RegisterCrypto(reg); err != nil {
			return nil, fmt.Errorf("metrics: %w", err)
		}
		if metricsHandler, err = metrics.RegisterHTTP(reg); err != nil {
			return nil, fmt.Errorf("metrics: %w", err)
		}
	}

	app.Handler = router.New(router.Deps{
		Crypto:             cryptoctrl.NewCryptoController(svc),
		Health:             healthctrl.NewHealthController(serviceName, cfg.App.Version, checks),
		Metrics:            metricsHandler,
		RateLimiter:        limiter,
		CORSAllowedOrigins: cfg.Server.CORSAllowedOrigins,
	})
	return app, nil
}

// Close libera conexiones externas.
func (a *App) Close() error {
	if a.redis != nil {
		return a.redis.Close()
	}
	return nil
}
