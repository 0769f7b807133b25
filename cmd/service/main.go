package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/dropDatabas3/sealjohn/internal/config"
	"github.com/dropDatabas3/sealjohn/internal/crypto"
	"github.com/dropDatabas3/sealjohn/internal/http/v2/server"
	"github.com/dropDatabas3/sealjohn/internal/observability/logger"
)

func fileExists(p string) bool {
	st, err := os.Stat(p)
	return err == nil && !st.IsDir()
}

func printConfigSummary(c *config.Config) {
	mk := "(vacía)"
	if c.Security.MasterKey != "" {
		mk = "(set)"
	}
	fmt.Printf(`app.env=%s version=%s
server.addr=%s cors=%v
log.level=%s
security.master_key=%s signing_key_label=%s rotation_interval=%s
security.argon2 m=%d t=%d p=%d len=%d
rate.enabled=%t kind=%s window=%s max=%d
cache.redis.addr=%s db=%d prefix=%s
metrics.enabled=%t
`,
		c.App.Env, c.App.Version,
		c.Server.Addr, c.Server.CORSAllowedOrigins,
		c.Log.Level,
		mk, c.Security.SigningKeyLabel, c.Security.RotationInterval,
		c.Security.Argon2.MemoryKiB, c.Security.Argon2.Time, c.Security.Argon2.Parallelism, c.Security.Argon2.KeyLen,
		c.Rate.Enabled, c.Rate.Kind, c.Rate.Window, c.Rate.MaxRequests,
		c.Cache.Redis.Addr, c.Cache.Redis.DB, c.Cache.Redis.Prefix,
		c.Metrics.Enabled,
	)
}

func main() {
	var (
		flagConfigPath = flag.String("config", "", "ruta a config.yaml (fallback: $CONFIG_PATH o configs/config.yaml; vacío = sólo env)")
		flagEnvFile    = flag.String("env-file", ".env", "ruta a .env (si existe, se carga)")
		flagPrint      = flag.Bool("print-config", false, "imprime config efectiva y termina")
	)
	flag.Parse()

	if *flagEnvFile != "" && fileExists(*flagEnvFile) {
		_ = godotenv.Load(*flagEnvFile)
	}

	cfgPath := *flagConfigPath
	if cfgPath == "" {
		cfgPath = os.Getenv("CONFIG_PATH")
	}
	if cfgPath == "" && fileExists("configs/config.yaml") {
		cfgPath = "configs/config.yaml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}
	if *flagPrint {
		printConfigSummary(cfg)
		return
	}

	logger.Init(logger.Config{
		Env:         cfg.App.Env,
		Level:       cfg.Log.Level,
		ServiceName: "sealjohn",
		Version:     cfg.App.Version,
	})
	defer func() { _ = logger.Sync() }()
	log := logger.L()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := server.Build(ctx, cfg)
	if err != nil {
		if errors.Is(err, crypto.ErrCryptoInit) {
			log.Fatal("crypto service init failed, refusing to start", logger.Err(err))
		}
		log.Fatal("wiring failed", logger.Err(err))
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.Warn("cleanup error", logger.Err(err))
		}
	}()

	if err := server.Run(ctx, cfg, app); err != nil {
		log.Error("server stopped with error", logger.Err(err))
		return
	}
	log.Info("server stopped")
}
