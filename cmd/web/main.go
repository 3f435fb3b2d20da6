// cmd/web/main.go
//
// Relay – HTTP entry point.
//
// Boot sequence
// -------------
//
//  1. Load env vars (jail-wide file → .env fallback).
//
//  2. Start daily rotating logger (tees to console when running in a TTY).
//
//  3. Load configuration (YAML + env overlays + Vault secrets).
//
//  4. Open the translation DB and GeoLite2 database when configured;
//     both are optional and degrade to no-ops.
//
//  5. Build the dispatcher from every self-registered controller, wire
//     the application and engine, and expose Prometheus /metrics.
//
//  6. Serve with hardened timeouts; SIGINT/SIGTERM drains gracefully.
//
// Large comment blocks are framed by blank “//” lines; inline comments use
// a single “//”.
package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yanizio/relay/internal/app"
	"github.com/yanizio/relay/internal/config"
	"github.com/yanizio/relay/internal/database"
	"github.com/yanizio/relay/internal/dispatcher"
	"github.com/yanizio/relay/internal/engine"
	"github.com/yanizio/relay/internal/i18n"
	"github.com/yanizio/relay/internal/logger"
	"github.com/yanizio/relay/internal/middleware"
	"github.com/yanizio/relay/internal/requestinfo"
	"github.com/yanizio/relay/internal/server"

	_ "github.com/yanizio/relay/components/demo" // demo controller
)

const serverEnvPath = "/usr/local/etc/relay/global.env"

// loadEnv prefers the jail-wide env file; on dev it falls back to .env.
func loadEnv() {
	if _, err := os.Stat(serverEnvPath); err == nil {
		_ = godotenv.Load(serverEnvPath)
		return
	}
	_ = godotenv.Load()
}

// runningInTTY returns true when stdout is a character device.
func runningInTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func init() { loadEnv() }

func main() {
	rootDir, _ := os.Getwd()
	logOut, err := logger.New(rootDir, runningInTTY())
	if err != nil {
		log.Fatalf("start logger: %v", err)
	}

	//
	// ── 1.  Configuration ───────────────────────────────────────────────
	//
	cfg, err := config.Load()
	if err != nil {
		logOut.Fatalf("load config: %v", err)
	}

	//
	// ── 2.  Optional collaborators: translations and geo ────────────────
	//
	var translations *i18n.Store
	if cfg.I18N.DSN != "" {
		db, err := database.Open(cfg.I18N.DSN)
		if err != nil {
			logOut.Fatalf("connect translation DB: %v", err)
		}
		defer db.Close()
		translations = i18n.New(db, cfg.I18N.DefaultLocale)
		logOut.Infow("translation store online", "default_locale", translations.DefaultLocale())
	} else {
		translations = i18n.New(nil, cfg.I18N.DefaultLocale)
		logOut.Infow("translation store running catalog-less")
	}

	if cfg.Geo.CityDB != "" {
		if err := requestinfo.InitGeo(cfg.Geo.CityDB); err != nil {
			logOut.Warnw("geo database unavailable", "path", cfg.Geo.CityDB, "err", err)
		}
	}

	//
	// ── 3.  Dispatcher, application, engine ─────────────────────────────
	//
	disp := dispatcher.New(dispatcher.Registered()...)
	application := app.New(cfg, translations)
	eng := engine.New(cfg, application, disp)

	router := eng.Router()
	router.Handle("/metrics", promhttp.Handler())

	root := server.New(cfg.HTTP.ListenAddr, router)
	if cfg.HTTP.ForceHTTPS {
		root.Handler = middleware.ForceHTTPS(router)
	}

	//
	// ── 4.  Serve until signalled ───────────────────────────────────────
	//
	errCh := make(chan error, 1)
	go func() { errCh <- root.ListenAndServe() }()
	logOut.Infow("engine online", "addr", cfg.HTTP.ListenAddr)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logOut.Infow("shutting down", "signal", sig.String())
		if err := server.Shutdown(root, 15*time.Second); err != nil {
			logOut.Warnw("shutdown incomplete", "err", err)
		}
	case err := <-errCh:
		logOut.Fatalf("serve: %v", err)
	}
}
