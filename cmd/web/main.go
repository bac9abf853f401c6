// cmd/web/main.go
//
// Route service HTTP entry point.
//
// Request life-cycle
// ------------------
//
//  1. Load config (optional .env and YAML, DBROUTE_ env overrides).
//
//  2. Start daily rotating logger (tees to console when running in a TTY).
//
//  3. Open the DB (password through Vault when configured) and apply
//     migrations.
//
//  4. Wire the dispatcher and warm the route table.
//
//  5. Serve:
//
//     • /metrics      – Prometheus
//     • /api/locales  – enabled locales with self-names and flag classes
//     • everything    – dispatcher (generated slug routes)
//
//  6. Shut down gracefully on SIGINT or SIGTERM.
//
// Large comment blocks are framed by blank “//” lines; inline comments use
// a single “//”.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/yanizio/dbroute/internal/app"
	"github.com/yanizio/dbroute/internal/config"
	"github.com/yanizio/dbroute/internal/locale"
	"github.com/yanizio/dbroute/internal/logger"
	"github.com/yanizio/dbroute/internal/middleware"
	"github.com/yanizio/dbroute/internal/server"
)

// runningInTTY returns true when stdout is a character device.
func runningInTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logOut, err := logger.New(cfg.Paths.Root, cfg.Log.Tee || runningInTTY(), cfg.Log.Level)
	if err != nil {
		log.Fatalf("start logger: %v", err)
	}
	defer func() { _ = logOut.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	//
	// ── 1.  Database and migrations ─────────────────────────────────────
	//
	a, err := app.Open(ctx, cfg)
	if err != nil {
		logOut.Fatalw("open app", "err", err)
	}
	defer a.Close()

	if err := a.Migrate(ctx); err != nil {
		logOut.Fatalw("migrate", "err", err)
	}

	//
	// ── 2.  Warm route table (a failure is retried per request) ────────
	//
	if err := a.Dispatcher.Warm(ctx); err != nil {
		logOut.Warnw("route table warm-up failed", "err", err)
	}

	//
	// ── 3.  Router ──────────────────────────────────────────────────────
	//
	root := chi.NewRouter()
	root.Use(middleware.AccessLog, middleware.Security)
	root.Handle("/metrics", promhttp.Handler())
	root.Get("/api/locales", localesHandler(cfg.Routing.EnabledLocales))
	root.NotFound(a.Dispatcher.ServeHTTP)

	srv := server.New(cfg.HTTP.ListenAddr, root, server.Timeouts{
		Read:  cfg.HTTP.ReadTimeout,
		Write: cfg.HTTP.WriteTimeout,
		Idle:  cfg.HTTP.IdleTimeout,
	})

	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdown); err != nil {
			zap.S().Warnw("http shutdown", "err", err)
		}
	}()

	logOut.Infow("listening", "addr", cfg.HTTP.ListenAddr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logOut.Fatalw("http server", "err", err)
	}
}

// localesHandler serves the enabled locales as JSON.
func localesHandler(enabled []string) http.HandlerFunc {
	infos := locale.Locales(enabled)
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(infos); err != nil {
			zap.S().Warnw("locales encode", "err", err)
		}
	}
}
