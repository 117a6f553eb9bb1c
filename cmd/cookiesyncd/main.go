package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	browseradapter "github.com/saloprj/dialogbrain-cookie-sync/internal/adapter/driven/browser"
	"github.com/saloprj/dialogbrain-cookie-sync/internal/adapter/driven/dialogbrain"
	sqliteadapter "github.com/saloprj/dialogbrain-cookie-sync/internal/adapter/driven/sqlite"
	httphandler "github.com/saloprj/dialogbrain-cookie-sync/internal/adapter/driving/http"
	"github.com/saloprj/dialogbrain-cookie-sync/internal/application"
	"github.com/saloprj/dialogbrain-cookie-sync/internal/config"
)

// version is overridden at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration (fail fast on missing required env vars).
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.Info("config loaded",
		"api_base", cfg.APIBaseURL,
		"cookie_db", cfg.CookieDBPath,
		"db_path", cfg.DBPath,
		"internal_addr", cfg.InternalAddr,
		"external_addr", cfg.ExternalAddr,
		"debounce_quiet", cfg.DebounceQuiet,
		"fallback_interval", cfg.FallbackInterval,
	)

	// 2. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Open database (dual reader/writer with WAL mode).
	db, err := sqliteadapter.NewDB(cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()
	slog.Info("database opened", "path", cfg.DBPath)

	// 4. Run migrations on writer connection.
	if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
		return err
	}
	slog.Info("migrations complete")

	// 5. Wire driven adapters.
	settingsStore := sqliteadapter.NewSettingsRepo(db, cfg.SecretKey)
	cookieStore := browseradapter.NewCookieStore(cfg.CookieDBPath, cfg.UserAgent)
	watcher := browseradapter.NewWatcher(cfg.CookieDBPath, slog.Default())
	backend := dialogbrain.NewClient(cfg.APIBaseURL)
	if cfg.SecretKey == nil {
		slog.Info("no secret key configured, auth token storage disabled until COOKIESYNC_SECRET_KEY is set")
	}

	// 6. Wire application services.
	tracker := application.NewStatusTracker()
	syncSvc := application.NewSyncService(cookieStore, settingsStore, backend, tracker, slog.Default())
	scheduler := application.NewScheduler(syncSvc, watcher, cfg.DebounceQuiet, cfg.FallbackInterval, slog.Default())

	go func() {
		if err := watcher.Start(ctx); err != nil {
			slog.Error("cookie watcher failed", "error", err)
		}
	}()
	go scheduler.Run(ctx)

	// 7. Create the two command channels.
	handler := httphandler.NewHandler(syncSvc, tracker, version, slog.Default())

	internalSrv := newServer(cfg.InternalAddr, httphandler.NewInternalMux(handler, slog.Default()))
	externalSrv := newServer(cfg.ExternalAddr, httphandler.NewExternalMux(handler, cfg.AllowedOrigins, slog.Default()))

	for _, srv := range []*http.Server{internalSrv, externalSrv} {
		srv := srv
		go func() {
			slog.Info("http server starting", "addr", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("http server error", "addr", srv.Addr, "error", err)
				stop()
			}
		}()
	}

	// 8. Block until shutdown signal, then drain.
	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for _, srv := range []*http.Server{internalSrv, externalSrv} {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("http server shutdown error", "addr", srv.Addr, "error", err)
		}
	}

	return nil
}

// newServer builds an http.Server with the daemon's standard timeouts. The
// write timeout leaves room for a sync-causing command to hold the reply
// open through the backend round trip.
func newServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}
