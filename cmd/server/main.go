package main

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/willemschots/accounts/assets"
	"github.com/willemschots/accounts/internal"
	"github.com/willemschots/accounts/internal/account"
	accountdb "github.com/willemschots/accounts/internal/account/db"
	"github.com/willemschots/accounts/internal/db"
	"github.com/willemschots/accounts/internal/db/migrate"
	"github.com/willemschots/accounts/internal/krypto"
	"github.com/willemschots/accounts/internal/metrics"
	"github.com/willemschots/accounts/internal/web"
	"github.com/willemschots/accounts/internal/web/sessions"
	"github.com/willemschots/accounts/internal/web/view"
	"github.com/willemschots/accounts/migrations"
	"golang.org/x/sync/errgroup"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Stderr))
}

func run(ctx context.Context, w io.Writer) int {
	logger := slog.New(slog.NewTextHandler(w, nil))

	// Values already in the environment take precedence over the .env file.
	err := godotenv.Load()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Error("failed to load .env file", "error", err)
		return 1
	}

	cfg, err := configFromEnv()
	if err != nil {
		logger.Error("failed to get config from environment", "error", err)
		return 1
	}

	writeDB, err := db.OpenSQLite(cfg.db.file, true)
	if err != nil {
		logger.Error("failed to open write database", "error", err, "file", cfg.db.file)
		return 1
	}
	defer closeDB(logger, writeDB)

	if cfg.db.migrate {
		err := runMigrations(ctx, logger, writeDB)
		if err != nil {
			logger.Error("failed to run migrations", "error", err)
			return 1
		}
	}

	readDB, err := db.OpenSQLite(cfg.db.file, false)
	if err != nil {
		logger.Error("failed to open read database", "error", err, "file", cfg.db.file)
		return 1
	}
	defer closeDB(logger, readDB)

	encryptor, err := krypto.NewEncryptor(cfg.db.encryptionKeys)
	if err != nil {
		logger.Error("failed to create encryptor", "error", err)
		return 1
	}

	hasher, err := krypto.NewArgon2Hasher(cfg.hash)
	if err != nil {
		logger.Error("failed to create password hasher", "error", err)
		return 1
	}

	viewRenderer, err := newViewRenderer(logger, cfg.http.viewDir)
	if err != nil {
		logger.Error("failed to create view renderer", "error", err)
		return 1
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	store := accountdb.New(readDB, writeDB, encryptor, cfg.db.blindIndexSalt)
	accounts := account.NewService(store, hasher, m, logger)

	// Cookie keys are used in pairs: a signing key followed by an optional encryption key.
	cookieKeys := make([][]byte, 0, len(cfg.http.cookieKeys))
	for _, k := range cfg.http.cookieKeys {
		cookieKeys = append(cookieKeys, k.SecretValue())
	}

	server := web.NewServer(&web.ServerDeps{
		Logger:       logger,
		ViewRenderer: viewRenderer,
		Accounts:     accounts,
		SessionStore: sessions.NewCookieStore(cfg.http.server.SecureCookie, cookieKeys...),
		DistFS:       http.FS(assets.DistFS),
		Metrics:      m,
		Gatherer:     reg,
	}, cfg.http.server)

	srv := &http.Server{
		Addr:         cfg.http.addr,
		ReadTimeout:  cfg.http.readTimeout,
		WriteTimeout: cfg.http.writeTimeout,
		IdleTimeout:  cfg.http.idleTimeout,
		Handler:      server,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	// We need to run two tasks concurrently:
	// - Listen and serving of the HTTP server.
	// - Waiting for a signal to stop the server.

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting http server",
			"addr", cfg.http.addr,
			"appVersion", internal.AppVersion(),
			"buildRevisionTime", internal.BuildRevisionTime,
			"buildLocalModified", internal.BuildLocalModified,
		)
		// ListenAndServe always returns a non-nil error,
		// g will cancel gCtx when an error is returned, so
		// this will also stop the other goroutine.
		return srv.ListenAndServe()
	})

	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("stopping http server")

		shutCtx, cancel := context.WithTimeout(context.Background(), cfg.http.shutdownTimeout)
		defer cancel()

		return srv.Shutdown(shutCtx)
	})

	err = g.Wait()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server stopped with error", "error", err)
		return 1
	}

	logger.Info("http server stopped successfully")

	return 0
}

func runMigrations(ctx context.Context, logger *slog.Logger, writeDB *sql.DB) error {
	logger.Info("attempting to migrate database")

	ran, err := migrate.RunFS(ctx, writeDB, migrations.FS, migrate.Metadata{
		AppVersion: internal.AppVersion(),
		Timestamp:  time.Now().UTC(),
	})
	if err != nil {
		return err
	}

	for _, m := range ran {
		logger.Info("migration ran", "sequence", m.Sequence, "filename", m.Filename)
	}

	return nil
}

func newViewRenderer(logger *slog.Logger, viewDir string) (web.ViewRenderer, error) {
	if viewDir != "" {
		logger.Info("loading templates from disk", "dir", viewDir)
		return view.NewFSRenderer(os.DirFS(viewDir)), nil
	}

	return view.NewMemRenderer(assets.TemplateFS)
}

func closeDB(logger *slog.Logger, sqlDB *sql.DB) {
	if err := sqlDB.Close(); err != nil {
		logger.Error("failed to close database", "error", err)
	}
}
