package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/httplog/v2"
	"github.com/linkmap/url-shortener/internal/adapter/repository/memory"
	"github.com/linkmap/url-shortener/internal/config"
	"github.com/linkmap/url-shortener/internal/shortcode"
	"github.com/linkmap/url-shortener/internal/usecase"
	"github.com/linkmap/url-shortener/pkg/postgres"
	"golang.org/x/sync/errgroup"

	delivery "github.com/linkmap/url-shortener/internal/adapter/delivery/http"
	pgrepo "github.com/linkmap/url-shortener/internal/adapter/repository/postgres"
)

const shutdownTimeout = 10 * time.Second

// Run wires the configured store into the HTTP API and serves it until ctx is cancelled.
func Run(ctx context.Context, cfg *config.Config, logger *httplog.Logger) error {
	const op = "app.Run"

	codeGen := shortcode.NewGenerator(cfg.ShortCodeLength)

	var urlUseCase *usecase.URLUseCase

	switch cfg.Storage {
	case config.StorageMemory:
		logger.Warn("using in-memory storage, data will not survive a restart")
		urlUseCase = usecase.New(memory.NewURLRepository(), codeGen)
	default:
		db, err := postgres.New(
			ctx,
			cfg.Postgres.DSN(),
			postgres.WithConnMaxIdleTime(cfg.Postgres.ConnMaxIdleTime),
			postgres.WithConnMaxLifetime(cfg.Postgres.ConnMaxLifetime),
			postgres.WithMaxIdleConns(cfg.Postgres.MaxIdleConns),
			postgres.WithMaxOpenConns(cfg.Postgres.MaxOpenConns),
		)
		if err != nil {
			return fmt.Errorf("%s: failed to connect to database: %w", op, err)
		}
		defer db.Close()

		version, err := postgres.RunMigrations(cfg.Postgres.MigrationsPath, cfg.Postgres.DSN())
		if err != nil {
			return fmt.Errorf("%s: failed to run migrations: %w", op, err)
		}
		logger.Info("database schema is up to date", "version", version)

		urlRepo := pgrepo.NewURLRepository(db, pgrepo.WithQueryTimeout(cfg.Postgres.QueryTimeout))
		urlUseCase = usecase.New(urlRepo, codeGen)
	}

	server := &http.Server{
		Addr:           cfg.HTTPServer.Addr(),
		Handler:        delivery.NewRouter(logger, urlUseCase),
		ReadTimeout:    cfg.HTTPServer.ReadTimeout,
		WriteTimeout:   cfg.HTTPServer.WriteTimeout,
		IdleTimeout:    cfg.HTTPServer.IdleTimeout,
		MaxHeaderBytes: cfg.HTTPServer.MaxHeaderBytes,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting server", "addr", server.Addr, "env", cfg.Env, "storage", cfg.Storage)

		var err error

		switch cfg.Env {
		case config.EnvProd:
			err = server.ListenAndServeTLS(cfg.HTTPServer.CertFile, cfg.HTTPServer.KeyFile)
		default:
			err = server.ListenAndServe()
		}

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("%s: server error occurred: %w", op, err)
		}

		return nil
	})

	g.Go(func() error {
		<-ctx.Done()

		logger.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("%s: failed to shutdown server: %w", op, err)
		}

		return nil
	})

	return g.Wait()
}
