package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/go-chi/httplog/v2"
	"github.com/redis/go-redis/v9"
	"github.com/vadimbarashkov/ziplink/internal/config"
	"github.com/vadimbarashkov/ziplink/internal/usecase"
	"github.com/vadimbarashkov/ziplink/internal/worker"
	"github.com/vadimbarashkov/ziplink/migrations"
	"github.com/vadimbarashkov/ziplink/pkg/postgres"
	"github.com/vadimbarashkov/ziplink/pkg/token"
	"golang.org/x/sync/errgroup"

	rediscache "github.com/vadimbarashkov/ziplink/internal/adapter/cache/redis"
	delivery "github.com/vadimbarashkov/ziplink/internal/adapter/delivery/http"
	repository "github.com/vadimbarashkov/ziplink/internal/adapter/repository/postgres"
)

const serviceName = "ziplink"

func newLogger(env string) *httplog.Logger {
	opts := httplog.Options{
		LogLevel: slog.LevelDebug,
		Concise:  true,
		Tags: map[string]string{
			"env": env,
		},
	}

	if env == config.EnvProd {
		opts.LogLevel = slog.LevelInfo
		opts.JSON = true
		opts.Concise = false
	}

	return httplog.NewLogger(serviceName, opts)
}

func Run(ctx context.Context, cfg *config.Config) error {
	const op = "app.Run"

	if cfg.Auth.JWTSecret == "" {
		return fmt.Errorf("%s: auth.jwt_secret must be set", op)
	}

	logger := newLogger(cfg.Env)

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

	if err := postgres.RunMigrations(migrations.FS, cfg.Postgres.DSN()); err != nil {
		return fmt.Errorf("%s: failed to run migrations: %w", op, err)
	}

	linkRepo := repository.NewLinkRepository(db)
	clickRepo := repository.NewClickRepository(db)

	linkOpts := []usecase.LinkOption{
		usecase.WithSlugLength(cfg.ShortCodeLength),
		usecase.WithGuestTTL(cfg.Links.GuestTTL),
		usecase.WithLogger(logger.Logger),
	}

	if cfg.Redis.Enabled() {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()

		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("%s: failed to connect to redis: %w", op, err)
		}

		linkOpts = append(linkOpts, usecase.WithCache(rediscache.NewLinkCache(rdb, cfg.Redis.CacheTTL)))
	}

	linkUseCase := usecase.NewLinkUseCase(linkRepo, clickRepo, linkOpts...)
	analyticsUseCase := usecase.NewAnalyticsUseCase(linkRepo, clickRepo)

	router := delivery.NewRouter(
		logger,
		token.NewManager(cfg.Auth.JWTSecret),
		linkUseCase,
		analyticsUseCase,
		delivery.WithRequestTimeout(cfg.HTTPServer.RequestTimeout),
		delivery.WithDocsFile(cfg.HTTPServer.DocsFile),
	)

	server := &http.Server{
		Addr:           cfg.HTTPServer.Addr(),
		Handler:        router,
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
		var err error

		logger.Info("starting http server", slog.String("addr", server.Addr), slog.String("env", cfg.Env))

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

		if err := server.Shutdown(context.Background()); err != nil {
			return fmt.Errorf("%s: failed to shutdown server: %w", op, err)
		}

		return nil
	})

	if cfg.Retention.ClickEvents > 0 {
		retention := worker.NewRetention(clickRepo, cfg.Retention.ClickEvents, cfg.Retention.Interval, logger.Logger)

		g.Go(func() error {
			if err := retention.Run(ctx); err != nil {
				return fmt.Errorf("%s: retention worker stopped: %w", op, err)
			}
			return nil
		})
	}

	return g.Wait()
}
