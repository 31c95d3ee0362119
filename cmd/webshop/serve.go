package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	rdb "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/Skotchmaster/webshop/internal/auth"
	"github.com/Skotchmaster/webshop/internal/config"
	"github.com/Skotchmaster/webshop/internal/db"
	"github.com/Skotchmaster/webshop/internal/events"
	"github.com/Skotchmaster/webshop/internal/httpserver"
	"github.com/Skotchmaster/webshop/internal/logging"
	"github.com/Skotchmaster/webshop/internal/metrics"
	"github.com/Skotchmaster/webshop/internal/ratelimit"
	"github.com/Skotchmaster/webshop/internal/repo"
	"github.com/Skotchmaster/webshop/internal/search"
	"github.com/Skotchmaster/webshop/internal/service"
	"github.com/Skotchmaster/webshop/internal/tokens"
)

func serveCmd(load func() (*config.Config, error)) *cobra.Command {
	var skipMigrate bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, skipMigrate)
		},
	}
	cmd.Flags().BoolVar(&skipMigrate, "skip-migrate", false, "do not run schema migrations on startup")
	return cmd
}

func serve(ctx context.Context, cfg *config.Config, skipMigrate bool) error {
	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)
	ctx = logging.IntoContext(ctx, logger)

	gdb, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(gdb); err != nil {
			logger.Error("db close error", "error", err)
		}
	}()
	if !skipMigrate {
		if err := db.Migrate(ctx, gdb); err != nil {
			return err
		}
	}

	var publisher events.Publisher = events.Nop{}
	if len(cfg.KafkaBrokers) > 0 {
		publisher = events.NewKafkaProducer(cfg.KafkaBrokers)
		logger.Info("kafka producer enabled", "brokers", cfg.KafkaBrokers)
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Error("kafka close error", "error", err)
		}
	}()

	var (
		limiter ratelimit.Limiter
		redis   *rdb.Client
	)
	switch {
	case cfg.LoginRateLimit == 0:
		logger.Warn("login rate limiting disabled")
	case cfg.RedisAddr != "":
		redis = rdb.NewClient(&rdb.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		defer redis.Close()
		limiter = ratelimit.NewRedisLimiter(redis, "webshop:rl", cfg.LoginRateLimit, cfg.LoginRateWindow)
	default:
		limiter = ratelimit.NewMemoryLimiter("webshop:rl", cfg.LoginRateLimit, cfg.LoginRateWindow)
	}

	m, err := metrics.New()
	if err != nil {
		return err
	}

	r := repo.New(gdb)
	catalog := &service.CatalogService{Repo: r}
	if cfg.ESURL != "" {
		ix, err := openIndex(ctx, cfg)
		if err != nil {
			// search falls back to SQL
			logger.Warn("search index unavailable", "error", err)
		} else {
			catalog.Index = ix
		}
	}

	ts := tokens.NewService([]byte(cfg.JWTSecret))
	deps := &httpserver.Deps{
		Tokens:   ts,
		Guard:    auth.NewGuard(r),
		Auth:     &service.AuthService{Repo: r, Tokens: ts, Events: publisher},
		Users:    &service.UserService{Repo: r},
		Cart:     &service.CartService{Repo: r},
		Checkout: &service.CheckoutService{Repo: r, Events: publisher, Observer: m},
		Orders:   &service.OrderService{Repo: r, Events: publisher},
		Catalog:  catalog,
		Limiter:  limiter,
		Metrics:  m,
		Ready:    readiness(gdb, redis),
	}

	e := httpserver.New(deps, httpserver.Options{
		Logger:         logger,
		RequestTimeout: cfg.RequestTimeout,
		CORSOrigins:    cfg.CORSOrigins,
	})

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      e,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("http server listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("shutdown complete")
	return nil
}

func openIndex(ctx context.Context, cfg *config.Config) (*search.Index, error) {
	ix, err := search.NewIndex(ctx, search.Config{
		URL:      cfg.ESURL,
		Username: cfg.ESUser,
		Password: cfg.ESPassword,
		Index:    cfg.ESIndex,
	})
	if err != nil {
		return nil, err
	}
	if err := ix.EnsureIndex(ctx); err != nil {
		return nil, err
	}
	return ix, nil
}

func readiness(gdb *gorm.DB, redis *rdb.Client) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		sqlDB, err := gdb.DB()
		if err != nil {
			return err
		}
		if err := sqlDB.PingContext(ctx); err != nil {
			return fmt.Errorf("database: %w", err)
		}
		if redis != nil {
			if err := redis.Ping(ctx).Err(); err != nil {
				return fmt.Errorf("redis: %w", err)
			}
		}
		return nil
	}
}
