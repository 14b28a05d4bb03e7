package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/playperu/quizboard/internal/config"
	"github.com/playperu/quizboard/internal/database"
	"github.com/playperu/quizboard/internal/game"
	"github.com/playperu/quizboard/internal/handler/health"
	"github.com/playperu/quizboard/internal/migrations"
	"github.com/playperu/quizboard/internal/notify"
	"github.com/playperu/quizboard/internal/server"
	"github.com/playperu/quizboard/internal/store"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, stdout io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))

	// --- SQLite ---
	db, err := database.Open(ctx, cfg.DBPath)
	if err != nil {
		return fmt.Errorf("connecting to sqlite: %w", err)
	}
	defer db.Close()

	if err := migrations.Run(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	logger.Info("connected to sqlite", "path", cfg.DBPath)

	sessions := store.NewSessions(db)
	bank := store.NewQuestions(db)
	if cfg.SeedQuestions {
		n, err := bank.SeedDemo(ctx)
		if err != nil {
			return fmt.Errorf("seeding questions: %w", err)
		}
		if n > 0 {
			logger.Info("seeded demo questions", "count", n)
		}
	}

	// --- Notifications ---
	broker := notify.NewBroker()
	var (
		publisher notify.Publisher = broker
		relay     *notify.Redis
	)
	checks := map[string]health.Checker{
		"sqlite": health.CheckFunc(sessions.Ping),
		"redis":  nil,
	}
	if cfg.RedisURL != "" {
		rdb, err := openRedis(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("connecting to redis: %w", err)
		}
		defer rdb.Close()
		logger.Info("connected to redis")

		relay = notify.NewRedis(rdb, logger)
		publisher = relay
		checks["redis"] = relay
	}

	engine := game.New(game.Config{
		Store:      sessions,
		Questions:  bank,
		Publisher:  publisher,
		Logger:     logger,
		BcryptCost: cfg.BcryptCost,
	})
	sweeper := game.NewSweeper(engine, sessions, cfg.TimeoutTick, logger)

	// --- HTTP Server ---
	srv := server.New(cfg.HTTPAddr, logger, func(r chi.Router) {
		r.Mount("/healthz", health.NewHandler(logger, checks).Routes())
		r.Mount("/api", server.NewAPI(engine, broker, logger, cfg.AllowedOrigins).Routes())
		if cfg.SPADir != "" {
			logger.Info("serving SPA", "dir", cfg.SPADir)
			r.NotFound(server.SPA(cfg.SPADir))
		}
	})

	// --- Run ---
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting http server", "addr", cfg.HTTPAddr)
		return srv.Run(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down http server")
		return srv.Shutdown(context.Background())
	})

	g.Go(func() error {
		logger.Info("starting timeout sweeper", "tick", cfg.TimeoutTick)
		return sweeper.Run(gctx)
	})

	if relay != nil {
		g.Go(func() error {
			return relay.Relay(gctx, broker)
		})
	}

	return g.Wait()
}

func openRedis(ctx context.Context, rawURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}
	return rdb, nil
}
