package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/oatsaysai/spending-in-chat/internal/config"
	"github.com/oatsaysai/spending-in-chat/internal/db"
	"github.com/oatsaysai/spending-in-chat/internal/discord"
	"github.com/oatsaysai/spending-in-chat/internal/expense"
	"github.com/oatsaysai/spending-in-chat/internal/logging"
	"github.com/oatsaysai/spending-in-chat/internal/metrics"
	"github.com/oatsaysai/spending-in-chat/internal/telegram"
	"github.com/oatsaysai/spending-in-chat/internal/throttle"
)

// runner is a chat transport serving until its context ends
type runner interface {
	Run(ctx context.Context) error
}

func main() {
	// Parse command-line flags
	configFile := flag.String("config", "config.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Log)
	if err := run(cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("server stopped with error")
	}
	logger.Info().Msg("server stopped")
}

func run(cfg *config.Config, logger zerolog.Logger) error {
	// Set up graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	service := expense.NewService(store, expense.NewPendingStore(cfg.Expense.PendingTTL), logger,
		expense.WithLocation(cfg.Location()),
		expense.WithCommandPrefix(cfg.CommandPrefix()),
	)
	limiter := throttle.New(cfg.RateLimit.PerSecond, cfg.RateLimit.Burst)

	var bot runner
	switch cfg.Bot.Transport {
	case config.TransportDiscord:
		bot, err = discord.New(cfg.DiscordBot.Token, service, limiter, logger)
	default:
		bot, err = telegram.New(telegram.Config{
			Token: cfg.TelegramBot.Token,
			Debug: cfg.TelegramBot.Debug,
		}, service, limiter, logger)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize %s bot: %w", cfg.Bot.Transport, err)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return bot.Run(ctx)
	})
	g.Go(func() error {
		limiter.Run(ctx)
		return nil
	})
	if cfg.Metrics.Addr != "" {
		g.Go(func() error {
			return metrics.Serve(ctx, cfg.Metrics.Addr, logger)
		})
	}

	logger.Info().
		Str("transport", cfg.Bot.Transport).
		Str("storage", cfg.Storage.Backend).
		Str("timezone", cfg.Expense.Timezone).
		Msg("bot is running, press Ctrl+C to exit")
	return g.Wait()
}

func openStore(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (expense.Store, func(), error) {
	if cfg.Storage.Backend == config.BackendMemory {
		logger.Warn().Msg("using in-memory storage, expenses are lost on restart")
		return db.NewMemoryStore(), func() {}, nil
	}

	if err := db.Migrate(db.MigrationURL(cfg.PostgreSQL)); err != nil {
		return nil, nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	pool, err := db.Connect(ctx, cfg.PostgreSQL)
	if err != nil {
		return nil, nil, err
	}
	logger.Info().
		Str("host", cfg.PostgreSQL.Host).
		Str("database", cfg.PostgreSQL.DBName).
		Msg("connected to PostgreSQL")
	return db.NewPostgresStore(pool), pool.Close, nil
}
