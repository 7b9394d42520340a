// cmd/api/main.go

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

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/nats-io/nats.go"

	"trendwatch/internal/adapter/storage"
	"trendwatch/internal/config"
	"trendwatch/internal/events"
	"trendwatch/internal/logging"
	"trendwatch/internal/provider/news"
	"trendwatch/internal/provider/twitter"
	"trendwatch/internal/sentiment"
	"trendwatch/internal/server"
	"trendwatch/internal/service/aggregate"
	"trendwatch/internal/tracker"
)

func main() {
	// A .env file is optional; real deployments configure the environment.
	godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)

	// Setup context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Initialize dependencies
	db, err := initDatabase(ctx, cfg.Database)
	if err != nil {
		logging.WithError(err).Error("Failed to initialize database")
		os.Exit(1)
	}
	defer db.Close()

	natsConn, err := initNATS(cfg.NATS)
	if err != nil {
		logging.WithError(err).Error("Failed to connect to NATS")
		os.Exit(1)
	}
	defer natsConn.Close()

	rdb, err := tracker.NewClient(ctx, cfg.Redis.URL)
	if err != nil {
		logging.WithError(err).Error("Failed to connect to Redis")
		os.Exit(1)
	}
	defer rdb.Close()

	// Initialize storage
	trendStore := storage.NewTrendStore(db)
	if err := trendStore.EnsureSchema(ctx); err != nil {
		logging.WithError(err).Error("Failed to ensure database schema")
		os.Exit(1)
	}

	// Initialize the stream tracker and its ingest consumer
	streamTracker := tracker.NewTracker(rdb, cfg.Redis.KeyPrefix, cfg.Aggregate.MaxKeywordsPerTrend)

	consumer := tracker.NewConsumer(natsConn, streamTracker, cfg.NATS.IngestSubject)
	if err := consumer.Start(); err != nil {
		logging.WithError(err).Error("Failed to start ingest consumer")
		os.Exit(1)
	}

	// Initialize providers
	trendsClient := twitter.NewTrendsClient(cfg.Twitter.BearerToken, cfg.Twitter.TrendsWOEID)
	tweetClient := twitter.NewTweetClient(cfg.Twitter.BearerToken, nil)
	newsProvider := news.NewGoogle(cfg.News.BaseURL, cfg.News.Language, cfg.News.Country)

	publisher := events.NewPublisher(natsConn, cfg.Aggregate.EventsTopic)

	// Initialize the aggregation service
	aggregator := aggregate.NewAggregator(
		trendsClient,
		newsProvider,
		tweetClient,
		streamTracker,
		trendStore,
		publisher,
		sentiment.Label,
		aggregate.AggregatorConfig{
			MaxTweetsPerTrend:    cfg.Aggregate.MaxTweetsPerTrend,
			MaxKeywordsPerTrend:  cfg.Aggregate.MaxKeywordsPerTrend,
			MaxArticlesPerTrend:  cfg.Aggregate.MaxArticlesPerTrend,
			FetchTimeout:         cfg.Aggregate.FetchTimeout,
			MaxConcurrentUpdates: cfg.Aggregate.MaxConcurrentUpdates,
		},
	)

	scheduler := aggregate.NewScheduler(aggregator, clockwork.NewRealClock(), cfg.Aggregate.CycleInterval)
	if err := scheduler.Start(ctx); err != nil {
		logging.WithError(err).Error("Failed to start aggregation scheduler")
		os.Exit(1)
	}

	// Initialize HTTP server
	httpServer := server.NewServer(cfg.Server, trendStore, natsConn, cfg.Aggregate.EventsTopic)

	// Start HTTP server
	go func() {
		slog.Info("Starting HTTP server", "host", cfg.Server.Host, "port", cfg.Server.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.WithError(err).Error("HTTP server error")
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	<-shutdown
	slog.Info("Shutdown signal received")

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	slog.Info("Shutting down services")

	// Shutdown HTTP server
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logging.WithError(err).Error("HTTP server shutdown error")
	}

	// Stop the aggregation scheduler
	if err := scheduler.Stop(shutdownCtx); err != nil {
		logging.WithError(err).Error("Scheduler shutdown error")
	}

	// Drain the ingest consumer
	if err := consumer.Stop(); err != nil {
		logging.WithError(err).Error("Ingest consumer shutdown error")
	}

	slog.Info("Shutdown complete")
}

// Initialize database connection
func initDatabase(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	connString := fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database, cfg.SSLMode,
	)

	poolConfig, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("unable to parse connection string: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxOpenConns)
	poolConfig.MinConns = int32(cfg.MaxIdleConns)
	poolConfig.MaxConnLifetime = cfg.MaxLifetime

	db, err := pgxpool.ConnectConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	// Test connection
	if err := db.Ping(ctx); err != nil {
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	return db, nil
}

// Initialize NATS connection
func initNATS(cfg config.NATSConfig) (*nats.Conn, error) {
	options := []nats.Option{
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.Timeout(cfg.ConnectTimeout),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			slog.Warn("NATS disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			slog.Info("NATS reconnected", "url", nc.ConnectedUrl())
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			slog.Info("NATS connection closed")
		}),
	}

	nc, err := nats.Connect(cfg.URL, options...)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to NATS: %w", err)
	}

	return nc, nil
}
