// cmd/api/main.go

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"

	"trendwatch/internal/adapter/export"
	"trendwatch/internal/adapter/gtrends"
	"trendwatch/internal/adapter/storage"
	"trendwatch/internal/config"
	"trendwatch/internal/server"
	"trendwatch/internal/service/acquisition"
	"trendwatch/internal/service/analysis"
	"trendwatch/internal/service/monitor"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		logrus.Warn("No .env file found or error loading it. Using environment variables.")
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	log := newLogger(cfg.Log)

	// Setup context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Initialize dependencies
	db, err := initDatabase(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	natsConn, err := initNATS(cfg.NATS, log)
	if err != nil {
		log.Fatalf("Failed to connect to NATS: %v", err)
	}
	defer natsConn.Close()

	// Initialize storage adapters
	snapshotStore := storage.NewSnapshotStore(db)
	trendingStore := storage.NewTrendingStore(db)

	if err := snapshotStore.Init(ctx); err != nil {
		log.Fatalf("Failed to initialize snapshot schema: %v", err)
	}
	if err := trendingStore.Init(ctx); err != nil {
		log.Fatalf("Failed to initialize trending schema: %v", err)
	}

	// Initialize the trends provider and the paced acquisition layer
	provider := gtrends.NewClient(gtrends.Config{
		Language:       cfg.Trends.Language,
		Timezone:       cfg.Trends.Timezone,
		RequestTimeout: cfg.Trends.RequestTimeout,
	}, log)

	fetcher := acquisition.NewClient(provider, acquisition.Config{
		RequestDelay: cfg.Trends.RequestDelay,
		MaxRetries:   cfg.Trends.MaxRetries,
		BaseDelay:    cfg.Trends.BaseDelay,
	}, log)

	// Initialize services
	analyzer := analysis.NewAnalyzer()

	// Initialize export adapters
	fileExporter := export.NewExporter(cfg.Export.Dir, log)
	sqliteExporter := export.NewSQLiteExporter(cfg.Export.Dir, log)

	// Initialize trending monitor
	trendMonitor := monitor.NewMonitor(
		fetcher,
		trendingStore,
		natsConn,
		monitor.Config{
			Interval:    cfg.Monitor.Interval,
			Geos:        cfg.Monitor.Geos,
			EventsTopic: cfg.Trends.EventsTopic,
		},
		log,
	)

	if cfg.Monitor.Enabled {
		if err := trendMonitor.Start(ctx); err != nil {
			log.Fatalf("Failed to start trending monitor: %v", err)
		}
	}

	// Initialize HTTP server
	httpServer := server.NewServer(
		cfg.Server,
		natsConn,
		fetcher,
		analyzer,
		fileExporter,
		sqliteExporter,
		snapshotStore,
		trendingStore,
		cfg.Trends.EventsTopic,
		log,
	)

	// Start HTTP server
	go func() {
		log.Infof("Starting HTTP server on %s:%d", cfg.Server.Host, cfg.Server.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	// Wait for shutdown signal
	<-shutdown
	log.Info("Shutdown signal received")

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	// Graceful shutdown
	log.Info("Shutting down services...")

	// Shutdown HTTP server
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Errorf("HTTP server shutdown error: %v", err)
	}

	// Stop trending monitor
	if cfg.Monitor.Enabled {
		if err := trendMonitor.Stop(shutdownCtx); err != nil {
			log.Errorf("Trending monitor shutdown error: %v", err)
		}
	}

	log.Info("Shutdown complete")
}

// newLogger builds the application logger from configuration
func newLogger(cfg config.LogConfig) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	return log
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
func initNATS(cfg config.NATSConfig, log *logrus.Logger) (*nats.Conn, error) {
	options := []nats.Option{
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.Timeout(cfg.ConnectTimeout),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Errorf("NATS disconnected: %v", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Infof("NATS reconnected to %s", nc.ConnectedUrl())
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			log.Info("NATS connection closed")
		}),
	}

	nc, err := nats.Connect(cfg.URL, options...)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to NATS: %w", err)
	}

	return nc, nil
}
