// Package main is the entry point for the staybase API server.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/okarpenko/staybase/internal/auth"
	"github.com/okarpenko/staybase/internal/config"
	"github.com/okarpenko/staybase/internal/server"
	"github.com/okarpenko/staybase/internal/store"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		// Use a basic logger for startup errors
		basicLogger, _ := zap.NewProduction()
		basicLogger.Fatal("failed to load configuration", zap.Error(err))
	}

	// Initialize logger
	logger, err := initLogger(cfg.LogLevel)
	if err != nil {
		basicLogger, _ := zap.NewProduction()
		basicLogger.Fatal("failed to initialize logger", zap.Error(err))
	}
	defer func() {
		_ = logger.Sync()
	}()

	logger.Info("configuration loaded",
		zap.Int("server_port", cfg.ServerPort),
		zap.String("log_level", cfg.LogLevel),
		zap.Duration("shutdown_timeout", cfg.ShutdownTimeout),
		zap.Bool("metrics_enabled", cfg.MetricsEnabled),
		zap.String("store_backend", cfg.StoreBackend),
		zap.String("hotels_file", cfg.HotelsFile),
	)

	// Open the document store; a connect failure is fatal at startup.
	docStore, err := openStore(cfg, logger)
	if err != nil {
		logger.Fatal("failed to open document store", zap.Error(err))
	}

	// Open the flat-file hotel store.
	fileStore, err := store.NewFileStore(cfg.HotelsFile, logger)
	if err != nil {
		logger.Fatal("failed to open hotels file store", zap.Error(err))
	}

	directory := auth.NewDirectory(docStore, logger)

	if err := seedUsers(cfg, directory); err != nil {
		logger.Fatal("failed to seed users", zap.Error(err))
	}

	deps := server.Deps{
		Store:     docStore,
		FileStore: fileStore,
		Directory: directory,
		BasicAuth: auth.NewBasicAuthenticator(directory, logger),
		TokenAuth: auth.NewTokenAuthenticator(directory, cfg.TokenSecret, cfg.TokenTTL, logger),
	}

	srv := server.New(cfg, logger, deps)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- srv.Start()
	}()

	// Wait for shutdown signal
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		logger.Error("server error", zap.Error(err))
		return 1
	case sig := <-shutdown:
		logger.Info("shutdown signal received", zap.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("graceful shutdown failed", zap.Error(err))
			return 1
		}

		// Close the store connection after the server has drained.
		if err := docStore.Close(ctx); err != nil {
			logger.Error("store close failed", zap.Error(err))
			return 1
		}
	}

	logger.Info("server stopped")
	return 0
}

// openStore creates the configured document store backend.
func openStore(cfg *config.Config, logger *zap.Logger) (store.Store, error) {
	switch cfg.StoreBackend {
	case config.BackendMemory:
		logger.Info("document store backend: memory")
		return store.NewMemoryStore(), nil
	case config.BackendPostgres:
		logger.Info("document store backend: postgres")
		return store.OpenPostgres(context.Background(), cfg.DatabaseDSN, logger)
	default:
		return nil, fmt.Errorf("unknown store backend: %s", cfg.StoreBackend)
	}
}

// seedUsers inserts the configured seed accounts when absent.
func seedUsers(cfg *config.Config, directory *auth.Directory) error {
	entries, err := cfg.SeedUserList()
	if err != nil {
		return err
	}

	if len(entries) == 0 {
		return nil
	}

	creds := make([]auth.SeedCredential, 0, len(entries))
	for _, e := range entries {
		creds = append(creds, auth.SeedCredential{
			Username: e.Username,
			Password: e.Password,
			Role:     e.Role,
		})
	}

	return directory.Seed(context.Background(), creds)
}

// initLogger initializes a zap logger with the specified log level.
func initLogger(level string) (*zap.Logger, error) {
	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		zapLevel = zapcore.InfoLevel
	}

	zapConfig := zap.Config{
		Level:       zap.NewAtomicLevelAt(zapLevel),
		Development: false,
		Sampling: &zap.SamplingConfig{
			Initial:    100,
			Thereafter: 100,
		},
		Encoding: "json",
		EncoderConfig: zapcore.EncoderConfig{
			TimeKey:        "timestamp",
			LevelKey:       "level",
			NameKey:        "logger",
			CallerKey:      "caller",
			FunctionKey:    zapcore.OmitKey,
			MessageKey:     "message",
			StacktraceKey:  "stacktrace",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    zapcore.LowercaseLevelEncoder,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.SecondsDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		},
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	return zapConfig.Build()
}
