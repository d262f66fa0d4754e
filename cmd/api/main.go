package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/stackflow-labs/eligibility-engine/internal/adapter"
	"github.com/stackflow-labs/eligibility-engine/internal/api/middleware"
	"github.com/stackflow-labs/eligibility-engine/internal/api/server"
	"github.com/stackflow-labs/eligibility-engine/internal/config"
	"github.com/stackflow-labs/eligibility-engine/internal/eligibility"
	"github.com/stackflow-labs/eligibility-engine/internal/logger"
	"github.com/stackflow-labs/eligibility-engine/internal/providers/ethereum"
	"github.com/stackflow-labs/eligibility-engine/internal/providers/indexer"
	"github.com/stackflow-labs/eligibility-engine/internal/providers/stack"
	"github.com/stackflow-labs/eligibility-engine/internal/registry"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "config/", "Path to environment files")
)

func main() {
	flag.Parse()

	// Load configuration
	config.ChdirRepoRoot()
	cfg, err := config.LoadAPIConfig(*configFile, *envPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize logger with sentry integration
	err = logger.Initialize(logger.Config{
		Debug:           cfg.Debug,
		SentryDSN:       cfg.SentryDSN,
		BreadcrumbLevel: zapcore.InfoLevel,
		Tags: map[string]string{
			"service": "eligibility-api",
		},
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)
	logger.InfoCtx(ctx, "Starting Eligibility API")

	// Initialize adapters
	clock := adapter.NewClock()
	fs := adapter.NewFileSystem()
	jsonAdapter := adapter.NewJSON()

	// Connect to the Ethereum RPC endpoint
	ethClient, err := adapter.NewEthClientDialer().Dial(ctx, cfg.Ethereum.RPCURL)
	if err != nil {
		logger.FatalCtx(ctx, "Failed to connect to Ethereum RPC", zap.Error(err))
	}
	defer ethClient.Close()
	logger.InfoCtx(ctx, "Connected to Ethereum RPC")

	pointSystems := cfg.DomainPointSystems()

	// Chain state client with memoized pool/locker reads
	chainClient := ethereum.NewClient(ethereum.Config{
		LockerFactoryAddress: cfg.Ethereum.LockerFactoryAddress,
		PointSystems:         pointSystems,
		CallTimeout:          cfg.Ethereum.CallTimeout,
		TotalUnitsCacheTTL:   cfg.Ethereum.TotalUnitsCacheTTL,
		LockerCacheTTL:       cfg.Ethereum.LockerCacheTTL,
	}, ethClient, clock)

	// Recipient ledger backing the bonus grant quota
	recipients := registry.NewRecipientRegistry(cfg.Ledger.Path, fs, jsonAdapter, clock)

	// Allocation ledger client
	stackClient := stack.NewClient(stack.Config{
		BaseURL:              cfg.Stack.BaseURL,
		ReadAPIKey:           cfg.Stack.ReadAPIKey,
		WriteAPIKey:          cfg.Stack.WriteAPIKey,
		PointSystems:         pointSystems,
		PrimaryPointSystemID: cfg.AutoAssign.PrimaryPointSystemID,
		BaselineEventLabel:   cfg.AutoAssign.EventLabel,
		GrantWindow:          cfg.AutoAssign.WindowPeriod,
	}, adapter.NewHTTPClient(cfg.Stack.RequestTimeout), jsonAdapter, recipients, clock)

	// Bulk locker discovery client
	indexerClient := indexer.NewClient(
		adapter.NewHTTPClient(cfg.Indexer.RequestTimeout),
		jsonAdapter,
		cfg.Indexer.URL,
		cfg.Indexer.PageSize,
	)

	// Reconciliation engine
	engine := eligibility.NewEngine(eligibility.Config{
		PointSystems:         pointSystems,
		PrimaryPointSystemID: cfg.AutoAssign.PrimaryPointSystemID,
		PointThreshold:       cfg.AutoAssign.PointThreshold,
		PointsToAssign:       cfg.AutoAssign.PointsToAssign,
		MaxUsersPerWindow:    cfg.AutoAssign.MaxUsersPerWindow,
		WindowPeriod:         cfg.AutoAssign.WindowPeriod,
		EventLabel:           cfg.AutoAssign.EventLabel,
		Concurrency:          cfg.AutoAssign.Concurrency,
	}, stackClient, chainClient, indexerClient, recipients, clock)

	// Create server config
	serverConfig := server.Config{
		Debug:        cfg.Debug,
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
		Auth: middleware.AuthConfig{
			JWTPublicKey: cfg.Auth.JWTPublicKey,
			APIKeys:      cfg.Auth.APIKeys,
		},
	}

	// Create and start server
	srv := server.New(serverConfig, engine)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil {
			errCh <- err
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		logger.InfoCtx(ctx, "Received shutdown signal", zap.String("signal", sig.String()))
		cancel()
	case err := <-errCh:
		logger.ErrorCtx(ctx, err, zap.String("component", "server"))
		cancel()
	}

	// Create shutdown context with timeout (don't use canceled ctx)
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	logger.InfoCtx(shutdownCtx, "Shutting down server...")

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.FatalCtx(shutdownCtx, "Server forced to shutdown", zap.Error(err))
	}

	// Use non-context logger for final message since original ctx is canceled
	logger.Info("API server stopped")
}
