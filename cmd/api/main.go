package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/DucLoc1999/Dexonic-Trading/internal/ai"
	"github.com/DucLoc1999/Dexonic-Trading/internal/aptos"
	"github.com/DucLoc1999/Dexonic-Trading/internal/cache"
	"github.com/DucLoc1999/Dexonic-Trading/internal/config"
	"github.com/DucLoc1999/Dexonic-Trading/internal/econia"
	"github.com/DucLoc1999/Dexonic-Trading/internal/flags"
	"github.com/DucLoc1999/Dexonic-Trading/internal/panora"
	"github.com/DucLoc1999/Dexonic-Trading/internal/payload"
	"github.com/DucLoc1999/Dexonic-Trading/internal/quote"
	"github.com/DucLoc1999/Dexonic-Trading/internal/registry"
	"github.com/DucLoc1999/Dexonic-Trading/internal/server"
	"github.com/DucLoc1999/Dexonic-Trading/internal/storage"
)

// env bootstrap function
func loadEnv(logger *logrus.Logger) {
	// Get the project root directory (where go.mod is)
	_, filename, _, _ := runtime.Caller(0)
	projectRoot := filepath.Join(filepath.Dir(filename), "../..")
	envPath := filepath.Join(projectRoot, ".env")

	if err := godotenv.Load(envPath); err != nil {
		logger.Warnf("no .env file found at %s, using system environment variables", envPath)
	} else {
		logger.Infof("loaded .env from %s", envPath)
	}
}

// main is the entry point for the API server
// It initializes all dependencies and starts the HTTP server with graceful shutdown
func main() {
	// Initialize structured logger with custom formatting
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	logger.SetLevel(logrus.InfoLevel)

	// load .env BEFORE anything reads os.Getenv
	loadEnv(logger)

	// Load and validate configuration from environment variables
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.WithError(err).Fatal("invalid configuration")
	}

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup signal handling for graceful shutdown (Ctrl+C, SIGTERM)
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	// Fullnode client shared by every on-chain collaborator
	node := aptos.NewClient(aptos.ClientConfig{
		BaseURL:      cfg.NodeURL,
		Timeout:      cfg.HTTPTimeout,
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
		Logger:       logger,
	})

	reg := registry.Default()

	// Redis is optional: without it there is no reserve cache, no
	// recent-trades list, and no venue kill-switches.
	var (
		rclient    *redis.Client
		tradeCache storage.TradeCache
		flagStore  *flags.Store
	)
	if cfg.RedisAddr != "" {
		rclient = redis.NewClient(&redis.Options{
			Addr: cfg.RedisAddr,
			DB:   0, // Use default database for main application
		})
		if err := rclient.Ping(ctx).Err(); err != nil {
			logger.WithError(err).Fatal("failed to connect to Redis")
		}

		tradeCache = cache.NewRedisCacheFromClient(rclient, logger)

		fs, err := flags.NewStore(rclient)
		if err != nil {
			logger.WithError(err).Fatal("failed to create flags store")
		}
		flagStore = fs
	}

	// Reserve reads go straight to the node unless Redis is present
	var fetcher quote.ReserveFetcher = node
	if rclient != nil {
		fetcher = cache.NewCachedReserveFetcher(node, rclient, cache.DefaultReserveTTL, logger)
	}

	var venueFlags quote.VenueFlags
	if flagStore != nil {
		venueFlags = flagStore
	}

	orchestrator := quote.NewOrchestrator(quote.OrchestratorDeps{
		Registry: reg,
		Resolver: quote.NewResolver(fetcher, logger),
		Book:     econia.NewStrategy(node, logger),
		Pricing:  panora.NewClient(cfg.PanoraBaseURL, cfg.PanoraAPIKey),
		Contract: quote.NewContractQuoter(node, reg, cfg.AggregatorAddress, logger),
		Flags:    venueFlags,
		Logger:   logger,
		Config: quote.OrchestratorConfig{
			VenueTimeout:    cfg.VenueTimeout,
			ContractTimeout: cfg.ContractTimeout,
		},
	})

	builder := payload.NewBuilder(reg, cfg.AggregatorAddress, logger)

	// ClickHouse trade history is optional
	var tradeStore storage.TradeStore
	if cfg.ClickHouseAddr != "" {
		store, err := storage.NewClickHouseStore(storage.ClickHouseConfig{
			Addr:     cfg.ClickHouseAddr,
			Database: cfg.ClickHouseDatabase,
			Username: cfg.ClickHouseUsername,
			Password: cfg.ClickHousePassword,
		}, logger)
		if err != nil {
			logger.WithError(err).Fatal("failed to connect to ClickHouse")
		}
		defer store.Close()
		tradeStore = store
	}

	// Initialize AI agent for natural language questions (optional)
	var agent *ai.Agent
	aiBase := ai.AgentConfig{
		OpenRouterAPIKey: cfg.OpenRouterAPIKey,
		Model:            "openai/gpt-4.1-mini", // Default model for intent extraction
		Logger:           logger,
	}

	// Only initialize AI if OpenRouter API key is provided
	if cfg.OpenRouterAPIKey != "" {
		a, err := ai.NewAgent(aiBase, orchestrator)
		if err != nil {
			logger.WithError(err).Warn("failed to initialize ai agent")
		} else {
			agent = a
		}
	}

	// Create handlers with all dependencies injected
	h := &server.Handlers{
		Quotes:       orchestrator, // Quote fan-out pipeline
		Payloads:     builder,      // Swap instruction encoder
		Cache:        tradeCache,   // Redis-backed recent trades (can be nil)
		Store:        tradeStore,   // ClickHouse trade history (can be nil)
		Confirmer:    node,         // On-chain confirmation for reported trades
		Flags:        flagStore,    // Redis-backed venue kill-switches (can be nil)
		AI:           agent,        // Optional AI agent (can be nil)
		AIBaseConfig: aiBase,       // Base AI configuration for model overrides
		AIQuoter:     orchestrator, // Quote pipeline for per-request agents
		DevMode:      cfg.DevMode,  // Enable detailed error responses in development
		Logger:       logger,       // Structured logger
	}

	// Create HTTP server with configuration and handlers
	srv, err := server.NewServer(server.ServerDeps{
		Handlers: h,
		Config: server.ServerConfig{
			Addr:    cfg.APIAddr, // Server bind address (e.g., ":8090")
			DevMode: cfg.DevMode, // Development mode flag
			APIKey:  cfg.APIKey,  // Optional API key for authentication
		},
	})
	if err != nil {
		logger.WithError(err).Fatal("failed to create http server")
	}

	// Setup graceful shutdown in a separate goroutine
	go func() {
		<-sigCh // Wait for shutdown signal
		logger.Info("shutting down")
		cancel()                               // Cancel context to stop ongoing operations
		_ = srv.Shutdown(context.Background()) // Gracefully shutdown HTTP server
	}()

	// Start the HTTP server
	logger.WithField("addr", cfg.APIAddr).Info("api server starting")
	if err := srv.Start(); err != nil {
		// "http: Server closed" is expected during graceful shutdown
		if err.Error() == "http: Server closed" {
			return
		}
		logger.WithError(err).Fatal("api server failed")
	}

	// Wait for server to be fully shut down
	if err := srv.WaitClosed(context.Background()); err != nil {
		fmt.Println(err)
	}
}
