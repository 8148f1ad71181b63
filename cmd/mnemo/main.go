package main

// @title Mnemo API
// @version 1.0
// @description Adaptive hybrid retrieval engine with context-weighted recall, external search fusion and per-user meta-learning

// @contact.name API Support
// @contact.url https://github.com/mnemo/mnemo

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:8080
// @BasePath /
// @schemes http https

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mnemo/mnemo/config"
	"github.com/mnemo/mnemo/pkg/api"
	"github.com/mnemo/mnemo/pkg/api/events"
	"github.com/mnemo/mnemo/pkg/api/handlers"
	"github.com/mnemo/mnemo/pkg/embedding"
	"github.com/mnemo/mnemo/pkg/logger"
	"github.com/mnemo/mnemo/pkg/metrics"
	"github.com/mnemo/mnemo/pkg/retrieval"
	"github.com/mnemo/mnemo/pkg/store"
	"github.com/mnemo/mnemo/pkg/store/badger"
	"github.com/mnemo/mnemo/pkg/store/memory"
	"github.com/mnemo/mnemo/pkg/telemetry/tracing"
	"github.com/mnemo/mnemo/pkg/vectorindex"
	"github.com/mnemo/mnemo/pkg/version"
	"github.com/mnemo/mnemo/pkg/websearch"
)

var (
	configPath  = flag.String("config", "", "Path to configuration file")
	versionFlag = flag.Bool("version", false, "Print version information")
	helpFlag    = flag.Bool("help", false, "Print help information")

	// CLI overrides
	appName    = flag.String("app-name", "", "Override app name")
	serverPort = flag.Int("port", 0, "Override server port")
	logLevel   = flag.String("log-level", "", "Override log level")
	debugMode  = flag.Bool("debug", false, "Enable debug mode")
)

func main() {
	flag.Parse()

	// Print help
	if *helpFlag {
		printHelp()
		os.Exit(0)
	}

	// Print version
	if *versionFlag {
		printVersion()
		os.Exit(0)
	}

	// Build CLI overrides map
	overrides := buildOverrides()

	// Load configuration
	cfg, err := config.Load(*configPath, overrides)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration:\n%s\n", err)
		os.Exit(1)
	}

	// Initialize logger with configuration
	logCfg := &logger.Config{
		Level:  logger.ParseLevel(cfg.Log.Level),
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	}
	if cfg.App.Debug || *debugMode {
		logCfg.Level = logger.DebugLevel
	}
	log := logger.New(logCfg)
	logger.SetGlobal(log)

	log.Info("Starting Mnemo",
		"version", version.Version,
		"buildTime", version.BuildTime,
		"gitCommit", version.GitCommit,
		"app", cfg.App.Name,
		"environment", cfg.App.Environment,
	)

	log.Debug("Configuration loaded", "config", cfg.String())

	// Create root context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Initialize tracing
	if cfg.Tracing.Enabled {
		shutdownTracing, err := tracing.Init(ctx, cfg.Tracing, cfg.App.Name, version.Version)
		if err != nil {
			log.Error("Failed to initialize tracing", "error", err)
			os.Exit(1)
		}
		defer func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			if err := shutdownTracing(shutdownCtx); err != nil {
				log.Error("Error shutting down tracing", "error", err)
			}
		}()
		log.Info("Initialized tracing", "endpoint", cfg.Tracing.Endpoint)
	}

	// Initialize store backend
	var docStore store.Store
	switch cfg.Store.Type {
	case "badger":
		badgerCfg := &badger.Config{
			Path:             cfg.Store.Badger.Path,
			SyncWrites:       cfg.Store.Badger.SyncWrites,
			ValueLogFileSize: cfg.Store.Badger.ValueLogFileSize,
		}
		docStore, err = badger.NewBadgerStore(badgerCfg)
		if err != nil {
			log.Error("Failed to create Badger store", "error", err)
			os.Exit(1)
		}
		log.Info("Initialized Badger store", "path", badgerCfg.Path)
	case "memory":
		docStore = memory.NewMemoryStore()
		log.Info("Initialized memory store")
	default:
		docStore = memory.NewMemoryStore()
		log.Warn("Unknown store type, using memory store", "type", cfg.Store.Type)
	}
	defer func() {
		if err := docStore.Close(); err != nil {
			log.Error("Error closing store", "error", err)
		}
	}()

	// Initialize the external result cache
	var (
		cache       retrieval.ResultCache
		redisClient *redis.Client
	)
	if cfg.Cache.Backend == "redis" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Cache.Redis.Address,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
		})
		pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
		err := redisClient.Ping(pingCtx).Err()
		pingCancel()
		if err != nil {
			log.Error("Failed to connect to Redis", "address", cfg.Cache.Redis.Address, "error", err)
			os.Exit(1)
		}
		cache = retrieval.NewRedisCache(redisClient, cfg.Cache.SweepAge, log)
		defer redisClient.Close()
		log.Info("Initialized Redis result cache", "address", cfg.Cache.Redis.Address)
	} else {
		log.Info("Initialized store-backed result cache")
	}

	// Initialize the embedding provider
	embedder, err := embedding.NewHTTPEmbedder(&embedding.Config{
		Endpoint:  cfg.Embedding.Endpoint,
		APIKey:    cfg.Embedding.APIKey,
		Model:     cfg.Embedding.Model,
		Dimension: cfg.Embedding.Dimension,
		Timeout:   cfg.Embedding.Timeout,
	})
	if err != nil {
		log.Error("Failed to create embedder", "error", err)
		os.Exit(1)
	}

	// Initialize the vector index, restoring a snapshot when one exists
	index := vectorindex.NewIndex(cfg.Embedding.Dimension)
	if cfg.Index.Path != "" {
		if err := index.Load(cfg.Index.Path); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				log.Info("No index snapshot found, starting empty", "path", cfg.Index.Path)
			} else {
				log.Error("Failed to load index snapshot", "path", cfg.Index.Path, "error", err)
				os.Exit(1)
			}
		} else {
			log.Info("Loaded index snapshot", "path", cfg.Index.Path, "vectors", index.Len())
		}
	}

	// Initialize the external search provider. Without an API key the
	// external path serves cached results only.
	var searcher retrieval.ExternalSearcher
	if cfg.Search.APIKey != "" {
		client, err := websearch.NewClient(&websearch.Config{
			Endpoint:   cfg.Search.Endpoint,
			APIKey:     cfg.Search.APIKey,
			MaxResults: cfg.Search.MaxResults,
			Timeout:    cfg.Search.Timeout,
			RateLimit:  cfg.Search.RateLimit,
			RateBurst:  cfg.Search.RateBurst,
		})
		if err != nil {
			log.Error("Failed to create search client", "error", err)
			os.Exit(1)
		}
		searcher = client
		log.Info("Initialized external search", "endpoint", cfg.Search.Endpoint)
	} else {
		log.Warn("No search API key configured, external path serves cache only")
	}

	// Initialize metrics manager
	metricsCfg := metrics.Config{
		Enabled:               cfg.Metrics.Enabled,
		Port:                  cfg.Metrics.Port,
		Path:                  cfg.Metrics.Path,
		SearchDurationBuckets: metrics.DefaultConfig().SearchDurationBuckets,
		HTTPDurationBuckets:   metrics.DefaultConfig().HTTPDurationBuckets,
	}
	metricsManager := metrics.NewManager(metricsCfg)

	// Start metrics server if enabled
	if metricsManager.Enabled() {
		go func() {
			log.Info("Starting metrics server", "port", cfg.Metrics.Port, "path", cfg.Metrics.Path)
			if err := metricsManager.StartServer(ctx, cfg.Metrics.Port, cfg.Metrics.Path); err != nil {
				log.Error("Metrics server error", "error", err)
			}
		}()
	}

	// Assemble and start the retrieval engine
	eng := retrieval.NewEngine(retrieval.EngineDeps{
		Store:    docStore,
		Embedder: embedder,
		Index:    index,
		Searcher: searcher,
		Cache:    cache,
		Observer: metricsManager,
		Logger:   log,
	}, retrieval.EngineConfig{
		DefaultLimit:      cfg.Retrieval.DefaultLimit,
		CacheMaxAge:       cfg.Cache.MaxAge,
		RecencyWindowDays: cfg.Retrieval.RecencyWindowDays,
		Learner: retrieval.LearnerParams{
			InternalWeight: cfg.Retrieval.InternalWeight,
			ExternalWeight: cfg.Retrieval.ExternalWeight,
			MinWeight:      cfg.Learning.MinWeight,
			MaxWeight:      cfg.Learning.MaxWeight,
			MinRate:        cfg.Learning.MinRate,
			MaxRate:        cfg.Learning.MaxRate,
			EMAAlpha:       cfg.Learning.EMAAlpha,
		},
		Sweeper: retrieval.SweeperConfig{
			Interval:      cfg.Retrieval.SweepInterval,
			SessionMaxAge: cfg.Retrieval.SessionMaxAge,
			CacheSweepAge: cfg.Cache.SweepAge,
			CacheBatch:    cfg.Cache.SweepBatch,
		},
	})
	eng.Start(ctx)
	defer eng.Stop()

	// Rebuild the index from the store when starting without a snapshot
	if index.Len() == 0 {
		indexed, err := eng.Memories.Reindex(ctx, "")
		if err != nil {
			log.Error("Failed to rebuild index", "error", err)
		} else if indexed > 0 {
			log.Info("Rebuilt index from store", "vectors", indexed)
		}
	}

	// Wire websocket event streaming
	bus := events.NewBroadcaster()
	defer bus.Close()
	wsHandler := handlers.NewWebSocketHandler(log, handlers.WebSocketConfig{
		AllowedOrigins: cfg.Server.CORS.AllowedOrigins,
	})
	defer wsHandler.Close()
	eventCh := bus.Subscribe(64)
	go func() {
		for event := range eventCh {
			if err := wsHandler.Broadcast(handlers.EventMessage{
				Type:      event.Type,
				Timestamp: event.Timestamp,
				Payload:   event.Payload,
			}); err != nil {
				log.Warn("Websocket broadcast failed", "type", event.Type, "error", err)
			}
		}
	}()

	// Initialize HTTP server with handlers
	statusFunc := func(ctx context.Context) map[string]any {
		return map[string]any{
			"store":         cfg.Store.Type,
			"cache_backend": cfg.Cache.Backend,
			"index_vectors": index.Len(),
		}
	}
	readinessProbe := func(ctx context.Context) error {
		if redisClient != nil {
			return redisClient.Ping(ctx).Err()
		}
		return nil
	}

	apiHandlers := &api.Handlers{
		Search:      handlers.NewSearchHandler(eng, log, bus),
		Memories:    handlers.NewMemoriesHandler(eng, log),
		Feedback:    handlers.NewFeedbackHandler(eng, log, bus),
		Learning:    handlers.NewLearningHandler(eng, log),
		Performance: handlers.NewPerformanceHandler(eng, log),
		Health:      handlers.NewHealthHandler(readinessProbe, statusFunc),
		Events:      wsHandler,
		Metrics:     metricsManager,
	}

	httpServer := api.NewHTTPServer(cfg, log, apiHandlers)

	// Start HTTP server in a separate goroutine
	serverErrChan := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "address", fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port))
		if err := httpServer.Start(); err != nil {
			serverErrChan <- err
		}
	}()

	log.Info("Mnemo is running",
		"http_port", cfg.Server.Port,
		"metrics_port", cfg.Metrics.Port,
	)
	log.Info("Press Ctrl+C to stop")

	// Wait for shutdown signal or server error
	select {
	case sig := <-sigChan:
		log.Info("Received shutdown signal", "signal", sig)
	case err := <-serverErrChan:
		log.Error("HTTP server error", "error", err)
	case <-ctx.Done():
		log.Info("Context cancelled")
	}

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	// Shutdown HTTP server first
	log.Info("Shutting down HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down HTTP server", "error", err)
	}

	// Persist the index snapshot
	if cfg.Index.Path != "" {
		if err := index.Save(cfg.Index.Path); err != nil {
			log.Error("Failed to save index snapshot", "path", cfg.Index.Path, "error", err)
		} else {
			log.Info("Saved index snapshot", "path", cfg.Index.Path, "vectors", index.Len())
		}
	}

	log.Info("Mnemo stopped gracefully")
}

func buildOverrides() map[string]interface{} {
	overrides := make(map[string]interface{})

	if *appName != "" {
		overrides["app.name"] = *appName
	}
	if *serverPort != 0 {
		overrides["server.port"] = *serverPort
	}
	if *logLevel != "" {
		overrides["log.level"] = *logLevel
	}
	if *debugMode {
		overrides["app.debug"] = true
	}

	return overrides
}

func printVersion() {
	fmt.Printf("Mnemo - Adaptive Hybrid Retrieval Engine\n")
	fmt.Printf("Version:    %s\n", version.Version)
	fmt.Printf("Build Time: %s\n", version.BuildTime)
	fmt.Printf("Git Commit: %s\n", version.GitCommit)
	fmt.Printf("Go Version: %s\n", version.GoVersion)
}

func printHelp() {
	fmt.Printf("Mnemo - Adaptive hybrid retrieval engine\n\n")
	fmt.Printf("Usage: mnemo [options]\n\n")
	fmt.Printf("Options:\n")
	flag.PrintDefaults()
	fmt.Printf("\nExamples:\n")
	fmt.Printf("  mnemo                                    # Run with default config\n")
	fmt.Printf("  mnemo -config config.yaml                # Use specific config file\n")
	fmt.Printf("  mnemo -port 9090 -log-level debug        # Override specific options\n")
	fmt.Printf("  mnemo -version                           # Print version info\n")
}
