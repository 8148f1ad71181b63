package config

import "time"

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		App: AppConfig{
			Name:        "mnemo",
			Version:     "dev",
			Environment: "development",
			Debug:       false,
		},
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
			HTTP: HTTPConfig{
				ReadTimeout:    30 * time.Second,
				WriteTimeout:   30 * time.Second,
				IdleTimeout:    120 * time.Second,
				MaxHeaderBytes: 1 << 20, // 1MB
			},
			CORS: CORSConfig{
				Enabled:        false,
				AllowedOrigins: []string{"*"},
				AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
				AllowedHeaders: []string{"Content-Type", "Authorization", "X-Request-ID"},
				MaxAge:         300,
			},
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Store: StoreConfig{
			Type: "memory",
			Badger: BadgerConfig{
				Path:             "./data/badger",
				SyncWrites:       true,
				ValueLogFileSize: 1073741824, // 1GB
			},
		},
		Cache: CacheConfig{
			Backend:    "store",
			MaxAge:     24 * time.Hour,
			SweepAge:   7 * 24 * time.Hour,
			SweepBatch: 100,
			Redis: RedisConfig{
				Address:  "localhost:6379",
				Password: "",
				DB:       0,
			},
		},
		Retrieval: RetrievalConfig{
			DefaultLimit:      10,
			InternalWeight:    0.6,
			ExternalWeight:    0.4,
			RecencyWindowDays: 90,
			SessionMaxAge:     30 * 24 * time.Hour,
			SweepInterval:     1 * time.Hour,
		},
		Learning: LearningConfig{
			MinWeight: 0.3,
			MaxWeight: 0.8,
			MinRate:   0.005,
			MaxRate:   0.05,
			EMAAlpha:  0.1,
		},
		Search: SearchConfig{
			Endpoint:   "https://api.tavily.com/search",
			APIKey:     "",
			MaxResults: 5,
			Timeout:    10 * time.Second,
			RateLimit:  2,
			RateBurst:  4,
		},
		Embedding: EmbeddingConfig{
			Endpoint:  "https://api.openai.com/v1/embeddings",
			APIKey:    "",
			Model:     "text-embedding-3-small",
			Dimension: 1536,
			Timeout:   15 * time.Second,
		},
		Index: IndexConfig{
			Path: "./data/index.bin",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Port:    9091,
			Path:    "/metrics",
		},
		Tracing: TracingConfig{
			Enabled:    false,
			Exporter:   "otlp",
			Endpoint:   "localhost:4317",
			Sampler:    "ratio",
			SampleRate: 0.1,
			Timeout:    10 * time.Second,
		},
	}
}
