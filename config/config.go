// Package config provides configuration management for Mnemo.
package config

import (
	"fmt"
	"time"
)

// Config is the global configuration for Mnemo.
type Config struct {
	// App is the application configuration.
	App AppConfig `mapstructure:"app" validate:"required"`

	// Server is the HTTP server configuration.
	Server ServerConfig `mapstructure:"server" validate:"required"`

	// Log is the logging configuration.
	Log LogConfig `mapstructure:"log" validate:"required"`

	// Store is the document store configuration.
	Store StoreConfig `mapstructure:"store"`

	// Cache is the external result cache configuration.
	Cache CacheConfig `mapstructure:"cache"`

	// Retrieval is the hybrid retrieval configuration.
	Retrieval RetrievalConfig `mapstructure:"retrieval"`

	// Learning is the meta-learning configuration.
	Learning LearningConfig `mapstructure:"learning"`

	// Search is the external web search provider configuration.
	Search SearchConfig `mapstructure:"search"`

	// Embedding is the embedding provider configuration.
	Embedding EmbeddingConfig `mapstructure:"embedding"`

	// Index is the vector index configuration.
	Index IndexConfig `mapstructure:"index"`

	// Metrics is the observability configuration.
	Metrics MetricsConfig `mapstructure:"metrics"`

	// Tracing is the distributed tracing configuration.
	Tracing TracingConfig `mapstructure:"tracing"`
}

// AppConfig holds application metadata and settings.
type AppConfig struct {
	// Name is the application name.
	Name string `mapstructure:"name" validate:"required"`

	// Version is the application version.
	Version string `mapstructure:"version"`

	// Environment is the runtime environment (development, staging, production).
	Environment string `mapstructure:"environment" validate:"oneof=development staging production"`

	// Debug enables debug mode with verbose logging.
	Debug bool `mapstructure:"debug"`
}

// ServerConfig holds the HTTP server configuration.
type ServerConfig struct {
	// Host is the bind address.
	Host string `mapstructure:"host"`

	// Port is the HTTP API port.
	Port int `mapstructure:"port" validate:"required,min=1,max=65535"`

	// HTTP is the HTTP server configuration.
	HTTP HTTPConfig `mapstructure:"http"`

	// CORS is the CORS configuration.
	CORS CORSConfig `mapstructure:"cors"`
}

// HTTPConfig holds HTTP-specific settings.
type HTTPConfig struct {
	// ReadTimeout is the maximum duration for reading the entire request.
	ReadTimeout time.Duration `mapstructure:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes.
	WriteTimeout time.Duration `mapstructure:"write_timeout"`

	// IdleTimeout is the maximum amount of time to wait for the next request.
	IdleTimeout time.Duration `mapstructure:"idle_timeout"`

	// MaxHeaderBytes is the maximum size of request headers.
	MaxHeaderBytes int `mapstructure:"max_header_bytes"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	// Enabled enables CORS handling.
	Enabled bool `mapstructure:"enabled"`

	// AllowedOrigins is the list of allowed origins.
	AllowedOrigins []string `mapstructure:"allowed_origins"`

	// AllowedMethods is the list of allowed HTTP methods.
	AllowedMethods []string `mapstructure:"allowed_methods"`

	// AllowedHeaders is the list of allowed request headers.
	AllowedHeaders []string `mapstructure:"allowed_headers"`

	// ExposedHeaders is the list of headers exposed to browsers.
	ExposedHeaders []string `mapstructure:"exposed_headers"`

	// AllowCredentials allows cookies and authorization headers.
	AllowCredentials bool `mapstructure:"allow_credentials"`

	// MaxAge is how long preflight responses may be cached, in seconds.
	MaxAge int `mapstructure:"max_age"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	// Level is the log level (debug, info, warn, error).
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`

	// Format is the log output format (json, text).
	Format string `mapstructure:"format" validate:"oneof=json text"`

	// Output is the log destination (stdout, stderr, or a file path).
	Output string `mapstructure:"output"`
}

// StoreConfig holds the document store configuration.
type StoreConfig struct {
	// Type selects the store backend: "badger" or "memory".
	Type string `mapstructure:"type" validate:"oneof=badger memory"`

	// Badger holds Badger-specific settings.
	Badger BadgerConfig `mapstructure:"badger"`
}

// BadgerConfig holds Badger store settings.
type BadgerConfig struct {
	// Path is the directory for the Badger database.
	Path string `mapstructure:"path"`

	// SyncWrites forces fsync on every write.
	SyncWrites bool `mapstructure:"sync_writes"`

	// ValueLogFileSize is the maximum value log file size in bytes.
	ValueLogFileSize int64 `mapstructure:"value_log_file_size"`
}

// CacheConfig holds the external result cache configuration.
type CacheConfig struct {
	// Backend selects the cache backend: "store" or "redis".
	Backend string `mapstructure:"backend" validate:"oneof=store redis"`

	// MaxAge is how long cached external results stay readable.
	MaxAge time.Duration `mapstructure:"max_age"`

	// SweepAge is the age past which the sweeper deletes cache entries.
	SweepAge time.Duration `mapstructure:"sweep_age"`

	// SweepBatch caps how many entries a single sweep pass deletes.
	SweepBatch int `mapstructure:"sweep_batch" validate:"min=1"`

	// Redis holds Redis-specific settings.
	Redis RedisConfig `mapstructure:"redis"`
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	// Address is the Redis server address.
	Address string `mapstructure:"address"`

	// Password is the Redis password, if any.
	Password string `mapstructure:"password"`

	// DB is the Redis database number.
	DB int `mapstructure:"db" validate:"min=0"`
}

// RetrievalConfig holds the hybrid retrieval configuration.
type RetrievalConfig struct {
	// DefaultLimit is the result limit used when a caller passes none.
	DefaultLimit int `mapstructure:"default_limit" validate:"min=1"`

	// InternalWeight is the default fusion weight for internal results.
	InternalWeight float64 `mapstructure:"internal_weight" validate:"gte=0,lte=1"`

	// ExternalWeight is the default fusion weight for external results.
	ExternalWeight float64 `mapstructure:"external_weight" validate:"gte=0,lte=1"`

	// RecencyWindowDays is the linear recency decay window in days.
	RecencyWindowDays float64 `mapstructure:"recency_window_days" validate:"gt=0"`

	// SessionMaxAge is the age past which context sessions are swept.
	SessionMaxAge time.Duration `mapstructure:"session_max_age"`

	// SweepInterval is how often the maintenance sweeper runs.
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

// LearningConfig holds meta-learning parameters.
type LearningConfig struct {
	// MinWeight is the lower clamp for the internal fusion weight.
	MinWeight float64 `mapstructure:"min_weight" validate:"gte=0,lte=1"`

	// MaxWeight is the upper clamp for the internal fusion weight.
	MaxWeight float64 `mapstructure:"max_weight" validate:"gte=0,lte=1"`

	// MinRate is the learning rate floor.
	MinRate float64 `mapstructure:"min_rate" validate:"gt=0"`

	// MaxRate is the learning rate ceiling.
	MaxRate float64 `mapstructure:"max_rate" validate:"gt=0"`

	// EMAAlpha is the smoothing factor of the satisfaction moving average.
	EMAAlpha float64 `mapstructure:"ema_alpha" validate:"gt=0,lte=1"`
}

// SearchConfig holds the external web search provider settings.
type SearchConfig struct {
	// Endpoint is the provider search URL.
	Endpoint string `mapstructure:"endpoint"`

	// APIKey authenticates requests to the provider.
	APIKey string `mapstructure:"api_key"`

	// MaxResults is the default number of results requested.
	MaxResults int `mapstructure:"max_results" validate:"min=1"`

	// Timeout bounds a single provider call.
	Timeout time.Duration `mapstructure:"timeout"`

	// RateLimit is the maximum provider calls per second.
	RateLimit float64 `mapstructure:"rate_limit" validate:"gt=0"`

	// RateBurst is the rate limiter burst size.
	RateBurst int `mapstructure:"rate_burst" validate:"min=1"`
}

// EmbeddingConfig holds the embedding provider settings.
type EmbeddingConfig struct {
	// Endpoint is the embeddings API URL.
	Endpoint string `mapstructure:"endpoint"`

	// APIKey authenticates requests to the provider.
	APIKey string `mapstructure:"api_key"`

	// Model is the embedding model name.
	Model string `mapstructure:"model"`

	// Dimension is the embedding vector dimension.
	Dimension int `mapstructure:"dimension" validate:"min=1"`

	// Timeout bounds a single embedding call.
	Timeout time.Duration `mapstructure:"timeout"`
}

// IndexConfig holds the vector index settings.
type IndexConfig struct {
	// Path is where the index snapshot is persisted. Empty disables persistence.
	Path string `mapstructure:"path"`
}

// MetricsConfig holds Prometheus metrics settings.
type MetricsConfig struct {
	// Enabled enables the metrics endpoint.
	Enabled bool `mapstructure:"enabled"`

	// Port is the metrics server port.
	Port int `mapstructure:"port" validate:"min=0,max=65535"`

	// Path is the metrics endpoint path.
	Path string `mapstructure:"path"`
}

// TracingConfig holds OpenTelemetry tracing settings.
type TracingConfig struct {
	// Enabled enables trace export.
	Enabled bool `mapstructure:"enabled"`

	// Exporter selects the exporter type. Only "otlp" is supported.
	Exporter string `mapstructure:"exporter"`

	// Endpoint is the OTLP collector endpoint.
	Endpoint string `mapstructure:"endpoint"`

	// Headers are extra headers sent to the collector.
	Headers map[string]string `mapstructure:"headers"`

	// Sampler selects the sampling strategy (ratio, always_on, always_off).
	Sampler string `mapstructure:"sampler"`

	// SampleRate is the trace sampling ratio for the ratio sampler.
	SampleRate float64 `mapstructure:"sample_rate" validate:"gte=0,lte=1"`

	// Timeout bounds exporter calls.
	Timeout time.Duration `mapstructure:"timeout"`
}

// String returns a printable summary of the configuration with secrets elided.
func (c *Config) String() string {
	return fmt.Sprintf(
		"app=%s env=%s server=%s:%d store=%s cache=%s metrics=%v tracing=%v",
		c.App.Name, c.App.Environment, c.Server.Host, c.Server.Port,
		c.Store.Type, c.Cache.Backend, c.Metrics.Enabled, c.Tracing.Enabled,
	)
}
