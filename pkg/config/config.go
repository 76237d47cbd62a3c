// Package config loads and validates application configuration from YAML files
// with environment-variable overrides. It provides typed structs for every
// subsystem (Corpus, Index, Search, Server, Postgres, Redis, Kafka, etc.).
package config

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	Corpus   CorpusConfig   `yaml:"corpus"`
	Index    IndexConfig    `yaml:"index"`
	Search   SearchConfig   `yaml:"search"`
	Server   ServerConfig   `yaml:"server"`
	Postgres PostgresConfig `yaml:"postgres"`
	Redis    RedisConfig    `yaml:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Logging  LoggingConfig  `yaml:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// CorpusConfig describes where documents come from and how they are
// tokenized before they reach the index builders.
type CorpusConfig struct {
	Source       string `yaml:"source"`
	Pattern      string `yaml:"pattern"`
	Table        string `yaml:"table"`
	Lowercase    bool   `yaml:"lowercase"`
	Stem         bool   `yaml:"stem"`
	ParseWorkers int    `yaml:"parseWorkers"`
}

// IndexConfig controls which index variants are built and where they are
// persisted.
type IndexConfig struct {
	DataDir  string   `yaml:"dataDir"`
	Variants []string `yaml:"variants"`
	Workers  int      `yaml:"workers"`
}

// SearchConfig holds BM25 parameters and result limits.
type SearchConfig struct {
	K1           float64 `yaml:"k1"`
	B            float64 `yaml:"b"`
	DefaultLimit int     `yaml:"defaultLimit"`
	MaxResults   int     `yaml:"maxResults"`
	Variant      string  `yaml:"variant"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
}

// PostgresConfig holds PostgreSQL connection parameters.
type PostgresConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	Database        string        `yaml:"database"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	SSLMode         string        `yaml:"sslMode"`
	MaxOpenConns    int           `yaml:"maxOpenConns"`
	MaxIdleConns    int           `yaml:"maxIdleConns"`
	ConnMaxLifetime time.Duration `yaml:"connMaxLifetime"`
}

// DSN returns a lib/pq-compatible data source name.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

// RedisConfig holds Redis connection and caching parameters. An empty Addr
// disables the query cache.
type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	PoolSize int           `yaml:"poolSize"`
	CacheTTL time.Duration `yaml:"cacheTTL"`
}

// KafkaConfig holds broker and topic settings. An empty broker list disables
// event publishing and index reload notifications.
type KafkaConfig struct {
	Brokers       []string    `yaml:"brokers"`
	ConsumerGroup string      `yaml:"consumerGroup"`
	Topics        KafkaTopics `yaml:"topics"`
}

// KafkaTopics maps logical topic names to their Kafka topic strings.
type KafkaTopics struct {
	IndexBuilt  string `yaml:"indexBuilt"`
	QueryEvents string `yaml:"queryEvents"`
}

// LoggingConfig controls structured logging level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig controls the Prometheus metrics server.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

// Load reads a YAML config file (if provided) and applies environment-variable
// overrides. Missing values keep their defaults. The result is validated.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}
	applyEnvOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks ranges and enumerations that would otherwise surface as
// confusing query-time failures.
func (c *Config) Validate() error {
	switch c.Corpus.Source {
	case "reuters", "postgres":
	default:
		return fmt.Errorf("invalid corpus.source %q: want reuters or postgres", c.Corpus.Source)
	}
	if len(c.Index.Variants) == 0 {
		return fmt.Errorf("index.variants must name at least one variant")
	}
	for _, v := range c.Index.Variants {
		if !validVariant(v) {
			return fmt.Errorf("invalid index variant %q: want naive or spimi", v)
		}
	}
	if !validVariant(c.Search.Variant) {
		return fmt.Errorf("invalid search.variant %q: want naive or spimi", c.Search.Variant)
	}
	if !slices.Contains(c.Index.Variants, c.Search.Variant) {
		return fmt.Errorf("search.variant %q is not listed in index.variants %v", c.Search.Variant, c.Index.Variants)
	}
	if c.Search.K1 < 0 {
		return fmt.Errorf("search.k1 must be non-negative, got %v", c.Search.K1)
	}
	if c.Search.B < 0 || c.Search.B > 1 {
		return fmt.Errorf("search.b must be within [0, 1], got %v", c.Search.B)
	}
	if c.Search.DefaultLimit <= 0 || c.Search.MaxResults <= 0 {
		return fmt.Errorf("search limits must be positive")
	}
	if c.Search.DefaultLimit > c.Search.MaxResults {
		return fmt.Errorf("search.defaultLimit %d exceeds search.maxResults %d",
			c.Search.DefaultLimit, c.Search.MaxResults)
	}
	return nil
}

func validVariant(v string) bool {
	return v == "naive" || v == "spimi"
}

// defaultConfig returns a Config with defaults for local development.
func defaultConfig() *Config {
	return &Config{
		Corpus: CorpusConfig{
			Source:       "reuters",
			Pattern:      "reuters21578/*.sgm",
			Table:        "documents",
			Lowercase:    false,
			Stem:         false,
			ParseWorkers: 4,
		},
		Index: IndexConfig{
			DataDir:  "index",
			Variants: []string{"naive", "spimi"},
			Workers:  4,
		},
		Search: SearchConfig{
			K1:           1.5,
			B:            0.75,
			DefaultLimit: 10,
			MaxResults:   100,
			Variant:      "spimi",
		},
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		Postgres: PostgresConfig{
			Host:            "localhost",
			Port:            5432,
			Database:        "reuters",
			User:            "reuters",
			Password:        "localdev",
			SSLMode:         "disable",
			MaxOpenConns:    10,
			MaxIdleConns:    2,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Redis: RedisConfig{
			Addr:     "",
			PoolSize: 10,
			CacheTTL: 60 * time.Second,
		},
		Kafka: KafkaConfig{
			ConsumerGroup: "searcher",
			Topics: KafkaTopics{
				IndexBuilt:  "index.built",
				QueryEvents: "query-events",
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Port:    9090,
		},
	}
}

// applyEnvOverrides reads IX_* environment variables and overrides the
// corresponding config fields.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("IX_CORPUS_SOURCE"); v != "" {
		cfg.Corpus.Source = v
	}
	if v := os.Getenv("IX_CORPUS_PATTERN"); v != "" {
		cfg.Corpus.Pattern = v
	}
	if v := os.Getenv("IX_CORPUS_LOWERCASE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Corpus.Lowercase = b
		}
	}
	if v := os.Getenv("IX_CORPUS_STEM"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Corpus.Stem = b
		}
	}
	if v := os.Getenv("IX_INDEX_DATA_DIR"); v != "" {
		cfg.Index.DataDir = v
	}
	if v := os.Getenv("IX_INDEX_VARIANTS"); v != "" {
		cfg.Index.Variants = strings.Split(v, ",")
	}
	if v := os.Getenv("IX_SEARCH_K1"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Search.K1 = f
		}
	}
	if v := os.Getenv("IX_SEARCH_B"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Search.B = f
		}
	}
	if v := os.Getenv("IX_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("IX_POSTGRES_HOST"); v != "" {
		cfg.Postgres.Host = v
	}
	if v := os.Getenv("IX_POSTGRES_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Postgres.Port = port
		}
	}
	if v := os.Getenv("IX_POSTGRES_DATABASE"); v != "" {
		cfg.Postgres.Database = v
	}
	if v := os.Getenv("IX_POSTGRES_USER"); v != "" {
		cfg.Postgres.User = v
	}
	if v := os.Getenv("IX_POSTGRES_PASSWORD"); v != "" {
		cfg.Postgres.Password = v
	}
	if v := os.Getenv("IX_REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("IX_REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("IX_KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("IX_LOGGING_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("IX_LOGGING_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}
