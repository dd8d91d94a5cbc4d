// Package config handles configuration loading for News-Sentiment.
// It supports YAML config files with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/Abigiya-M/News-Sentiment/pkg/models"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "NEWSSENTIMENT"

// Config represents the complete application configuration.
type Config struct {
	Analysis  AnalysisConfig  `mapstructure:"analysis" yaml:"analysis"`
	Sentiment SentimentConfig `mapstructure:"sentiment" yaml:"sentiment"`
	Data      DataConfig      `mapstructure:"data"     yaml:"data"`
	Yahoo     YahooConfig     `mapstructure:"yahoo"    yaml:"yahoo"`
	Cache     CacheConfig     `mapstructure:"cache"    yaml:"cache"`
	Database  DatabaseConfig  `mapstructure:"database" yaml:"database"`
	Kafka     KafkaConfig     `mapstructure:"kafka"    yaml:"kafka"`
	Feeds     []FeedConfig    `mapstructure:"feeds"    yaml:"feeds"`
	Logging   LoggingConfig   `mapstructure:"logging"  yaml:"logging"`
}

// AnalysisConfig holds the numeric parameters of the analysis pipeline.
type AnalysisConfig struct {
	RiskFreeRate         float64 `mapstructure:"risk_free_rate"        yaml:"risk_free_rate"` // annual
	TradingDays          int     `mapstructure:"trading_days"          yaml:"trading_days"`
	BenchmarkReturn      float64 `mapstructure:"benchmark_return"      yaml:"benchmark_return"` // daily
	ForwardDays          int     `mapstructure:"forward_days"          yaml:"forward_days"`
	MaxLag               int     `mapstructure:"max_lag"               yaml:"max_lag"`
	CorrelationThreshold float64 `mapstructure:"correlation_threshold" yaml:"correlation_threshold"`
	Concurrency          int     `mapstructure:"concurrency"           yaml:"concurrency"`
}

// SentimentConfig holds the polarity label cut-offs.
type SentimentConfig struct {
	PositiveThreshold float64 `mapstructure:"positive_threshold" yaml:"positive_threshold"`
	NegativeThreshold float64 `mapstructure:"negative_threshold" yaml:"negative_threshold"`
}

// Thresholds returns the cut-offs shared by scoring and category statistics.
func (s SentimentConfig) Thresholds() models.Thresholds {
	return models.Thresholds{Positive: s.PositiveThreshold, Negative: s.NegativeThreshold}
}

// DataConfig holds input and output locations.
type DataConfig struct {
	NewsFile  string `mapstructure:"news_file"  yaml:"news_file"`
	PricesDir string `mapstructure:"prices_dir" yaml:"prices_dir"` // <TICKER>.csv files
	Source    string `mapstructure:"source"     yaml:"source"`     // "yahoo" or "csv"
	OutputDir string `mapstructure:"output_dir" yaml:"output_dir"`
}

// YahooConfig holds Yahoo Finance chart API settings.
type YahooConfig struct {
	BaseURL        string  `mapstructure:"base_url"         yaml:"base_url"`
	RequestsPerSec float64 `mapstructure:"requests_per_sec" yaml:"requests_per_sec"`
	TimeoutSec     int     `mapstructure:"timeout_sec"      yaml:"timeout_sec"`
}

// CacheConfig selects and configures the price cache.
type CacheConfig struct {
	Backend       string `mapstructure:"backend"        yaml:"backend"` // "memory", "redis" or "none"
	TTLSec        int    `mapstructure:"ttl_sec"        yaml:"ttl_sec"`
	RedisAddr     string `mapstructure:"redis_addr"     yaml:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password" yaml:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"       yaml:"redis_db"`
}

// DatabaseConfig holds Postgres connection settings.
type DatabaseConfig struct {
	Enabled  bool   `mapstructure:"enabled"  yaml:"enabled"`
	Host     string `mapstructure:"host"     yaml:"host"`
	Port     int    `mapstructure:"port"     yaml:"port"`
	User     string `mapstructure:"user"     yaml:"user"`
	Password string `mapstructure:"password" yaml:"password"`
	Name     string `mapstructure:"name"     yaml:"name"`
	SSLMode  string `mapstructure:"sslmode"  yaml:"sslmode"`
}

// ConnectionString returns a lib/pq keyword/value DSN.
func (d DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// KafkaConfig holds report publishing settings.
type KafkaConfig struct {
	Enabled bool     `mapstructure:"enabled" yaml:"enabled"`
	Brokers []string `mapstructure:"brokers" yaml:"brokers"`
	Topic   string   `mapstructure:"topic"   yaml:"topic"`
}

// FeedConfig is one RSS feed to poll for headlines.
type FeedConfig struct {
	Name string `mapstructure:"name" yaml:"name"`
	URL  string `mapstructure:"url"  yaml:"url"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `mapstructure:"format" yaml:"format"` // "text" or "json"
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.newssentiment/config.yaml (home directory)
//  3. /etc/newssentiment/config.yaml (system)
//
// Environment variables override config file values.
// Format: NEWSSENTIMENT_<SECTION>_<KEY>, e.g., NEWSSENTIMENT_ANALYSIS_MAX_LAG
func Load() (*Config, error) {
	v := newViper()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".newssentiment"))
	v.AddConfigPath("/etc/newssentiment")

	// Read config file (not required to exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	return decode(v)
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	return decode(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	overrideFromEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the analysis cannot run with.
func (c *Config) Validate() error {
	if c.Analysis.TradingDays <= 0 {
		return fmt.Errorf("analysis.trading_days must be positive, got %d", c.Analysis.TradingDays)
	}
	if c.Analysis.ForwardDays < 0 || c.Analysis.MaxLag < 0 {
		return fmt.Errorf("analysis.forward_days and analysis.max_lag must not be negative")
	}
	if c.Sentiment.NegativeThreshold > c.Sentiment.PositiveThreshold {
		return fmt.Errorf("sentiment.negative_threshold (%v) exceeds positive_threshold (%v)",
			c.Sentiment.NegativeThreshold, c.Sentiment.PositiveThreshold)
	}
	switch c.Data.Source {
	case "yahoo", "csv":
	default:
		return fmt.Errorf("data.source must be yahoo or csv, got %q", c.Data.Source)
	}
	switch c.Cache.Backend {
	case "memory", "redis", "none":
	default:
		return fmt.Errorf("cache.backend must be memory, redis or none, got %q", c.Cache.Backend)
	}
	return nil
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	// Analysis defaults
	v.SetDefault("analysis.risk_free_rate", 0.02)
	v.SetDefault("analysis.trading_days", 252)
	v.SetDefault("analysis.benchmark_return", 0.001)
	v.SetDefault("analysis.forward_days", 5)
	v.SetDefault("analysis.max_lag", 5)
	v.SetDefault("analysis.correlation_threshold", 0.3)
	v.SetDefault("analysis.concurrency", 4)

	// Sentiment defaults
	v.SetDefault("sentiment.positive_threshold", 0.1)
	v.SetDefault("sentiment.negative_threshold", -0.1)

	// Data defaults
	v.SetDefault("data.news_file", "data/raw_analyst_ratings.csv")
	v.SetDefault("data.prices_dir", "data/prices")
	v.SetDefault("data.source", "yahoo")
	v.SetDefault("data.output_dir", "output")

	// Yahoo defaults
	v.SetDefault("yahoo.base_url", "https://query1.finance.yahoo.com")
	v.SetDefault("yahoo.requests_per_sec", 2.0)
	v.SetDefault("yahoo.timeout_sec", 15)

	// Cache defaults
	v.SetDefault("cache.backend", "memory")
	v.SetDefault("cache.ttl_sec", 3600)
	v.SetDefault("cache.redis_addr", "localhost:6379")
	v.SetDefault("cache.redis_db", 0)

	// Database defaults
	v.SetDefault("database.enabled", false)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.name", "news_sentiment")
	v.SetDefault("database.sslmode", "disable")

	// Kafka defaults
	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.topic", "sentiment-reports")

	v.SetDefault("feeds", []map[string]any{
		{"name": "Yahoo Finance", "url": "https://finance.yahoo.com/news/rssindex"},
		{"name": "MarketWatch", "url": "https://feeds.content.dowjones.io/public/rss/mw_topstories"},
		{"name": "CNBC", "url": "https://www.cnbc.com/id/100003114/device/rss/rss.html"},
	})

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// overrideFromEnv explicitly reads secrets from environment variables.
func overrideFromEnv(cfg *Config) {
	if pw := os.Getenv(EnvPrefix + "_DATABASE_PASSWORD"); pw != "" {
		cfg.Database.Password = pw
	}
	if pw := os.Getenv(EnvPrefix + "_CACHE_REDIS_PASSWORD"); pw != "" {
		cfg.Cache.RedisPassword = pw
	}
	if brokers := os.Getenv(EnvPrefix + "_KAFKA_BROKERS"); brokers != "" {
		cfg.Kafka.Brokers = strings.Split(brokers, ",")
	}
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
