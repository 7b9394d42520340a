// internal/config/config.go

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Environment string
	LogLevel    string
	LogFormat   string
	Server      ServerConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	NATS        NATSConfig
	Twitter     TwitterConfig
	News        NewsConfig
	Aggregate   AggregateConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	CorsOrigins     []string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Database     string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
	SSLMode      string
}

// RedisConfig holds the stream tracker's Redis configuration
type RedisConfig struct {
	URL       string
	KeyPrefix string
}

// NATSConfig holds NATS configuration
type NATSConfig struct {
	URL            string
	MaxReconnects  int
	ReconnectWait  time.Duration
	ConnectTimeout time.Duration
	IngestSubject  string
}

// TwitterConfig holds Twitter API configuration
type TwitterConfig struct {
	BearerToken string
	TrendsWOEID int
}

// NewsConfig holds news feed configuration
type NewsConfig struct {
	BaseURL  string
	Language string
	Country  string
}

// AggregateConfig holds trend aggregation configuration
type AggregateConfig struct {
	MaxTweetsPerTrend    int
	MaxKeywordsPerTrend  int
	MaxArticlesPerTrend  int
	CycleInterval        time.Duration
	FetchTimeout         time.Duration
	MaxConcurrentUpdates int
	EventsTopic          string
}

// Load loads configuration from environment variables
func Load() (Config, error) {
	config := Config{
		Environment: getEnv("APP_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFormat:   getEnv("LOG_FORMAT", "text"),
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getEnvAsInt("SERVER_PORT", 8080),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 10*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
			CorsOrigins:     getEnvAsSlice("SERVER_CORS_ORIGINS", []string{"*"}),
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnvAsInt("DB_PORT", 5432),
			User:         getEnv("DB_USER", "postgres"),
			Password:     getEnv("DB_PASSWORD", "postgres"),
			Database:     getEnv("DB_NAME", "trendwatch"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 25),
			MaxLifetime:  getEnvAsDuration("DB_MAX_LIFETIME", 5*time.Minute),
			SSLMode:      getEnv("DB_SSL_MODE", "disable"),
		},
		Redis: RedisConfig{
			URL:       getEnv("REDIS_URL", "redis://localhost:6379"),
			KeyPrefix: getEnv("REDIS_KEY_PREFIX", "tracker"),
		},
		NATS: NATSConfig{
			URL:            getEnv("NATS_URL", "nats://localhost:4222"),
			MaxReconnects:  getEnvAsInt("NATS_MAX_RECONNECTS", 10),
			ReconnectWait:  getEnvAsDuration("NATS_RECONNECT_WAIT", 1*time.Second),
			ConnectTimeout: getEnvAsDuration("NATS_CONNECT_TIMEOUT", 2*time.Second),
			IngestSubject:  getEnv("NATS_INGEST_SUBJECT", "ingest.tweets"),
		},
		Twitter: TwitterConfig{
			BearerToken: getEnv("TWITTER_BEARER_TOKEN", ""),
			TrendsWOEID: getEnvAsInt("TWITTER_TRENDS_WOEID", 1),
		},
		News: NewsConfig{
			BaseURL:  getEnv("NEWS_BASE_URL", "https://news.google.com"),
			Language: getEnv("NEWS_LANGUAGE", "en-US"),
			Country:  getEnv("NEWS_COUNTRY", "US"),
		},
		Aggregate: AggregateConfig{
			MaxTweetsPerTrend:    getEnvAsInt("AGGREGATE_MAX_TWEETS_PER_TREND", 10),
			MaxKeywordsPerTrend:  getEnvAsInt("AGGREGATE_MAX_KEYWORDS_PER_TREND", 10),
			MaxArticlesPerTrend:  getEnvAsInt("AGGREGATE_MAX_ARTICLES_PER_TREND", 5),
			CycleInterval:        getEnvAsDuration("AGGREGATE_CYCLE_INTERVAL", 5*time.Minute),
			FetchTimeout:         getEnvAsDuration("AGGREGATE_FETCH_TIMEOUT", 10*time.Second),
			MaxConcurrentUpdates: getEnvAsInt("AGGREGATE_MAX_CONCURRENT_UPDATES", 8),
			EventsTopic:          getEnv("AGGREGATE_EVENTS_TOPIC", "trend"),
		},
	}

	return config, validate(config)
}

// validate checks if config is valid
func validate(config Config) error {
	if config.Twitter.BearerToken == "" && config.Environment != "development" {
		return fmt.Errorf("twitter bearer token must be set in non-development environments")
	}

	if config.Aggregate.CycleInterval <= 0 {
		return fmt.Errorf("aggregate cycle interval must be positive")
	}

	if config.Aggregate.FetchTimeout <= 0 {
		return fmt.Errorf("aggregate fetch timeout must be positive")
	}

	if config.Aggregate.MaxConcurrentUpdates < 1 {
		return fmt.Errorf("aggregate max concurrent updates must be at least 1")
	}

	return nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	return strings.Split(valueStr, ",")
}
