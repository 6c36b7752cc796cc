package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration
type Config struct {
	Port        int
	LogLevel    string
	LogFormat   string
	Environment string
	Version     string
	APIKey      string // API key for authentication

	// TrustedProxies lists proxy IPs whose X-Forwarded-For headers are honored
	TrustedProxies []string

	DBUser     string
	DBPassword string
	DBHost     string
	DBPort     string
	DBName     string
	DBMaxConns int
	DBMinConns int

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// BroadcastChannelPrefix prefixes the per-stream Redis pub/sub channels
	BroadcastChannelPrefix string

	// SweepInterval controls how often the stale-battle sweeper runs
	SweepInterval time.Duration

	EventMaxRetries     int
	EventRetryDelay     time.Duration
	EventDeadLetterPath string
}

// Load loads the configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists, but don't fail if it doesn't (could be real env vars)
	_ = godotenv.Load()

	cfg := &Config{
		LogLevel:               getEnv("LOG_LEVEL", DefaultLogLevel),
		LogFormat:              getEnv("LOG_FORMAT", DefaultLogFormat),
		Environment:            getEnv("ENVIRONMENT", DefaultEnvironment),
		Version:                getEnv("VERSION", DefaultVersion),
		APIKey:                 getEnv("API_KEY", ""),
		DBUser:                 getEnv("DB_USER", DefaultDBUser),
		DBPassword:             getEnv("DB_PASSWORD", DefaultDBPassword),
		DBHost:                 getEnv("DB_HOST", DefaultDBHost),
		DBPort:                 getEnv("DB_PORT", DefaultDBPort),
		DBName:                 getEnv("DB_NAME", DefaultDBName),
		RedisAddr:              getEnv("REDIS_ADDR", DefaultRedisAddr),
		RedisPassword:          getEnv("REDIS_PASSWORD", ""),
		BroadcastChannelPrefix: getEnv("BROADCAST_CHANNEL_PREFIX", DefaultBroadcastChannelPrefix),
		TrustedProxies:         getEnvList("TRUSTED_PROXIES"),
	}

	port, err := getEnvInt("PORT", DefaultPort)
	if err != nil {
		return nil, fmt.Errorf("invalid PORT value: %w", err)
	}
	cfg.Port = port

	maxConns, err := getEnvInt("DB_MAX_CONNS", DefaultDBMaxConns)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_CONNS value: %w", err)
	}
	cfg.DBMaxConns = maxConns

	minConns, err := getEnvInt("DB_MIN_CONNS", DefaultDBMinConns)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MIN_CONNS value: %w", err)
	}
	cfg.DBMinConns = minConns

	redisDB, err := getEnvInt("REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB value: %w", err)
	}
	cfg.RedisDB = redisDB

	sweepSeconds, err := getEnvInt("SWEEP_INTERVAL_SECONDS", DefaultSweepIntervalSeconds)
	if err != nil {
		return nil, fmt.Errorf("invalid SWEEP_INTERVAL_SECONDS value: %w", err)
	}
	cfg.SweepInterval = time.Duration(sweepSeconds) * time.Second

	maxRetries, err := getEnvInt("EVENT_MAX_RETRIES", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid EVENT_MAX_RETRIES value: %w", err)
	}
	cfg.EventMaxRetries = maxRetries

	retryDelaySeconds, err := getEnvInt("EVENT_RETRY_DELAY_SECONDS", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid EVENT_RETRY_DELAY_SECONDS value: %w", err)
	}
	cfg.EventRetryDelay = time.Duration(retryDelaySeconds) * time.Second

	cfg.EventDeadLetterPath = getEnv("EVENT_DEAD_LETTER_PATH", "")

	// Validate API key is set
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API_KEY environment variable must be set for security")
	}

	return cfg, nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvList retrieves a comma-separated environment variable as a slice
func getEnvList(key string) []string {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// getEnvInt retrieves an integer environment variable or returns a default value
func getEnvInt(key string, defaultValue int) (int, error) {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue, nil
	}
	return strconv.Atoi(value)
}

// GetDBConnString returns the PostgreSQL connection string
func (c *Config) GetDBConnString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser,
		c.DBPassword,
		c.DBHost,
		c.DBPort,
		c.DBName,
	)
}
