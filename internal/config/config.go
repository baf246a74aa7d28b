package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration
type Config struct {
	Port        int
	LogLevel    string
	LogFormat   string
	LogDir      string
	ServiceName string
	Version     string
	Environment string

	DBUser     string
	DBPassword string
	DBHost     string
	DBPort     string
	DBName     string

	APIKey string // API key for authentication

	// Discord role collaborator
	DiscordToken   string
	DiscordGuildID string

	// Shop tuning
	FeaturedSlots    int           // items in the global featured rotation
	DailySlots       int           // items in each user's personalized daily selection
	OutboxInterval   time.Duration // role side-effect dispatch cadence
	OutboxBatchSize  int
	OutboxMaxRetries int
}

// Load loads the configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists, but don't fail if it doesn't (could be real env vars)
	_ = godotenv.Load()

	cfg := &Config{
		LogLevel:    getEnv("LOG_LEVEL", "INFO"),
		LogFormat:   getEnv("LOG_FORMAT", "json"),
		LogDir:      getEnv("LOG_DIR", "logs"),
		ServiceName: getEnv("SERVICE_NAME", "guildshop"),
		Version:     getEnv("SERVICE_VERSION", "dev"),
		Environment: getEnv("ENVIRONMENT", "dev"),
		DBUser:      getEnv("DB_USER", "postgres"),
		DBPassword:  getEnv("DB_PASSWORD", "postgres"),
		DBHost:      getEnv("DB_HOST", "localhost"),
		DBPort:      getEnv("DB_PORT", "5432"),
		DBName:      getEnv("DB_NAME", "guildshop"),
		APIKey:      getEnv("API_KEY", ""),

		DiscordToken:   getEnv("DISCORD_TOKEN", ""),
		DiscordGuildID: getEnv("DISCORD_GUILD_ID", ""),
	}

	port, err := getEnvInt("PORT", 8080)
	if err != nil {
		return nil, err
	}
	cfg.Port = port

	if cfg.FeaturedSlots, err = getEnvInt("SHOP_FEATURED_SLOTS", 4); err != nil {
		return nil, err
	}
	if cfg.DailySlots, err = getEnvInt("SHOP_DAILY_SLOTS", 6); err != nil {
		return nil, err
	}
	if cfg.OutboxBatchSize, err = getEnvInt("OUTBOX_BATCH_SIZE", 25); err != nil {
		return nil, err
	}
	if cfg.OutboxMaxRetries, err = getEnvInt("OUTBOX_MAX_RETRIES", 5); err != nil {
		return nil, err
	}

	intervalSec, err := getEnvInt("OUTBOX_INTERVAL_SECONDS", 5)
	if err != nil {
		return nil, err
	}
	cfg.OutboxInterval = time.Duration(intervalSec) * time.Second

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

// getEnvInt retrieves an integer environment variable or returns a default value
func getEnvInt(key string, defaultValue int) (int, error) {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value: %w", key, err)
	}
	return n, nil
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
