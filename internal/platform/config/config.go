package config

import (
	"fmt"
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Storage backends selectable through STORAGE_BACKEND.
const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

// Config holds application configuration.
type Config struct {
	Port           string
	IsProduction   bool
	StorageBackend string

	DatabaseURL    string
	EnableDBCheck  bool
	RunMigrations  bool
	MigrationsPath string

	// Events go to Kafka when brokers are set and to the log otherwise.
	KafkaBrokers []string
	KafkaTopic   string

	RateLimit          string // ulule/limiter formatted rate, empty disables
	CORSAllowedOrigins []string
	DefaultPageSize    int
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("STORAGE_BACKEND", StorageMemory)
	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("RUN_MIGRATIONS", true)
	viper.SetDefault("MIGRATIONS_PATH", "file://migrations")
	viper.SetDefault("KAFKA_BROKERS", "")
	viper.SetDefault("KAFKA_TOPIC", "ledger_events")
	viper.SetDefault("RATE_LIMIT", "")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	viper.SetDefault("DEFAULT_PAGE_SIZE", 20)

	// Environment variables override defaults and .env values.
	viper.AutomaticEnv()

	cfg := &Config{
		Port:               viper.GetString("PORT"),
		IsProduction:       viper.GetBool("IS_PRODUCTION"),
		StorageBackend:     strings.ToLower(strings.TrimSpace(viper.GetString("STORAGE_BACKEND"))),
		DatabaseURL:        viper.GetString("PGSQL_URL"),
		EnableDBCheck:      viper.GetBool("ENABLE_DB_CHECK"),
		RunMigrations:      viper.GetBool("RUN_MIGRATIONS"),
		MigrationsPath:     viper.GetString("MIGRATIONS_PATH"),
		KafkaBrokers:       splitList(viper.GetString("KAFKA_BROKERS")),
		KafkaTopic:         viper.GetString("KAFKA_TOPIC"),
		RateLimit:          strings.TrimSpace(viper.GetString("RATE_LIMIT")),
		CORSAllowedOrigins: splitList(viper.GetString("CORS_ALLOWED_ORIGINS")),
		DefaultPageSize:    viper.GetInt("DEFAULT_PAGE_SIZE"),
	}

	if cfg.Port == "" {
		cfg.Port = "8080"
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}

	switch cfg.StorageBackend {
	case StorageMemory:
	case StoragePostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("PGSQL_URL is required when STORAGE_BACKEND is %q", StoragePostgres)
		}
	default:
		return nil, fmt.Errorf("unsupported STORAGE_BACKEND %q", cfg.StorageBackend)
	}

	if cfg.DefaultPageSize <= 0 {
		log.Printf("Warning: invalid DEFAULT_PAGE_SIZE (%d). Defaulting to 20.\n", cfg.DefaultPageSize)
		cfg.DefaultPageSize = 20
	}

	return cfg, nil
}

// splitList splits a comma separated value, dropping blanks.
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
