package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/jafarshop/productvariant/internal/domain"
)

type Config struct {
	Port                 string
	Environment          string
	Database             DatabaseConfig
	Shopify              ShopifyConfig
	Redis                RedisConfig
	Metafields           MetafieldConfig
	CollectionRules      []domain.CollectionRule
	LogLevel             string
	AdminAPIKeyHash      string // ADMIN_API_KEY_HASH: bcrypt hash of the bearer key accepted on /v1
	ShopifyWebhookSecret string // SHOPIFY_WEBHOOK_SECRET: verify incoming Shopify webhooks (X-Shopify-Hmac-Sha256)
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type ShopifyConfig struct {
	ShopDomain  string
	AccessToken string
	APIVersion  string
	RateLimit   float64 // requests per second; <= 0 disables pacing
	Timeout     time.Duration
}

// RedisConfig is used for the metafield definition cache; empty URL disables the cache
type RedisConfig struct {
	URL           string
	DefinitionTTL time.Duration
}

// MetafieldConfig names where variant fields and the description live
type MetafieldConfig struct {
	Namespace            string
	Type                 string
	DescriptionNamespace string
	DescriptionKey       string
	SystemSourceKey      string
	SkipSystemSource     string // products whose system_source equals this are left alone on create
}

// DefaultCollectionRules is used when COLLECTION_RULES_FILE is not set
func DefaultCollectionRules() []domain.CollectionRule {
	return []domain.CollectionRule{
		{Handle: "engagement-rings", Fields: []string{"Group Name", "Style", "Metal", "Shape"}},
		{Handle: "wedding-rings", Fields: []string{"Group Name", "Style", "Metal"}},
	}
}

// Load reads the full configuration and requires the Shopify credentials
func Load() (*Config, error) {
	cfg, err := load()
	if err != nil {
		return nil, err
	}

	// Validate required fields
	if cfg.Shopify.ShopDomain == "" {
		return nil, fmt.Errorf("SHOPIFY_SHOP_DOMAIN is required")
	}
	if cfg.Shopify.AccessToken == "" {
		return nil, fmt.Errorf("SHOPIFY_ACCESS_TOKEN is required")
	}

	return cfg, nil
}

// LoadDatabase reads only what the migration tool needs
func LoadDatabase() (DatabaseConfig, error) {
	cfg, err := load()
	if err != nil {
		return DatabaseConfig{}, err
	}
	return cfg.Database, nil
}

func load() (*Config, error) {
	// Shared .env from the repo root works when run from cmd/<tool> too
	_ = godotenv.Load(".env")
	_ = godotenv.Load("../.env")

	viper.SetConfigType("env")
	viper.SetConfigName(".env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")

	// Set defaults
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("ENVIRONMENT", "development")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("LOG_LEVEL", "info")

	// Read from environment variables
	viper.AutomaticEnv()

	// Try to read .env file (optional)
	if err := viper.ReadInConfig(); err != nil {
		// It's okay if .env doesn't exist, we'll use env vars
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	rateLimit, err := strconv.ParseFloat(getEnvOrViper("SHOPIFY_RATE_LIMIT", "4"), 64)
	if err != nil {
		return nil, fmt.Errorf("SHOPIFY_RATE_LIMIT must be a number: %w", err)
	}
	timeout, err := time.ParseDuration(getEnvOrViper("SHOPIFY_TIMEOUT", "30s"))
	if err != nil {
		return nil, fmt.Errorf("SHOPIFY_TIMEOUT must be a duration: %w", err)
	}
	definitionTTL, err := time.ParseDuration(getEnvOrViper("DEFINITION_CACHE_TTL", "5m"))
	if err != nil {
		return nil, fmt.Errorf("DEFINITION_CACHE_TTL must be a duration: %w", err)
	}

	cfg := &Config{
		Port:        getEnvOrViper("PORT", "8080"),
		Environment: getEnvOrViper("ENVIRONMENT", "development"),
		Database: DatabaseConfig{
			Host:     getEnvOrViper("DB_HOST", "localhost"),
			Port:     getEnvOrViper("DB_PORT", "5432"),
			User:     getEnvOrViper("DB_USER", "postgres"),
			Password: getEnvOrViper("DB_PASSWORD", "postgres"),
			DBName:   getEnvOrViper("DB_NAME", "productvariant"),
			SSLMode:  getEnvOrViper("DB_SSLMODE", "disable"),
		},
		Shopify: ShopifyConfig{
			ShopDomain:  strings.TrimSpace(getEnvOrViper("SHOPIFY_SHOP_DOMAIN", "")),
			AccessToken: strings.TrimSpace(getEnvOrViper("SHOPIFY_ACCESS_TOKEN", "")),
			APIVersion:  getEnvOrViper("SHOPIFY_API_VERSION", "2025-01"),
			RateLimit:   rateLimit,
			Timeout:     timeout,
		},
		Redis: RedisConfig{
			URL:           strings.TrimSpace(getEnvOrViper("REDIS_URL", "")),
			DefinitionTTL: definitionTTL,
		},
		Metafields: MetafieldConfig{
			Namespace:            getEnvOrViper("METAFIELD_NAMESPACE", "custom"),
			Type:                 getEnvOrViper("METAFIELD_TYPE", "single_line_text_field"),
			DescriptionNamespace: getEnvOrViper("DESCRIPTION_NAMESPACE", "productdata"),
			DescriptionKey:       getEnvOrViper("DESCRIPTION_KEY", "product_description"),
			SystemSourceKey:      getEnvOrViper("SYSTEM_SOURCE_KEY", "system_source"),
			SkipSystemSource:     getEnvOrViper("SKIP_SYSTEM_SOURCE", "node-admin"),
		},
		CollectionRules:      DefaultCollectionRules(),
		LogLevel:             getEnvOrViper("LOG_LEVEL", "info"),
		AdminAPIKeyHash:      strings.TrimSpace(getEnvOrViper("ADMIN_API_KEY_HASH", "")),
		ShopifyWebhookSecret: strings.TrimSpace(getEnvOrViper("SHOPIFY_WEBHOOK_SECRET", "")),
	}

	if rulesFile := strings.TrimSpace(getEnvOrViper("COLLECTION_RULES_FILE", "")); rulesFile != "" {
		rules, err := LoadCollectionRules(rulesFile)
		if err != nil {
			return nil, err
		}
		cfg.CollectionRules = rules
	}

	return cfg, nil
}

func getEnvOrViper(key, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	if viper.IsSet(key) {
		return viper.GetString(key)
	}
	return defaultValue
}
