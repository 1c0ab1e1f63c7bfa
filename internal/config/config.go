package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port                    string
	DBUrl                   string
	JWTSecret               string
	AppEnv                  string
	StripeSecretKey         string
	StripeCurrency          string
	CheckoutDefaultOrigin   string
	SupabaseURL             string
	SupabaseBucket          string
	SupabaseServiceKey      string
	RecommendationRulesPath string
	RateLimitPerMinute      int
	AllowedOrigins          string
}

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	jwtSecret, exists := os.LookupEnv("JWT_SECRET")
	if !exists || jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return &Config{
		Port:                    getEnv("PORT", "8080"),
		DBUrl:                   getEnv("DB_URL", ""),
		JWTSecret:               jwtSecret,
		AppEnv:                  normalizeEnv(getEnv("APP_ENV", "production")),
		StripeSecretKey:         getEnv("STRIPE_SECRET_KEY", ""),
		StripeCurrency:          strings.ToLower(getEnv("STRIPE_CURRENCY", "vnd")),
		CheckoutDefaultOrigin:   strings.TrimRight(getEnv("CHECKOUT_DEFAULT_ORIGIN", "http://localhost:3000"), "/"),
		SupabaseURL:             getEnv("SUPABASE_URL", ""),
		SupabaseBucket:          getEnv("SUPABASE_BUCKET", ""),
		SupabaseServiceKey:      getEnv("SUPABASE_SERVICE_KEY", ""),
		RecommendationRulesPath: getEnv("RECOMMENDATION_RULES_PATH", ""),
		RateLimitPerMinute:      getEnvInt("RATE_LIMIT_PER_MINUTE", 120),
		AllowedOrigins:          getEnv("ALLOWED_ORIGINS", "*"),
	}, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(value) == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || parsed <= 0 {
		log.Printf("invalid %s=%q, using %d", key, value, fallback)
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return fallback
	}

	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func normalizeEnv(value string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "dev", "develop", "development", "local":
		return "development"
	case "prod", "production":
		return "production"
	case "stage", "staging":
		return "staging"
	case "test", "testing":
		return "test"
	default:
		return strings.ToLower(strings.TrimSpace(value))
	}
}

func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}

// CheckoutEnabled reports whether a payment provider key is configured.
func (c *Config) CheckoutEnabled() bool {
	return c != nil && c.StripeSecretKey != ""
}

func (c *Config) StorageEnabled() bool {
	return c != nil && c.SupabaseURL != "" && c.SupabaseBucket != "" && c.SupabaseServiceKey != ""
}

// StrictOriginCheck is on in production unless ALLOW_ANY_ORIGIN opts out.
func (c *Config) StrictOriginCheck() bool {
	return c.IsProduction() && !getEnvBool("ALLOW_ANY_ORIGIN", false)
}
