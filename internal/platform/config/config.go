package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// CreditPolicyConfig holds the tier defaults and caps used when bootstrapping
// a credit profile. Values are percentages (0-100) and currency amounts.
type CreditPolicyConfig struct {
	NewTierPercentage         float64
	EstablishedTierPercentage float64
	PremiumTierPercentage     float64
	DefaultMaxCreditAmount    float64
	AbsoluteCreditCeiling     float64
}

// Config holds application configuration.
type Config struct {
	DatabaseURL       string
	Port              string
	IsProduction      bool
	EnableDBCheck     bool
	JWTSecret         string
	JWTExpiryDuration time.Duration
	JWTIssuer         string

	CreditPolicy CreditPolicyConfig
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	viper.SetDefault("JWT_EXPIRY_DURATION", "1h")
	viper.SetDefault("JWT_ISSUER", "dairy-credit-app")

	// Credit policy defaults. Percentages are the share of unpaid collections
	// usable as credit per tier; amounts are in currency units.
	viper.SetDefault("CREDIT_NEW_TIER_PERCENTAGE", 30.0)
	viper.SetDefault("CREDIT_ESTABLISHED_TIER_PERCENTAGE", 50.0)
	viper.SetDefault("CREDIT_PREMIUM_TIER_PERCENTAGE", 70.0)
	viper.SetDefault("CREDIT_DEFAULT_MAX_AMOUNT", 50000.0)
	viper.SetDefault("CREDIT_ABSOLUTE_CEILING", 250000.0)

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	if cfg.Port == "" {
		cfg.Port = "8080"
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}

	jwtSecret := viper.GetString("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = "a-very-secret-key-should-be-longer-and-random" // !! CHANGE IN PRODUCTION !!
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}

	jwtExpiryStr := viper.GetString("JWT_EXPIRY_DURATION")
	jwtExpiryDuration, err := time.ParseDuration(jwtExpiryStr)
	if err != nil {
		jwtExpiryDuration = time.Hour * 1
		if jwtExpiryStr != "" {
			log.Printf("Warning: Invalid value for JWT_EXPIRY_DURATION ('%s'). Defaulting to %s.\n", jwtExpiryStr, jwtExpiryDuration.String())
		}
	}

	jwtIssuer := viper.GetString("JWT_ISSUER")
	if jwtIssuer == "" {
		jwtIssuer = "dairy-credit-app"
		log.Printf("Warning: JWT_ISSUER not set. Defaulting to %s.\n", jwtIssuer)
	}

	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.EnableDBCheck = viper.GetBool("ENABLE_DB_CHECK")
	cfg.JWTSecret = jwtSecret
	cfg.JWTExpiryDuration = jwtExpiryDuration
	cfg.JWTIssuer = jwtIssuer

	cfg.CreditPolicy = CreditPolicyConfig{
		NewTierPercentage:         viper.GetFloat64("CREDIT_NEW_TIER_PERCENTAGE"),
		EstablishedTierPercentage: viper.GetFloat64("CREDIT_ESTABLISHED_TIER_PERCENTAGE"),
		PremiumTierPercentage:     viper.GetFloat64("CREDIT_PREMIUM_TIER_PERCENTAGE"),
		DefaultMaxCreditAmount:    viper.GetFloat64("CREDIT_DEFAULT_MAX_AMOUNT"),
		AbsoluteCreditCeiling:     viper.GetFloat64("CREDIT_ABSOLUTE_CEILING"),
	}

	return cfg, nil
}
