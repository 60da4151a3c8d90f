package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/simaogato/assetledger-backend/internal/adapter/pricesource"
	"github.com/simaogato/assetledger-backend/internal/domain"
	"github.com/simaogato/assetledger-backend/internal/scheduler"
)

// Config holds application configuration
type Config struct {
	DBDriver  string
	DBConnStr string
	GRPCAddr  string
	HTTPAddr  string
	APIToken  string
	LogLevel  string
	LogPretty bool

	Timezone        string
	Location        *time.Location
	BaseCurrency    string
	FallbackUSDRate decimal.Decimal

	PriceFetchHour   int
	PriceFetchMinute int
	PriceTimeout     time.Duration

	TwelveDataAPIKey   string
	AlphaVantageAPIKey string
	CoinGeckoAPIKey    string
	ExchangeRateAPIKey string
}

// Load reads configuration from environment variables.
// The given .env files are loaded first and must exist; without any, a
// .env in the working directory is loaded if present. Variables already set
// in the environment win over the files.
func Load(files ...string) (*Config, error) {
	if len(files) > 0 {
		if err := godotenv.Load(files...); err != nil {
			return nil, fmt.Errorf("failed to load env file: %w", err)
		}
	} else {
		_ = godotenv.Load()
	}

	cfg := &Config{
		DBDriver:           strings.ToLower(getEnv("DB_DRIVER", "postgres")),
		DBConnStr:          os.Getenv("DB_CONN_STR"),
		GRPCAddr:           getEnv("GRPC_ADDR", ":8080"),
		HTTPAddr:           getEnv("HTTP_ADDR", ":8081"),
		APIToken:           getEnv("API_TOKEN", "dev-token"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogPretty:          getEnvAsBool("LOG_PRETTY", false),
		Timezone:           getEnv("TIMEZONE", "Asia/Tokyo"),
		BaseCurrency:       strings.ToUpper(getEnv("BASE_CURRENCY", "JPY")),
		PriceFetchHour:     getEnvAsInt("PRICE_FETCH_HOUR", 0),
		PriceFetchMinute:   getEnvAsInt("PRICE_FETCH_MINUTE", 30),
		PriceTimeout:       getEnvAsDuration("PRICE_TIMEOUT", pricesource.DefaultTimeout),
		TwelveDataAPIKey:   os.Getenv("TWELVE_DATA_API_KEY"),
		AlphaVantageAPIKey: os.Getenv("ALPHA_VANTAGE_API_KEY"),
		CoinGeckoAPIKey:    os.Getenv("COINGECKO_API_KEY"),
		ExchangeRateAPIKey: os.Getenv("EXCHANGE_RATE_API_KEY"),
	}

	rate, err := decimal.NewFromString(getEnv("FALLBACK_USD_RATE", "150"))
	if err != nil {
		return nil, fmt.Errorf("invalid FALLBACK_USD_RATE: %w", err)
	}
	cfg.FallbackUSDRate = rate

	if cfg.DBConnStr == "" {
		cfg.DBConnStr = defaultConnStr(cfg.DBDriver)
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", cfg.Timezone, err)
	}
	cfg.Location = loc

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present and consistent
func (c *Config) Validate() error {
	switch c.DBDriver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if !domain.IsKnownCurrency(c.BaseCurrency) {
		return fmt.Errorf("unknown BASE_CURRENCY %q", c.BaseCurrency)
	}
	if !c.FallbackUSDRate.IsPositive() {
		return fmt.Errorf("FALLBACK_USD_RATE must be positive")
	}
	if c.PriceFetchHour < 0 || c.PriceFetchHour > 23 {
		return fmt.Errorf("PRICE_FETCH_HOUR must be between 0 and 23")
	}
	if c.PriceFetchMinute < 0 || c.PriceFetchMinute > 59 {
		return fmt.Errorf("PRICE_FETCH_MINUTE must be between 0 and 59")
	}
	if scheduler.ValuationCrossesMidnight(c.PriceFetchHour, c.PriceFetchMinute) {
		return fmt.Errorf("PRICE_FETCH_HOUR:PRICE_FETCH_MINUTE must be at least %s before midnight", scheduler.ValuationDelay)
	}
	return nil
}

// PriceSourceConfig derives the configuration of the external price sources
func (c *Config) PriceSourceConfig() pricesource.Config {
	return pricesource.Config{
		TwelveDataAPIKey:   c.TwelveDataAPIKey,
		AlphaVantageAPIKey: c.AlphaVantageAPIKey,
		CoinGeckoAPIKey:    c.CoinGeckoAPIKey,
		ExchangeRateAPIKey: c.ExchangeRateAPIKey,
		QuoteCurrency:      c.BaseCurrency,
		Timeout:            c.PriceTimeout,
		Location:           c.Location,
	}
}

// defaultConnStr builds the connection string from individual vars (Docker friendly)
func defaultConnStr(driver string) string {
	if driver == "sqlite" {
		return getEnv("DB_PATH", "assetledger.db")
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		getEnv("DB_HOST", "localhost"),
		getEnv("DB_PORT", "5432"),
		getEnv("DB_USER", "postgres"),
		getEnv("DB_PASSWORD", "postgres"),
		getEnv("DB_NAME", "assetledger"),
	)
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
