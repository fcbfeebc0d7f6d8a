package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	AppMode      string
	Port         string
	Database     DatabaseConfig
	JWT          JWTConfig
	Cookie       CookieConfig
	Wallet       WalletConfig
	Outbox       OutboxConfig
	Seed         SeedConfig
	SerialNodeID int64
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Driver     string // mysql, postgres or sqlite
	Host       string
	Port       string
	User       string
	Password   string
	DBName     string
	SQLitePath string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	RefreshSecret    string
	AccessTokenMins  int
	RefreshTokenDays int
}

// CookieConfig holds cookie configuration
type CookieConfig struct {
	Secure   bool
	SameSite string
	Domain   string
}

// WalletConfig holds wallet card provider configuration
type WalletConfig struct {
	BaseURL   string
	APIID     string
	APIKey    string
	SMSSender string
	Timeout   time.Duration
	// CardLinkBase is encoded into every card QR code
	CardLinkBase string
}

// OutboxConfig controls card delivery retries
type OutboxConfig struct {
	Schedule    string
	MaxAttempts int
	BatchSize   int
}

// SeedConfig holds the development admin account
type SeedConfig struct {
	AdminEmail    string
	AdminPassword string
}

// Global config instance
var AppConfig *Config

// Load reads configuration from .env file and environment variables
func Load() (*Config, error) {
	// Load .env file (ignore error if file doesn't exist in production)
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	// Get APP_MODE (default to "dev") - trim spaces for Windows compatibility
	appMode := strings.TrimSpace(getEnv("APP_MODE", "dev"))
	if appMode != "dev" && appMode != "prod" {
		return nil, fmt.Errorf("invalid APP_MODE: '%s' (must be 'dev' or 'prod')", appMode)
	}

	database := loadDatabaseConfig(appMode)
	switch database.Driver {
	case "mysql", "postgres", "sqlite":
	default:
		return nil, fmt.Errorf("invalid DB_DRIVER: '%s' (must be 'mysql', 'postgres' or 'sqlite')", database.Driver)
	}

	config := &Config{
		AppMode:      appMode,
		Port:         getEnv("PORT", "3000"),
		Database:     database,
		JWT:          loadJWTConfig(appMode),
		Cookie:       loadCookieConfig(appMode),
		Wallet:       loadWalletConfig(),
		Outbox:       loadOutboxConfig(),
		Seed:         loadSeedConfig(),
		SerialNodeID: int64(getEnvInt("SERIAL_NODE_ID", 1)),
	}

	if config.IsProd() && config.JWT.Secret == defaultJWTSecret {
		return nil, fmt.Errorf("PROD_JWT_SECRET must be set in prod mode")
	}

	// Set global config
	AppConfig = config

	log.Printf("✅ Configuration loaded successfully [MODE: %s, DB: %s]", appMode, database.Driver)
	return config, nil
}

func modePrefix(mode string) string {
	if mode == "prod" {
		return "PROD_"
	}
	return "DEV_"
}

// loadDatabaseConfig loads database config based on mode
func loadDatabaseConfig(mode string) DatabaseConfig {
	prefix := modePrefix(mode)
	driver := strings.ToLower(strings.TrimSpace(getEnv("DB_DRIVER", "mysql")))

	defaultPort := "3306"
	if driver == "postgres" {
		defaultPort = "5432"
	}

	return DatabaseConfig{
		Driver:     driver,
		Host:       getEnv(prefix+"DB_HOST", "localhost"),
		Port:       getEnv(prefix+"DB_PORT", defaultPort),
		User:       getEnv(prefix+"DB_USER", "root"),
		Password:   getEnv(prefix+"DB_PASS", ""),
		DBName:     getEnv(prefix+"DB_NAME", "loyalwallet"),
		SQLitePath: getEnv("SQLITE_PATH", "loyalwallet.db"),
	}
}

const defaultJWTSecret = "default_secret"

// loadJWTConfig loads JWT config based on mode
func loadJWTConfig(mode string) JWTConfig {
	prefix := modePrefix(mode)

	return JWTConfig{
		Secret:           getEnv(prefix+"JWT_SECRET", defaultJWTSecret),
		RefreshSecret:    getEnv(prefix+"JWT_REFRESH_SECRET", "default_refresh_secret"),
		AccessTokenMins:  getEnvInt("ACCESS_TOKEN_MINUTES", 15),
		RefreshTokenDays: getEnvInt("REFRESH_TOKEN_DAYS", 7),
	}
}

// loadCookieConfig loads cookie config based on mode
func loadCookieConfig(mode string) CookieConfig {
	secure, _ := strconv.ParseBool(getEnv(modePrefix(mode)+"COOKIE_SECURE", "false"))

	return CookieConfig{
		Secure:   secure,
		SameSite: getEnv("COOKIE_SAMESITE", "lax"),
		Domain:   getEnv("COOKIE_DOMAIN", ""),
	}
}

// loadWalletConfig loads wallet provider settings
func loadWalletConfig() WalletConfig {
	baseURL := strings.TrimRight(getEnv("WALLET_BASE_URL", "https://api.osmicards.com/v2"), "/")

	return WalletConfig{
		BaseURL:      baseURL,
		APIID:        getEnv("WALLET_API_ID", ""),
		APIKey:       getEnv("WALLET_API_KEY", ""),
		SMSSender:    getEnv("WALLET_SMS_SENDER", "OSMICARDS"),
		Timeout:      time.Duration(getEnvInt("WALLET_TIMEOUT_SECONDS", 10)) * time.Second,
		CardLinkBase: strings.TrimRight(getEnv("CARD_LINK_BASE", baseURL), "/"),
	}
}

// loadOutboxConfig loads card outbox delivery settings
func loadOutboxConfig() OutboxConfig {
	return OutboxConfig{
		Schedule:    getEnv("OUTBOX_SCHEDULE", "@every 15s"),
		MaxAttempts: getEnvInt("OUTBOX_MAX_ATTEMPTS", 10),
		BatchSize:   getEnvInt("OUTBOX_BATCH_SIZE", 50),
	}
}

// loadSeedConfig loads the development admin account
func loadSeedConfig() SeedConfig {
	return SeedConfig{
		AdminEmail:    getEnv("SEED_ADMIN_EMAIL", "admin@loyalwallet.local"),
		AdminPassword: getEnv("SEED_ADMIN_PASSWORD", "admin123456"),
	}
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an integer environment variable, falling back on parse errors
func getEnvInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return value
}

// IsDev returns true if running in development mode
func (c *Config) IsDev() bool {
	return c.AppMode == "dev"
}

// IsProd returns true if running in production mode
func (c *Config) IsProd() bool {
	return c.AppMode == "prod"
}

// GetAllowedOrigins returns allowed origins for CORS
func (c *Config) GetAllowedOrigins() string {
	origins := getEnv("ALLOWED_ORIGINS", "")
	if origins == "" {
		if c.IsDev() {
			return "*"
		}
		return "https://app.loyalwallet.io"
	}
	return origins
}
