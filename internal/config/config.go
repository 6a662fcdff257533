package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	AppMode     string
	Port        string
	Database    DatabaseConfig
	JWT         JWTConfig
	Cookie      CookieConfig
	MercadoPago MercadoPagoConfig
	Pix         PixConfig
	Billing     BillingConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

// JWTConfig holds JWT configuration (for Phase 2)
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

// MercadoPagoConfig holds payment gateway configuration
type MercadoPagoConfig struct {
	AccessToken string
	WebhookURL  string
}

// PixConfig holds static PIX payee defaults (seeded into app settings)
type PixConfig struct {
	Key       string
	PayeeName string
	PayeeCity string
}

// BillingConfig holds default billing amounts (seeded into app settings)
type BillingConfig struct {
	MonthlyFee     float64
	YellowCardFine float64
	RedCardFine    float64
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

	// Build config based on APP_MODE
	config := &Config{
		AppMode:     appMode,
		Port:        getEnv("PORT", "3000"),
		Database:    loadDatabaseConfig(appMode),
		JWT:         loadJWTConfig(appMode),
		Cookie:      loadCookieConfig(appMode),
		MercadoPago: loadMercadoPagoConfig(appMode),
		Pix:         loadPixConfig(),
		Billing:     loadBillingConfig(),
	}

	// Set global config
	AppConfig = config

	log.Printf("✅ Configuration loaded successfully [MODE: %s]", appMode)
	return config, nil
}

// loadDatabaseConfig loads database config based on mode
func loadDatabaseConfig(mode string) DatabaseConfig {
	prefix := "DEV_"
	if mode == "prod" {
		prefix = "PROD_"
	}

	return DatabaseConfig{
		Host:     getEnv(prefix+"DB_HOST", "localhost"),
		Port:     getEnv(prefix+"DB_PORT", "3306"),
		User:     getEnv(prefix+"DB_USER", "root"),
		Password: getEnv(prefix+"DB_PASS", ""),
		DBName:   getEnv(prefix+"DB_NAME", "afps"),
	}
}

// loadMercadoPagoConfig loads payment gateway config based on mode
func loadMercadoPagoConfig(mode string) MercadoPagoConfig {
	prefix := "DEV_"
	if mode == "prod" {
		prefix = "PROD_"
	}

	return MercadoPagoConfig{
		AccessToken: getEnv(prefix+"MP_ACCESS_TOKEN", ""),
		WebhookURL:  getEnv(prefix+"MP_WEBHOOK_URL", ""),
	}
}

// loadPixConfig loads static PIX payee defaults
func loadPixConfig() PixConfig {
	return PixConfig{
		Key:       getEnv("PIX_KEY", ""),
		PayeeName: getEnv("PIX_PAYEE_NAME", "AFPS"),
		PayeeCity: getEnv("PIX_PAYEE_CITY", "SAO PAULO"),
	}
}

// loadBillingConfig loads default billing amounts
func loadBillingConfig() BillingConfig {
	monthlyFee := getEnvFloat("MONTHLY_FEE_AMOUNT", 50.0)
	yellowFine := getEnvFloat("YELLOW_CARD_FINE_AMOUNT", 10.0)
	redFine := getEnvFloat("RED_CARD_FINE_AMOUNT", 25.0)

	return BillingConfig{
		MonthlyFee:     monthlyFee,
		YellowCardFine: yellowFine,
		RedCardFine:    redFine,
	}
}

// getEnvFloat gets a float environment variable with default value
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// loadJWTConfig loads JWT config based on mode
func loadJWTConfig(mode string) JWTConfig {
	prefix := "DEV_"
	if mode == "prod" {
		prefix = "PROD_"
	}

	accessMins, _ := strconv.Atoi(getEnv("ACCESS_TOKEN_MINUTES", "15"))
	refreshDays, _ := strconv.Atoi(getEnv("REFRESH_TOKEN_DAYS", "7"))

	return JWTConfig{
		Secret:           getEnv(prefix+"JWT_SECRET", "default_secret"),
		RefreshSecret:    getEnv(prefix+"JWT_REFRESH_SECRET", "default_refresh_secret"),
		AccessTokenMins:  accessMins,
		RefreshTokenDays: refreshDays,
	}
}

// loadCookieConfig loads cookie config based on mode
func loadCookieConfig(mode string) CookieConfig {
	prefix := "DEV_"
	if mode == "prod" {
		prefix = "PROD_"
	}

	secure, _ := strconv.ParseBool(getEnv(prefix+"COOKIE_SECURE", "false"))

	return CookieConfig{
		Secure:   secure,
		SameSite: getEnv("COOKIE_SAMESITE", "lax"),
		Domain:   getEnv("COOKIE_DOMAIN", ""),
	}
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
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
		// Default production origins
		return "https://afps.com.br"
	}
	return origins
}
