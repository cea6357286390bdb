package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

var AppEnv Config

type Config struct {
	MongoURI       string
	DBName         string
	JWTSecret      string
	AccessTokenTTL time.Duration

	Port        string
	CORSOrigins []string

	// Bootstrap admin account, created at startup when both are set.
	AdminEmail    string
	AdminPassword string

	UploadsRoot string

	// Quote document parameters.
	Currency         string
	QuoteVATRate     float64
	QuoteDeliveryFee float64
}

func Load() {
	if err := godotenv.Load(); err != nil {
		log.Println(".env not loaded:", err)
	}
	AppEnv = Config{
		MongoURI:         getEnvOrDefault("MONGO_URI", ""),
		DBName:           getEnvOrDefault("DB_NAME", "embalini"),
		JWTSecret:        getEnvOrDefault("JWT_SECRET", ""),
		AccessTokenTTL:   getDurationEnv("ACCESS_TOKEN_TTL", 60, time.Minute),
		Port:             getEnvOrDefault("PORT", "8080"),
		CORSOrigins:      getListEnv("CORS_ORIGINS", []string{"http://localhost:3000"}),
		AdminEmail:       getEnvOrDefault("ADMIN_EMAIL", ""),
		AdminPassword:    getEnvOrDefault("ADMIN_PASSWORD", ""),
		UploadsRoot:      getEnvOrDefault("UPLOADS_ROOT", "/app/public"),
		Currency:         getEnvOrDefault("CURRENCY", "TND"),
		QuoteVATRate:     getFloatEnv("QUOTE_VAT_RATE", 0.19),
		QuoteDeliveryFee: getFloatEnv("QUOTE_DELIVERY_FEE", 8),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue int, unit time.Duration) time.Duration {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			return time.Duration(parsed) * unit
		}
	}
	return time.Duration(defaultValue) * unit
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil && parsed >= 0 {
			return parsed
		}
	}
	return defaultValue
}

func getListEnv(key string, defaultValue []string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue
	}
	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			values = append(values, trimmed)
		}
	}
	if len(values) == 0 {
		return defaultValue
	}
	return values
}
