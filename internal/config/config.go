package config

import (
	"os"
	"strings"
	"time"
)

type Config struct {
	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// JWT
	JWTSecret        string
	JWTAccessExpiry  time.Duration
	JWTRefreshExpiry time.Duration

	// Classifier service
	PredictServiceURL string
	PredictTimeout    time.Duration
	PredictCacheTTL   time.Duration

	// Evidence store (Pinata)
	PinataAPIKey    string
	PinataAPISecret string
	PinataAPIURL    string
	UploadTimeout   time.Duration

	// IPFS gateway mirrors, in candidate preference order
	IPFSGateways []string

	// Server
	Port        string
	CORSOrigins string
}

// DefaultGateways is the fixed mirror preference order used when
// IPFS_GATEWAYS is not set. The pinning provider's own gateway comes first.
var DefaultGateways = []string{
	"https://gateway.pinata.cloud",
	"https://ipfs.io",
	"https://cloudflare-ipfs.com",
	"https://dweb.link",
}

func Load() *Config {
	return &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "marinewatch"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		JWTSecret:        getEnv("JWT_SECRET", ""),
		JWTAccessExpiry:  parseDuration(getEnv("JWT_ACCESS_EXPIRY", "24h")),
		JWTRefreshExpiry: parseDuration(getEnv("JWT_REFRESH_EXPIRY", "168h")),

		PredictServiceURL: getEnv("PREDICT_SERVICE_URL", "http://localhost:5001"),
		PredictTimeout:    parseDuration(getEnv("PREDICT_TIMEOUT", "30s")),
		PredictCacheTTL:   parseDuration(getEnv("PREDICT_CACHE_TTL", "1h")),

		PinataAPIKey:    getEnv("PINATA_API_KEY", ""),
		PinataAPISecret: getEnv("PINATA_SECRET_API_KEY", ""),
		PinataAPIURL:    getEnv("PINATA_API_URL", "https://api.pinata.cloud"),
		UploadTimeout:   parseDuration(getEnv("UPLOAD_TIMEOUT", "60s")),

		IPFSGateways: parseGateways(getEnv("IPFS_GATEWAYS", "")),

		Port:        getEnv("PORT", "5000"),
		CORSOrigins: getEnv("CORS_ORIGINS", "*"),
	}
}

func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseDuration(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

func parseGateways(s string) []string {
	if s == "" {
		return DefaultGateways
	}
	parts := strings.Split(s, ",")
	gateways := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimRight(strings.TrimSpace(p), "/")
		if trimmed != "" {
			gateways = append(gateways, trimmed)
		}
	}
	if len(gateways) == 0 {
		return DefaultGateways
	}
	return gateways
}
