// Package config loads the service configuration from the environment, with
// an optional .env file for local development.
package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig is everything the server needs to start.
type AppConfig struct {
	HTTPAddr string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	KeyPrefix     string

	// JWTSecret enables the bearer-token middleware when non-empty. The API
	// runs open otherwise, matching deployments that terminate auth upstream.
	JWTSecret string

	SMTPHost string
	SMTPPort string
	SMTPUser string
	SMTPPass string
	SMTPFrom string

	TOTPIssuer string

	ResetTokenTTL  time.Duration
	RequestTimeout time.Duration

	CORSOrigins []string
}

// Load reads the environment. Missing keys fall back to development
// defaults; nothing here is fatal.
func Load() AppConfig {
	if err := godotenv.Load(); err != nil {
		log.Println("securevault: no .env file found, relying on system env vars")
	}

	return AppConfig{
		HTTPAddr:       getEnv("HTTP_ADDR", ":5000"),
		RedisAddr:      getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:  getEnv("REDIS_PASSWORD", ""),
		RedisDB:        getEnvInt("REDIS_DB", 0),
		KeyPrefix:      getEnv("KEY_PREFIX", "sv"),
		JWTSecret:      getEnv("AUTH_JWT_SECRET", ""),
		SMTPHost:       getEnv("SMTP_HOST", ""),
		SMTPPort:       getEnv("SMTP_PORT", "465"),
		SMTPUser:       getEnv("SMTP_USER", ""),
		SMTPPass:       getEnv("SMTP_PASS", ""),
		SMTPFrom:       getEnv("SMTP_FROM", ""),
		TOTPIssuer:     getEnv("TOTP_ISSUER", "SecureVault"),
		ResetTokenTTL:  getEnvDuration("RESET_TOKEN_TTL", 10*time.Minute),
		RequestTimeout: getEnvDuration("REQUEST_TIMEOUT", 10*time.Second),
		CORSOrigins:    []string{getEnv("CORS_ORIGIN", "*")},
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("securevault: invalid %s=%q, using %d", key, v, fallback)
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("securevault: invalid %s=%q, using %s", key, v, fallback)
		return fallback
	}
	return d
}
