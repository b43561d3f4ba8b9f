package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/Dosada05/swiss-tournament/db"
	"github.com/Dosada05/swiss-tournament/storage"
)

const defaultStandingsCacheTTL = 10 * time.Minute

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	DatabaseDriver string
	DatabaseURL    string
	JWTSecretKey   string
	ServerPort     int

	AdminUsername     string
	AdminPasswordHash string

	AllowedOrigins []string

	// Пустой RedisURL отключает кеш таблицы.
	RedisURL          string
	StandingsCacheTTL time.Duration

	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2PublicBaseURL   string
}

// Load загружает конфигурацию из переменных окружения.
// Опционально подгружает .env файл (полезно для локальной разработки).
func Load() (*Config, error) {
	// Загружаем .env файл, если он есть. Ошибку не считаем фатальной.
	_ = godotenv.Load()

	cfg := &Config{
		DatabaseDriver:    getEnvOrDefault("DATABASE_DRIVER", db.DriverPostgres),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		JWTSecretKey:      os.Getenv("JWT_SECRET_KEY"),
		AdminUsername:     getEnvOrDefault("ADMIN_USERNAME", "organizer"),
		AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
		AllowedOrigins:    splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
		RedisURL:          os.Getenv("REDIS_URL"),
		R2AccountID:       os.Getenv("R2_ACCOUNT_ID"),
		R2AccessKeyID:     os.Getenv("R2_ACCESS_KEY_ID"),
		R2SecretAccessKey: os.Getenv("R2_SECRET_ACCESS_KEY"),
		R2BucketName:      os.Getenv("R2_BUCKET_NAME"),
		R2PublicBaseURL:   os.Getenv("R2_PUBLIC_BASE_URL"),
	}

	switch cfg.DatabaseDriver {
	case db.DriverPostgres, db.DriverSQLite:
	default:
		return nil, fmt.Errorf("DATABASE_DRIVER must be %q or %q, got %q", db.DriverPostgres, db.DriverSQLite, cfg.DatabaseDriver)
	}

	portStr := getEnvOrDefault("SERVER_PORT", "8080") // Порт по умолчанию
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT environment variable: %w", err)
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}
	cfg.ServerPort = port

	cfg.StandingsCacheTTL = defaultStandingsCacheTTL
	if ttlStr := os.Getenv("STANDINGS_CACHE_TTL"); ttlStr != "" {
		ttl, err := time.ParseDuration(ttlStr)
		if err != nil {
			return nil, fmt.Errorf("invalid STANDINGS_CACHE_TTL environment variable: %w", err)
		}
		if ttl <= 0 {
			return nil, fmt.Errorf("STANDINGS_CACHE_TTL must be positive, got %s", ttl)
		}
		cfg.StandingsCacheTTL = ttl
	}

	return cfg, nil
}

// ValidateServer проверяет параметры, без которых HTTP-сервер не стартует.
// CLI-команды работают и без них.
func (c *Config) ValidateServer() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable is not set")
	}
	if c.JWTSecretKey == "" {
		return fmt.Errorf("JWT_SECRET_KEY environment variable is not set")
	}
	if c.AdminPasswordHash == "" {
		return fmt.Errorf("ADMIN_PASSWORD_HASH environment variable is not set")
	}
	return nil
}

func (c *Config) R2() storage.R2Config {
	return storage.R2Config{
		AccountID:       c.R2AccountID,
		AccessKeyID:     c.R2AccessKeyID,
		SecretAccessKey: c.R2SecretAccessKey,
		BucketName:      c.R2BucketName,
		PublicBaseURL:   c.R2PublicBaseURL,
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
