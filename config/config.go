package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Redis    RedisConfig
	App      AppConfig
}

type ServerConfig struct {
	Port           string
	FrontendOrigin string
}

type DatabaseConfig struct {
	DSN      string
	MaxConns int
	MinConns int
}

type AuthConfig struct {
	JWTSecret   string
	TokenTTLHrs int
	LoginPerMin int
	LoginBurst  int
}

type RedisConfig struct {
	Addr             string
	LeaderboardTTLMS int
}

type AppConfig struct {
	Environment string
	Version     string
	CronEnabled bool
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:           getEnv("PORT", "8080"),
			FrontendOrigin: getEnv("FRONTEND_ORIGIN", "http://localhost:3000"),
		},
		Database: DatabaseConfig{
			DSN:      getEnv("DB_DSN", ""),
			MaxConns: getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns: getEnvAsInt("DB_MIN_CONNS", 2),
		},
		Auth: AuthConfig{
			JWTSecret:   getEnv("JWT_SECRET", "dev-secret-change-me"),
			TokenTTLHrs: getEnvAsInt("JWT_TTL_HOURS", 8),
			LoginPerMin: getEnvAsInt("LOGIN_RATE_PER_MIN", 10),
			LoginBurst:  getEnvAsInt("LOGIN_RATE_BURST", 5),
		},
		Redis: RedisConfig{
			Addr:             getEnv("REDIS_ADDR", ""),
			LeaderboardTTLMS: getEnvAsInt("LEADERBOARD_CACHE_TTL_MS", 30000),
		},
		App: AppConfig{
			Environment: getEnv("APP_ENV", "development"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
			CronEnabled: getEnv("CRON_ENABLED", "false") == "true",
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	if c.Database.DSN == "" {
		return fmt.Errorf("DB_DSN is required")
	}

	if c.App.Environment == "production" && c.Auth.JWTSecret == "dev-secret-change-me" {
		return fmt.Errorf("JWT_SECRET must be set in production")
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer for %s, using default: %d", key, defaultValue)
		return defaultValue
	}

	return value
}
