// Package config loads application configuration from environment
// variables, optionally seeded from .env files.
package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all runtime configuration values.  Each field maps to an
// environment variable; nested structs group the optional subsystems.
type Config struct {
	Env          string `env:"APP_ENV" envDefault:"dev"`
	Port         string `env:"APP_PORT" envDefault:"8080"`
	JWTSecret    string `env:"JWT_SECRET,required,notEmpty"`
	AccessTTLMin int    `env:"ACCESS_TOKEN_TTL_MIN" envDefault:"60"`

	// PlanStore selects where session plans live: "mysql" or "memory".
	PlanStore string `env:"PLAN_STORE" envDefault:"mysql"`

	DB        DatabaseConfig
	Log       LogConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	Cache     CacheConfig
	Queue     QueueConfig
}

// DatabaseConfig holds the MySQL connection settings.
type DatabaseConfig struct {
	User string `env:"DB_USER" envDefault:"root"`
	Pass string `env:"DB_PASS"`
	Host string `env:"DB_HOST" envDefault:"127.0.0.1"`
	Port string `env:"DB_PORT" envDefault:"3306"`
	Name string `env:"DB_NAME" envDefault:"seating"`
}

// QueueConfig holds the RabbitMQ settings.  An empty URL disables
// event publishing.
type QueueConfig struct {
	URL     string `env:"RABBITMQ_URL"`
	LogPath string `env:"SEATING_LOG_PATH" envDefault:"logs/seating.log"`
}

// Load reads the given .env files (missing files are skipped) and then
// parses the environment into a Config.
func Load(envFiles ...string) (Config, error) {
	if err := loadEnvFiles(envFiles); err != nil {
		return Config{}, err
	}
	var c Config
	if err := env.Parse(&c); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if c.PlanStore != "mysql" && c.PlanStore != "memory" {
		return Config{}, fmt.Errorf("PLAN_STORE must be mysql or memory, got %q", c.PlanStore)
	}
	c.RateLimit.normalize()
	c.Cache.normalize()
	return c, nil
}

func loadEnvFiles(files []string) error {
	existing := make([]string, 0, len(files))
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("load env files: %w", err)
	}
	return nil
}
