package config

import (
	"fmt"
	"log"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type DatabaseConfig struct {
	Driver   string `env:"DATABASE_DRIVER" env-default:"postgres"`
	Host     string `env:"DATABASE_HOST" env-default:"localhost"`
	Port     string `env:"DATABASE_PORT" env-default:"5432"`
	User     string `env:"DATABASE_USER" env-default:"postgres"`
	Password string `env:"DATABASE_PASSWORD"`
	Name     string `env:"DATABASE_NAME" env-default:"taskflow"`
	SSLMode  string `env:"DATABASE_SSLMODE" env-default:"disable"`
	TimeZone string `env:"DATABASE_TIMEZONE" env-default:"UTC"`
}

type Config struct {
	APIEnv          string         `env:"API_ENV" env-default:"local"`
	Port            string         `env:"PORT" env-default:"9090"`
	AppHost         string         `env:"APP_HOST"`
	MaintenanceMode bool           `env:"MAINTENANCE_MODE" env-default:"false"`
	Database        DatabaseConfig
	RedisHost       string         `env:"REDIS_HOST"`
	JWTSecret       string         `env:"JWT_SECRET" env-default:"secret"`
	JWTTTL          time.Duration  `env:"JWT_TTL" env-default:"24h"`
	RoleCacheTTL    time.Duration  `env:"ROLE_CACHE_TTL" env-default:"30s"`
	StatusCacheTTL  time.Duration  `env:"STATUS_CACHE_TTL" env-default:"5m"`
	RecalcInterval  time.Duration  `env:"RECALC_INTERVAL" env-default:"15m"`
}

var cfg *Config

// Load reads the environment once. Later calls return the cached value.
func Load() *Config {
	if cfg != nil {
		return cfg
	}
	var c Config
	if err := cleanenv.ReadEnv(&c); err != nil {
		log.Fatalf("cannot read env: %s", err)
	}
	cfg = &c
	return cfg
}

// Set replaces the loaded configuration, mainly for tests.
func Set(c *Config) {
	cfg = c
}

func GetDSN() string {
	d := Load().Database
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s", d.Host, d.User, d.Password, d.Name, d.Port, d.SSLMode, d.TimeZone)
	return dsn
}

func IsProd() bool {
	return Load().APIEnv == "production"
}
