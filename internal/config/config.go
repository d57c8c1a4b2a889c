package config

import (
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port string `envconfig:"PORT" default:"3000"`

	DatabaseURL    string `envconfig:"DATABASE_URL"`
	DBHost         string `envconfig:"DB_HOST" default:"localhost"`
	DBUser         string `envconfig:"DB_USER" default:"postgres"`
	DBPassword     string `envconfig:"DB_PASSWORD"`
	DBName         string `envconfig:"DB_NAME" default:"naratani"`
	DBPort         string `envconfig:"DB_PORT" default:"5432"`
	DBMaxOpenConns int    `envconfig:"DB_MAX_OPEN_CONNS" default:"100"`
	DBMaxIdleConns int    `envconfig:"DB_MAX_IDLE_CONNS" default:"10"`

	// Empty RedisURL keeps the dashboard cache in process memory.
	RedisURL          string        `envconfig:"REDIS_URL"`
	DashboardCacheTTL time.Duration `envconfig:"DASHBOARD_CACHE_TTL" default:"1h"`

	JWTSecret string        `envconfig:"JWT_SECRET" default:"your-super-secret-key-change-in-production"`
	JWTExpiry time.Duration `envconfig:"JWT_EXPIRY" default:"24h"`

	Timezone  string `envconfig:"TIMEZONE" default:"Asia/Jakarta"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`

	AdminEmail    string `envconfig:"ADMIN_EMAIL" default:"admin@example.com"`
	AdminPassword string `envconfig:"ADMIN_PASSWORD" default:"admin123"`
}

// Load reads .env (when present) and the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	unsetBlankDefaults()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return &cfg, nil
}

// unsetBlankDefaults drops variables that are set but blank (PORT= in .env)
// and have a default, so envconfig applies the default instead of "".
func unsetBlankDefaults() {
	t := reflect.TypeOf(Config{})
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		key := f.Tag.Get("envconfig")
		if key == "" || f.Tag.Get("default") == "" {
			continue
		}
		if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) == "" {
			os.Unsetenv(key)
		}
	}
}

// Location resolves Timezone, falling back to a fixed UTC+7 zone when tzdata is missing.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.FixedZone("WIB", 7*60*60)
	}
	return loc
}
