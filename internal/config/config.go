package config

import (
	"strings"
	"time"

	"go-inventory-ledger/pkg/database"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	App struct {
		Env         string `mapstructure:"env"`
		LogLevel    string `mapstructure:"log_level"`
		Port        string `mapstructure:"port"`
		CORSOrigins string `mapstructure:"cors_origins"`
		StaticDir   string `mapstructure:"static_dir"`
	} `mapstructure:"app"`

	DB struct {
		Driver       string        `mapstructure:"driver"`
		URL          string        `mapstructure:"url"`
		Host         string        `mapstructure:"host"`
		Port         string        `mapstructure:"port"`
		User         string        `mapstructure:"user"`
		Password     string        `mapstructure:"password"`
		Name         string        `mapstructure:"name"`
		TimeZone     string        `mapstructure:"timezone"`
		MaxOpenConns int           `mapstructure:"max_open_conns"`
		MaxIdleConns int           `mapstructure:"max_idle_conns"`
		LogLevel     string        `mapstructure:"log_level"`
		StoreTimeout time.Duration `mapstructure:"store_timeout"`
	} `mapstructure:"db"`

	Session struct {
		Secret       string        `mapstructure:"secret"`
		TTL          time.Duration `mapstructure:"ttl"`
		CookieName   string        `mapstructure:"cookie"`
		CookieSecure bool          `mapstructure:"cookie_secure"`
	} `mapstructure:"session"`

	Redis struct {
		URL            string        `mapstructure:"url"`
		IdempotencyTTL time.Duration `mapstructure:"idempotency_ttl"`
	} `mapstructure:"redis"`

	Metrics struct {
		Enabled bool `mapstructure:"enabled"`
	} `mapstructure:"metrics"`
}

// envKeys maps config keys to the flat environment variable names used in
// .env files and container manifests.
var envKeys = map[string]string{
	"app.env":               "APP_ENV",
	"app.log_level":         "LOG_LEVEL",
	"app.port":              "PORT",
	"app.cors_origins":      "CORS_ORIGINS",
	"app.static_dir":        "STATIC_DIR",
	"db.driver":             "DB_DRIVER",
	"db.url":                "DATABASE_URL",
	"db.host":               "DB_HOST",
	"db.port":               "DB_PORT",
	"db.user":               "DB_USER",
	"db.password":           "DB_PASSWORD",
	"db.name":               "DB_NAME",
	"db.timezone":           "DB_TIMEZONE",
	"db.max_open_conns":     "DB_MAX_OPEN_CONNS",
	"db.max_idle_conns":     "DB_MAX_IDLE_CONNS",
	"db.log_level":          "DB_LOG_LEVEL",
	"db.store_timeout":      "STORE_TIMEOUT",
	"session.secret":        "JWT_SECRET",
	"session.ttl":           "SESSION_TTL",
	"session.cookie":        "SESSION_COOKIE",
	"session.cookie_secure": "COOKIE_SECURE",
	"redis.url":             "REDIS_URL",
	"redis.idempotency_ttl": "IDEMPOTENCY_TTL",
	"metrics.enabled":       "METRICS_ENABLED",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.env", "production")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.port", "3000")
	v.SetDefault("app.cors_origins", "*")
	v.SetDefault("app.static_dir", "")
	v.SetDefault("db.driver", database.DriverPostgres)
	v.SetDefault("db.url", "")
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", "5432")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "")
	v.SetDefault("db.name", "inventory")
	v.SetDefault("db.timezone", "UTC")
	v.SetDefault("db.max_open_conns", 100)
	v.SetDefault("db.max_idle_conns", 10)
	v.SetDefault("db.log_level", "warn")
	v.SetDefault("db.store_timeout", 5*time.Second)
	v.SetDefault("session.secret", "your-super-secret-key-change-in-production")
	v.SetDefault("session.ttl", 24*time.Hour)
	v.SetDefault("session.cookie", "session")
	v.SetDefault("session.cookie_secure", false)
	v.SetDefault("redis.url", "")
	v.SetDefault("redis.idempotency_ttl", 24*time.Hour)
	v.SetDefault("metrics.enabled", true)
}

// LoadDotEnv loads .env into the process environment. Callers treat a
// missing file as a warning.
func LoadDotEnv() error {
	return godotenv.Load()
}

// Load reads configuration from the process environment over the defaults.
func Load() (Config, error) {
	var cfg Config

	v := viper.New()
	setDefaults(v)
	for key, env := range envKeys {
		if err := v.BindEnv(key, env); err != nil {
			return cfg, err
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, err
	}
	cfg.DB.Driver = strings.ToLower(cfg.DB.Driver)
	return cfg, nil
}

// Database returns the connection settings for pkg/database.
func (c Config) Database() database.Config {
	return database.Config{
		Driver:       c.DB.Driver,
		DSN:          c.DB.URL,
		Host:         c.DB.Host,
		Port:         c.DB.Port,
		User:         c.DB.User,
		Password:     c.DB.Password,
		Name:         c.DB.Name,
		TimeZone:     c.DB.TimeZone,
		MaxOpenConns: c.DB.MaxOpenConns,
		MaxIdleConns: c.DB.MaxIdleConns,
		LogLevel:     c.DB.LogLevel,
	}
}
