package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Env       string          `mapstructure:"env"`
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Inventory InventoryConfig `mapstructure:"inventory"`
	Tax       TaxConfig       `mapstructure:"tax"`
	Analytics AnalyticsConfig `mapstructure:"analytics"`
	Cache     CacheConfig     `mapstructure:"cache"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Alerts    AlertsConfig    `mapstructure:"alerts"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

type DatabaseConfig struct {
	URL          string `mapstructure:"url"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	Migrate      bool   `mapstructure:"migrate"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type AuthConfig struct {
	JWTSecret  string        `mapstructure:"jwt_secret"`
	AccessTTL  time.Duration `mapstructure:"access_ttl"`
	RefreshTTL time.Duration `mapstructure:"refresh_ttl"`
	// AdminUsername and AdminPassword seed an admin user on startup when
	// both are set and the user does not exist yet.
	AdminUsername string `mapstructure:"admin_username"`
	AdminPassword string `mapstructure:"admin_password"`
}

type InventoryConfig struct {
	LowStockThreshold int `mapstructure:"low_stock_threshold"`
}

// TaxConfig maps a customer country code to a tax rate. Countries not listed
// are taxed at DefaultRate.
type TaxConfig struct {
	DefaultRate string            `mapstructure:"default_rate"`
	Rates       map[string]string `mapstructure:"rates"`
}

type AnalyticsConfig struct {
	ChurnWindowDays int `mapstructure:"churn_window_days"`
}

type CacheConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

type RateLimitConfig struct {
	RPS   float64 `mapstructure:"rps"`
	Burst int     `mapstructure:"burst"`
}

type AlertsConfig struct {
	SummaryInterval time.Duration `mapstructure:"summary_interval"`
	SMTP            SMTPConfig    `mapstructure:"smtp"`
}

type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
	To       string `mapstructure:"to"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "production")
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.migrate", true)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("auth.access_ttl", 15*time.Minute)
	v.SetDefault("auth.refresh_ttl", 24*time.Hour)
	v.SetDefault("inventory.low_stock_threshold", 5)
	v.SetDefault("tax.default_rate", "0.05")
	v.SetDefault("tax.rates", map[string]string{"US": "0.07", "UK": "0.20", "IN": "0.18"})
	v.SetDefault("analytics.churn_window_days", 180)
	v.SetDefault("cache.ttl", 5*time.Minute)
	v.SetDefault("ratelimit.rps", 5)
	v.SetDefault("ratelimit.burst", 10)
	v.SetDefault("alerts.summary_interval", 24*time.Hour)
	v.SetDefault("alerts.smtp.port", 587)
}

// Load reads config.yaml (if present) and environment variables prefixed with
// ECOM_, e.g. ECOM_DATABASE_URL overrides database.url.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./")
	v.AddConfigPath("./deploy/")
	v.AddConfigPath("/etc/ecommerce-analytics/")

	v.SetEnvPrefix("ECOM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// AutomaticEnv only sees keys viper already knows about.
	for _, key := range []string{"database.url", "redis.password", "auth.jwt_secret", "auth.admin_username", "auth.admin_password",
		"alerts.smtp.host", "alerts.smtp.user", "alerts.smtp.password", "alerts.smtp.from", "alerts.smtp.to"} {
		_ = v.BindEnv(key)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Database.URL == "" {
		return errors.New("database.url is required (ECOM_DATABASE_URL)")
	}
	if c.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret is required (ECOM_AUTH_JWT_SECRET)")
	}
	if c.Inventory.LowStockThreshold < 0 {
		return errors.New("inventory.low_stock_threshold cannot be negative")
	}
	if c.Analytics.ChurnWindowDays <= 0 {
		return errors.New("analytics.churn_window_days must be greater than zero")
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}
