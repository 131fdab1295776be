package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/Jamolkhon5/lifesense/internal/models"
)

const (
	DriverPostgREST = "postgrest"
	DriverPostgres  = "postgres"
	DriverMock      = "mock"
)

// Config is read by viper from an optional config file (yaml or .env) and the environment.
// Secrets have no defaults: they must come from the runtime environment.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Log        LogConfig        `mapstructure:"log"`
	Completion CompletionConfig `mapstructure:"completion"`
	Store      StoreConfig      `mapstructure:"store"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Dashboard  DashboardConfig  `mapstructure:"dashboard"`
	Profile    models.Profile   `mapstructure:"profile"`
}

type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	GRPCAddr        string        `mapstructure:"grpc_addr"`
	StaticDir       string        `mapstructure:"static_dir"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

type CompletionConfig struct {
	APIKey  string        `mapstructure:"api_key"`
	Model   string        `mapstructure:"model"`
	BaseURL string        `mapstructure:"base_url"`
	SiteURL string        `mapstructure:"site_url"`
	AppName string        `mapstructure:"app_name"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type StoreConfig struct {
	Driver      string        `mapstructure:"driver"`
	URL         string        `mapstructure:"url"`
	Key         string        `mapstructure:"key"`
	DatabaseURL string        `mapstructure:"database_url"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

type RedisConfig struct {
	Addr         string `mapstructure:"addr"`
	Password     string `mapstructure:"password"`
	DB           int    `mapstructure:"db"`
	RateLimitQPS int    `mapstructure:"rate_limit_qps"`
}

type DashboardConfig struct {
	TemperatureWindow int `mapstructure:"temperature_window"`
	HeartRateWindow   int `mapstructure:"heart_rate_window"`
	EnrichmentWindow  int `mapstructure:"enrichment_window"`
	ChartPoints       int `mapstructure:"chart_points"`
}

var ErrMissingStoreURL = errors.New("store url not configured")

// envBindings keeps the variable names the hosted deployment already uses.
var envBindings = map[string]string{
	"completion.api_key":   "OPENROUTER_API_KEY",
	"completion.model":     "OPENROUTER_MODEL",
	"store.url":            "SUPABASE_URL",
	"store.key":            "SUPABASE_ANON_KEY",
	"store.database_url":   "DATABASE_URL",
	"redis.addr":           "REDIS_ADDR",
	"redis.password":       "REDIS_PASSWORD",
	"server.addr":          "LIFESENSE_ADDR",
	"server.grpc_addr":     "LIFESENSE_GRPC_ADDR",
	"server.static_dir":    "LIFESENSE_STATIC_DIR",
	"log.level":            "LIFESENSE_LOG_LEVEL",
	"store.driver":         "LIFESENSE_STORE_DRIVER",
	"completion.site_url":  "LIFESENSE_SITE_URL",
	"redis.rate_limit_qps": "LIFESENSE_RATE_LIMIT_QPS",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":5641")
	v.SetDefault("server.grpc_addr", "")
	v.SetDefault("server.static_dir", "")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("server.request_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", 5*time.Second)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	v.SetDefault("completion.model", "meta-llama/llama-3.1-8b-instruct")
	v.SetDefault("completion.base_url", "https://openrouter.ai/api/v1")
	v.SetDefault("completion.site_url", "https://lifesense.vercel.app")
	v.SetDefault("completion.app_name", "LifeSense")
	v.SetDefault("completion.timeout", 45*time.Second)

	v.SetDefault("store.driver", DriverPostgREST)
	v.SetDefault("store.timeout", 10*time.Second)

	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.rate_limit_qps", 5)

	v.SetDefault("dashboard.temperature_window", 15)
	v.SetDefault("dashboard.heart_rate_window", 10)
	v.SetDefault("dashboard.enrichment_window", 15)
	v.SetDefault("dashboard.chart_points", 150)

	v.SetDefault("profile.name", "")
	v.SetDefault("profile.age", 0)
	v.SetDefault("profile.height", 0)
	v.SetDefault("profile.weight", 0)
}

// applyDotEnv maps flat .env keys (OPENROUTER_API_KEY=...) onto their config keys.
// A value present in the real environment still wins.
func applyDotEnv(v *viper.Viper) {
	for key, env := range envBindings {
		if _, ok := os.LookupEnv(env); ok {
			continue
		}
		if flat := strings.ToLower(env); v.IsSet(flat) {
			v.Set(key, v.Get(flat))
		}
	}
}

// NewConfig loads configuration. An empty path, or a path that does not exist, means environment only.
func NewConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", env, err)
		}
	}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			dotEnv := filepath.Ext(path) == ".env" || filepath.Base(path) == ".env"
			if dotEnv {
				v.SetConfigType("env")
			}
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
			if dotEnv {
				applyDotEnv(v)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("stat config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks settings that would make the service unusable.
// A missing completion API key is reported per request, not here.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case DriverPostgREST:
		if c.Store.URL == "" {
			return ErrMissingStoreURL
		}
	case DriverPostgres:
		if c.Store.DatabaseURL == "" {
			return errors.New("database url not configured")
		}
	case DriverMock:
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	if c.Dashboard.TemperatureWindow <= 0 || c.Dashboard.HeartRateWindow <= 0 || c.Dashboard.EnrichmentWindow <= 0 {
		return errors.New("dashboard windows must be positive")
	}
	return nil
}
