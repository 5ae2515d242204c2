package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Port     string         `yaml:"port"`
	Log      LogConfig      `yaml:"log"`
	Upstream UpstreamConfig `yaml:"upstream"`
	Cache    CacheConfig    `yaml:"cache"`
	Redis    RedisConfig    `yaml:"redis"`
	Inbound  LimitConfig    `yaml:"inbound_limit"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

type UpstreamConfig struct {
	APIKey      string        `yaml:"api_key"`
	Host        string        `yaml:"host"`
	BaseURL     string        `yaml:"base_url"`
	Currency    string        `yaml:"currency"`
	Market      string        `yaml:"market"`
	CountryCode string        `yaml:"country_code"`
	Timeout     time.Duration `yaml:"timeout"`
	MaxRetries  int           `yaml:"max_retries"`
	RetryDelay  time.Duration `yaml:"retry_delay"`
	MaxDelay    time.Duration `yaml:"max_retry_delay"`
	Limit       LimitConfig   `yaml:"limit"`

	// AirportsLimit applies to autocomplete lookups.
	AirportsLimit LimitConfig `yaml:"airports_limit"`
}

type LimitConfig struct {
	RequestsPerSecond float64       `yaml:"rps"`
	Burst             int           `yaml:"burst"`
	IdleTTL           time.Duration `yaml:"idle_ttl"`
}

type CacheConfig struct {
	Backend       string        `yaml:"backend"`
	TTL           time.Duration `yaml:"ttl"`
	MaxEntries    int           `yaml:"max_entries"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

type RedisConfig struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

func Default() Config {
	return Config{
		Port: "8080",
		Log: LogConfig{
			Level: "info",
		},
		Upstream: UpstreamConfig{
			Host:        "sky-scrapper.p.rapidapi.com",
			BaseURL:     "https://sky-scrapper.p.rapidapi.com",
			Currency:    "USD",
			Market:      "US",
			CountryCode: "US",
			Timeout:     15 * time.Second,
			MaxRetries:  2,
			RetryDelay:  200 * time.Millisecond,
			MaxDelay:    2 * time.Second,
			Limit:       LimitConfig{RequestsPerSecond: 5, Burst: 10},

			AirportsLimit: LimitConfig{RequestsPerSecond: 10, Burst: 20},
		},
		Cache: CacheConfig{
			Backend:       BackendMemory,
			TTL:           30 * time.Minute,
			MaxEntries:    10000,
			SweepInterval: time.Minute,
		},
		Redis: RedisConfig{
			Host: "localhost",
			Port: "6379",
		},
		Inbound: LimitConfig{RequestsPerSecond: 10, Burst: 20, IdleTTL: 5 * time.Minute},
	}
}

// Load starts from Default, applies the YAML file at path when path is set, then environment
// overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks structural settings. A missing API key is not an error here: searches report it
// per request.
func (c Config) Validate() error {
	if c.Port == "" {
		return errors.New("port is required")
	}
	switch c.Cache.Backend {
	case BackendMemory, BackendRedis:
	default:
		return fmt.Errorf("unknown cache backend %q", c.Cache.Backend)
	}
	if c.Upstream.MaxRetries < 0 {
		return errors.New("upstream max_retries cannot be negative")
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.Log.Level = getEnv("LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Pretty = getEnvBool("LOG_PRETTY", cfg.Log.Pretty)

	cfg.Upstream.APIKey = getEnv("RAPIDAPI_KEY", cfg.Upstream.APIKey)
	cfg.Upstream.Host = getEnv("RAPIDAPI_HOST", cfg.Upstream.Host)
	cfg.Upstream.BaseURL = getEnv("UPSTREAM_BASE_URL", cfg.Upstream.BaseURL)
	cfg.Upstream.Currency = getEnv("SEARCH_CURRENCY", cfg.Upstream.Currency)
	cfg.Upstream.Market = getEnv("SEARCH_MARKET", cfg.Upstream.Market)
	cfg.Upstream.CountryCode = getEnv("SEARCH_COUNTRY_CODE", cfg.Upstream.CountryCode)
	cfg.Upstream.Timeout = getEnvDuration("UPSTREAM_TIMEOUT", cfg.Upstream.Timeout)
	cfg.Upstream.MaxRetries = getEnvInt("UPSTREAM_MAX_RETRIES", cfg.Upstream.MaxRetries)
	cfg.Upstream.RetryDelay = getEnvDuration("UPSTREAM_RETRY_DELAY", cfg.Upstream.RetryDelay)

	cfg.Cache.Backend = getEnv("CACHE_BACKEND", cfg.Cache.Backend)
	cfg.Cache.TTL = getEnvDuration("CACHE_TTL", cfg.Cache.TTL)
	cfg.Cache.MaxEntries = getEnvInt("CACHE_MAX_ENTRIES", cfg.Cache.MaxEntries)

	cfg.Redis.Host = getEnv("REDIS_HOST", cfg.Redis.Host)
	cfg.Redis.Port = getEnv("REDIS_PORT", cfg.Redis.Port)
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = getEnvInt("REDIS_DB", cfg.Redis.DB)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return duration
}
