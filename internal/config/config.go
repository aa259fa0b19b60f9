package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Storage  StorageConfig
	Redis    RedisConfig
	Log      LogConfig
	Live     LiveConfig
	OpenAI   OpenAIConfig
}

type ServerConfig struct {
	Port           int           `mapstructure:"port"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	RateLimitRPS   float64       `mapstructure:"rate_limit_rps"`
	RateLimitBurst int           `mapstructure:"rate_limit_burst"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
}

type DatabaseConfig struct {
	URL          string `mapstructure:"database_url"`
	MaxOpenConns int    `mapstructure:"db_max_open_conns"`
	MaxIdleConns int    `mapstructure:"db_max_idle_conns"`
}

type JWTConfig struct {
	Secret     string        `mapstructure:"jwt_secret"`
	Expiration time.Duration `mapstructure:"token_expiration"`
}

type StorageConfig struct {
	Region        string `mapstructure:"aws_region"`
	AccessKeyID   string `mapstructure:"aws_access_key_id"`
	SecretKey     string `mapstructure:"aws_secret_access_key"`
	Bucket        string `mapstructure:"aws_bucket_name"`
	CloudFrontURL string `mapstructure:"aws_cloud_front_url"`
}

type RedisConfig struct {
	URL    string `mapstructure:"redis_url"`
	Prefix string `mapstructure:"redis_prefix"`
}

type LogConfig struct {
	Level string `mapstructure:"log_level"`
	JSON  bool   `mapstructure:"log_json"`
}

type LiveConfig struct {
	Heartbeat time.Duration `mapstructure:"sse_heartbeat"`
	Buffer    int           `mapstructure:"sse_buffer"`
}

// OpenAIConfig backs the writing-prompt suggestion. An empty key disables the
// upstream call and the fallback text is served.
type OpenAIConfig struct {
	APIKey  string        `mapstructure:"openai_api_key"`
	Model   string        `mapstructure:"openai_model"`
	BaseURL string        `mapstructure:"openai_base_url"`
	Timeout time.Duration `mapstructure:"openai_timeout"`
}

var defaults = map[string]interface{}{
	"port":                  3000,
	"request_timeout":       "30s",
	"rate_limit_rps":        20.0,
	"rate_limit_burst":      40,
	"allowed_origins":       []string{"*"},
	"database_url":          "",
	"db_max_open_conns":     25,
	"db_max_idle_conns":     5,
	"jwt_secret":            "",
	"token_expiration":      "1h",
	"aws_region":            "ap-northeast-2",
	"aws_access_key_id":     "",
	"aws_secret_access_key": "",
	"aws_bucket_name":       "",
	"aws_cloud_front_url":   "",
	"redis_url":             "",
	"redis_prefix":          "memory.events",
	"log_level":             "info",
	"log_json":              false,
	"sse_heartbeat":         "25s",
	"sse_buffer":            16,
	"openai_api_key":        "",
	"openai_model":          "gpt-4o",
	"openai_base_url":       "",
	"openai_timeout":        "15s",
}

// LoadConfig reads an optional config.yaml and lets environment variables
// (upper-cased keys, e.g. DATABASE_URL) override it.
func LoadConfig(paths ...string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if len(paths) == 0 {
		paths = []string{".", "./config", "/app/config"}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	for _, target := range []interface{}{&cfg.Server, &cfg.Database, &cfg.JWT, &cfg.Storage, &cfg.Redis, &cfg.Log, &cfg.Live, &cfg.OpenAI} {
		if err := v.Unmarshal(target); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the settings the API cannot start without
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return errors.New("DATABASE_URL is required")
	}
	if c.JWT.Secret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.Server.Port <= 0 {
		return fmt.Errorf("invalid PORT %d", c.Server.Port)
	}
	if c.Live.Buffer <= 0 {
		c.Live.Buffer = 16
	}
	return nil
}
