// Package config loads runtime configuration from an optional YAML file
// and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Storage backends.
const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

// Config aggregates runtime configuration used across the service.
type Config struct {
	Addr     string         `yaml:"addr"`
	WebDir   string         `yaml:"webDir"`
	LogLevel string         `yaml:"logLevel"`
	Storage  string         `yaml:"storage"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Devices  DeviceConfig   `yaml:"devices"`
	OIDC     OIDCConfig     `yaml:"oidc"`
	S3       S3Config       `yaml:"s3"`
	SMTP     SMTPConfig     `yaml:"smtp"`
}

// DatabaseConfig holds the Postgres DSN.
type DatabaseConfig struct {
	URL string `yaml:"url"`
}

// AuthConfig controls user authentication.
type AuthConfig struct {
	// Disabled skips session checks entirely. Development only.
	Disabled bool `yaml:"disabled"`
	// ForwardAuth trusts the Remote-User header set by a reverse proxy.
	ForwardAuth bool `yaml:"forwardAuth"`
}

// DeviceConfig controls device token issuance.
type DeviceConfig struct {
	TokenSecret string        `yaml:"tokenSecret"`
	TokenTTL    time.Duration `yaml:"tokenTtl"`
}

// OIDCConfig configures single sign-on.
type OIDCConfig struct {
	Issuer       string `yaml:"issuer"`
	ClientID     string `yaml:"clientId"`
	ClientSecret string `yaml:"clientSecret"`
	RedirectURL  string `yaml:"redirectUrl"`
}

// Enabled reports whether SSO is configured.
func (c OIDCConfig) Enabled() bool { return c.Issuer != "" }

// S3Config configures the photo bucket.
type S3Config struct {
	Endpoint      string `yaml:"endpoint"`
	AccessKey     string `yaml:"accessKey"`
	SecretKey     string `yaml:"secretKey"`
	Bucket        string `yaml:"bucket"`
	Region        string `yaml:"region"`
	PublicBaseURL string `yaml:"publicBaseUrl"`
}

// Enabled reports whether photo storage is configured.
func (c S3Config) Enabled() bool { return c.Endpoint != "" }

// SMTPConfig configures contact form delivery.
type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
	To       string `yaml:"to"`
}

// Enabled reports whether an SMTP relay is configured.
func (c SMTPConfig) Enabled() bool { return c.Host != "" }

// Load reads .env (if present), then the YAML file named by CONFIG_PATH
// (if set), then environment overrides, and validates the result.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := defaultConfig()
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	str := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	flag := func(key string, dst *bool) {
		if v := os.Getenv(key); v != "" {
			*dst = v == "1" || strings.EqualFold(v, "true")
		}
	}

	str("ADDR", &cfg.Addr)
	str("WEB_DIR", &cfg.WebDir)
	str("LOG_LEVEL", &cfg.LogLevel)
	str("STORAGE", &cfg.Storage)
	str("DATABASE_URL", &cfg.Database.URL)
	flag("DISABLE_AUTH", &cfg.Auth.Disabled)
	flag("FORWARD_AUTH", &cfg.Auth.ForwardAuth)

	str("DEVICE_TOKEN_SECRET", &cfg.Devices.TokenSecret)
	if v := os.Getenv("DEVICE_TOKEN_TTL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Devices.TokenTTL = parsed
		}
	}

	str("OIDC_ISSUER", &cfg.OIDC.Issuer)
	str("OIDC_CLIENT_ID", &cfg.OIDC.ClientID)
	str("OIDC_CLIENT_SECRET", &cfg.OIDC.ClientSecret)
	str("OIDC_REDIRECT_URL", &cfg.OIDC.RedirectURL)

	str("S3_ENDPOINT", &cfg.S3.Endpoint)
	str("S3_ACCESS_KEY", &cfg.S3.AccessKey)
	str("S3_SECRET_KEY", &cfg.S3.SecretKey)
	str("S3_BUCKET", &cfg.S3.Bucket)
	str("S3_REGION", &cfg.S3.Region)
	str("S3_PUBLIC_BASE_URL", &cfg.S3.PublicBaseURL)

	str("SMTP_HOST", &cfg.SMTP.Host)
	if v := os.Getenv("SMTP_PORT"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.SMTP.Port = parsed
		}
	}
	str("SMTP_USERNAME", &cfg.SMTP.Username)
	str("SMTP_PASSWORD", &cfg.SMTP.Password)
	str("SMTP_FROM", &cfg.SMTP.From)
	str("SMTP_TO", &cfg.SMTP.To)
}

func defaultConfig() *Config {
	return &Config{
		Addr:     ":8080",
		WebDir:   "web",
		LogLevel: "info",
		Storage:  StoragePostgres,
		S3: S3Config{
			Bucket: "growt-photos",
			Region: "us-east-1",
		},
		SMTP: SMTPConfig{Port: 587},
	}
}

// Validate ensures required fields are present.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return errors.New("addr is required")
	}
	switch c.Storage {
	case StorageMemory:
	case StoragePostgres:
		if c.Database.URL == "" {
			return errors.New("DATABASE_URL is required for postgres storage")
		}
	default:
		return fmt.Errorf("unknown storage %q", c.Storage)
	}
	if len(c.Devices.TokenSecret) < 16 {
		return errors.New("DEVICE_TOKEN_SECRET must be at least 16 characters")
	}
	if c.Devices.TokenTTL < 0 {
		return errors.New("device token ttl must not be negative")
	}
	if c.OIDC.Enabled() && (c.OIDC.ClientID == "" || c.OIDC.RedirectURL == "") {
		return errors.New("OIDC_CLIENT_ID and OIDC_REDIRECT_URL are required when OIDC_ISSUER is set")
	}
	if c.S3.Enabled() && (c.S3.AccessKey == "" || c.S3.SecretKey == "" || c.S3.Bucket == "") {
		return errors.New("S3 access key, secret key and bucket are required when S3_ENDPOINT is set")
	}
	if c.SMTP.Enabled() && (c.SMTP.From == "" || c.SMTP.To == "") {
		return errors.New("SMTP_FROM and SMTP_TO are required when SMTP_HOST is set")
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}
	return nil
}
