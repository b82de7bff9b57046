// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type RedisConfig struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type DatabaseConfig struct {
	URL string `yaml:"url"` // optional; enables the webhook event audit log
}

type StripeConfig struct {
	SecretKey     string `yaml:"secret_key"`
	WebhookSecret string `yaml:"webhook_secret"`
	// AllowUnverified skips signature verification. Test channels only;
	// never enable in production.
	AllowUnverified bool `yaml:"allow_unverified"`
}

type PaymentConfig struct {
	Stripe StripeConfig `yaml:"stripe"`
}

type GenerationDefaults struct {
	Width       int    `yaml:"width"`
	Height      int    `yaml:"height"`
	AspectRatio string `yaml:"aspect_ratio"`
	FrameRate   int    `yaml:"frame_rate"`
	ConfigName  string `yaml:"config_name"`
}

type GenerationConfig struct {
	BaseURL  string             `yaml:"base_url"`
	Token    string             `yaml:"token"`
	Timeout  time.Duration      `yaml:"timeout"` // bound on the outbound generate call
	Defaults GenerationDefaults `yaml:"defaults"`
}

type AppConfig struct {
	BaseURL string `yaml:"base_url"` // public base URL for redirect links
}

type StatusConfig struct {
	TTL             time.Duration `yaml:"ttl"`               // record retention
	PollInterval    time.Duration `yaml:"poll_interval"`     // status API poll cadence
	JobPollInterval time.Duration `yaml:"job_poll_interval"` // provider poll cadence
	WaitTimeout     time.Duration `yaml:"wait_timeout"`      // client countdown
}

type ReconcilerConfig struct {
	Interval   time.Duration `yaml:"interval"`
	StaleAfter time.Duration `yaml:"stale_after"`
	Workers    int           `yaml:"workers"`
}

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Log        LogConfig        `yaml:"log"`
	Redis      RedisConfig      `yaml:"redis"`
	Database   DatabaseConfig   `yaml:"database"`
	Payment    PaymentConfig    `yaml:"payment"`
	Generation GenerationConfig `yaml:"generation"`
	App        AppConfig        `yaml:"app"`
	Status     StatusConfig     `yaml:"status"`
	Reconciler ReconcilerConfig `yaml:"reconciler"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyDefaults()

	// Minimal validation
	if cfg.Redis.URL == "" {
		return nil, errors.New("redis.url is required")
	}
	if cfg.Generation.BaseURL == "" {
		return nil, errors.New("generation.base_url is required")
	}
	if cfg.Generation.Token == "" {
		return nil, errors.New("generation.token is required")
	}
	if cfg.Payment.Stripe.WebhookSecret == "" && !cfg.Payment.Stripe.AllowUnverified {
		return nil, errors.New("payment.stripe.webhook_secret is required unless allow_unverified is set")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}

func (cfg *Config) applyDefaults() {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Generation.Timeout <= 0 {
		cfg.Generation.Timeout = 15 * time.Second
	}
	d := &cfg.Generation.Defaults
	if d.Width == 0 {
		d.Width = 1280
	}
	if d.Height == 0 {
		d.Height = 720
	}
	if d.AspectRatio == "" {
		d.AspectRatio = "16:9"
	}
	if d.FrameRate == 0 {
		d.FrameRate = 30
	}
	if d.ConfigName == "" {
		d.ConfigName = "default"
	}
	if cfg.Status.TTL <= 0 {
		cfg.Status.TTL = 30 * 24 * time.Hour
	}
	if cfg.Status.PollInterval <= 0 {
		cfg.Status.PollInterval = 2 * time.Second
	}
	if cfg.Status.JobPollInterval <= 0 {
		cfg.Status.JobPollInterval = 5 * time.Second
	}
	if cfg.Status.WaitTimeout <= 0 {
		cfg.Status.WaitTimeout = 60 * time.Second
	}
	if cfg.Reconciler.Interval <= 0 {
		cfg.Reconciler.Interval = time.Minute
	}
	if cfg.Reconciler.StaleAfter <= 0 {
		cfg.Reconciler.StaleAfter = 10 * time.Minute
	}
	if cfg.Reconciler.Workers <= 0 {
		cfg.Reconciler.Workers = 4
	}
}
