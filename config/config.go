package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

const DefaultConfigFile = "config/config.yaml"

type Config struct {
	App         AppConfig         `yaml:"app" envconfig:"APP"`
	Server      ServerConfig      `yaml:"server" envconfig:"SERVER"`
	Weather     WeatherConfig     `yaml:"weather" envconfig:"WEATHER"`
	Preferences PreferencesConfig `yaml:"preferences" envconfig:"PREFERENCES"`
	Scheduler   SchedulerConfig   `yaml:"scheduler" envconfig:"SCHEDULER"`
	Search      SearchConfig      `yaml:"search" envconfig:"SEARCH"`
	Log         LogConfig         `yaml:"log" envconfig:"LOG"`
	Sentry      SentryConfig      `yaml:"sentry" envconfig:"SENTRY"`
}

type AppConfig struct {
	Name    string `yaml:"name" envconfig:"NAME" validate:"required"`
	Version string `yaml:"version" envconfig:"VERSION" validate:"required"`
	Env     string `yaml:"env" envconfig:"ENV" validate:"oneof=development test dev prod"`
}

type ServerConfig struct {
	Port         string        `yaml:"port" envconfig:"PORT" validate:"required,numeric"`
	ReadTimeout  time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" validate:"gte=0"`
	WriteTimeout time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" validate:"gte=0"`
	IdleTimeout  time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" validate:"gte=0"`
}

type WeatherConfig struct {
	BaseURL         string        `yaml:"base_url" envconfig:"BASE_URL" validate:"required,url"`
	APIKey          string        `yaml:"api_key" envconfig:"API_KEY" validate:"required"`
	Timeout         time.Duration `yaml:"timeout" envconfig:"TIMEOUT" validate:"gt=0"`
	BreakerFailures uint32        `yaml:"breaker_failures" envconfig:"BREAKER_FAILURES" validate:"gte=1"`
	BreakerTimeout  time.Duration `yaml:"breaker_timeout" envconfig:"BREAKER_TIMEOUT" validate:"gt=0"`
}

// PreferencesConfig selects the selection store. An empty RedisURL keeps
// the selection in memory.
type PreferencesConfig struct {
	RedisURL  string `yaml:"redis_url" envconfig:"REDIS_URL" validate:"omitempty,url"`
	Namespace string `yaml:"namespace" envconfig:"NAMESPACE" validate:"required"`
}

type SchedulerConfig struct {
	RefreshInterval time.Duration `yaml:"refresh_interval" envconfig:"REFRESH_INTERVAL" validate:"gte=0"`
}

type SearchConfig struct {
	Concurrency int `yaml:"concurrency" envconfig:"CONCURRENCY" validate:"min=1,max=32"`
}

type LogConfig struct {
	Level string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn error"`
}

type SentryConfig struct {
	DSN   string `yaml:"dsn" envconfig:"DSN" validate:"omitempty,url"`
	Debug bool   `yaml:"debug" envconfig:"DEBUG"`
}

func (c *Config) IsDevelopment() bool {
	return c.App.Env == "development"
}

// ConfigProvider loads and checks a Config.
type ConfigProvider interface {
	Load() (*Config, error)
	Validate(cfg *Config) error
}

// FileConfigProvider layers defaults, then the YAML file, then the
// environment. A missing file is not an error.
type FileConfigProvider struct {
	path     string
	validate *validator.Validate
}

func NewFileConfigProvider(path string) *FileConfigProvider {
	return &FileConfigProvider{
		path:     path,
		validate: validator.New(),
	}
}

func defaults() Config {
	return Config{
		App: AppConfig{
			Name:    "weather-lookup",
			Version: "1.0.0",
			Env:     "development",
		},
		Server: ServerConfig{
			Port:         "8080",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  120 * time.Second,
		},
		Weather: WeatherConfig{
			BaseURL:         "https://api.weatherapi.com/v1/",
			Timeout:         10 * time.Second,
			BreakerFailures: 5,
			BreakerTimeout:  30 * time.Second,
		},
		Preferences: PreferencesConfig{
			Namespace: "weather-lookup:prefs",
		},
		Scheduler: SchedulerConfig{
			RefreshInterval: 15 * time.Minute,
		},
		Search: SearchConfig{
			Concurrency: 4,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

func (p *FileConfigProvider) Load() (*Config, error) {
	cfg := defaults()

	yamlData, err := os.ReadFile(p.path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(yamlData, &cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", p.path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("reading %s: %w", p.path, err)
	}

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("error environment variable parsing: %w", err)
	}

	return &cfg, nil
}

func (p *FileConfigProvider) Validate(cfg *Config) error {
	if err := p.validate.Struct(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func NewConfigWithProvider(p ConfigProvider) (*Config, error) {
	cfg, err := p.Load()
	if err != nil {
		return nil, err
	}
	if err := p.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// NewConfig reads the file named by CONFIG_FILE, or DefaultConfigFile.
func NewConfig() (*Config, error) {
	path := os.Getenv("CONFIG_FILE")
	if path == "" {
		path = DefaultConfigFile
	}
	return NewConfigWithProvider(NewFileConfigProvider(path))
}
