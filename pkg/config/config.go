package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"FinSight/pkg/util"

	"github.com/creasty/defaults"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment" default:"development"`
	Server      struct {
		Host            string        `yaml:"host" default:"0.0.0.0"`
		Port            int           `yaml:"port" default:"8080"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"60s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
		CORS            bool          `yaml:"cors" default:"true"`
	} `yaml:"server"`
	Logging struct {
		Level         string        `yaml:"level" default:"info"`
		Format        string        `yaml:"format" default:"json"`
		Output        string        `yaml:"output" default:"stdout"`
		MaxSizeMB     int           `yaml:"max_size_mb" default:"100"`
		MaxBackups    int           `yaml:"max_backups" default:"3"`
		MaxAgeDays    int           `yaml:"max_age_days" default:"28"`
		CollectErrors bool          `yaml:"collect_errors"`
		FlushInterval time.Duration `yaml:"flush_interval" default:"30s"`
		Threshold     int           `yaml:"threshold" default:"100"`
		Topic         string        `yaml:"topic" default:"finsight.logs"`
	} `yaml:"logging"`
	Metrics struct {
		Enabled bool   `yaml:"enabled" default:"true"`
		Path    string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`
	Provider struct {
		APIKey     string        `yaml:"api_key"`
		BaseURL    string        `yaml:"base_url" default:"https://api.twelvedata.com"`
		Interval   string        `yaml:"interval" default:"1day"`
		OutputSize int           `yaml:"output_size" default:"365"`
		Timeout    time.Duration `yaml:"timeout" default:"15s"`
	} `yaml:"provider"`
	Store struct {
		Backend string `yaml:"backend" default:"memory"`
		Redis   struct {
			Addr     string        `yaml:"addr" default:"localhost:6379"`
			Password string        `yaml:"password"`
			DB       int           `yaml:"db"`
			Prefix   string        `yaml:"prefix" default:"finsight:series"`
			Timeout  time.Duration `yaml:"timeout" default:"2s"`
		} `yaml:"redis"`
	} `yaml:"store"`
	Forecast struct {
		MinObservations int           `yaml:"min_observations" default:"15"`
		Holdout         int           `yaml:"holdout" default:"5"`
		Horizon         int           `yaml:"horizon" default:"7"`
		HighAccuracy    float64       `yaml:"high_accuracy" default:"85"`
		Timeout         time.Duration `yaml:"timeout" default:"30s"`
	} `yaml:"forecast"`
	RateLimit struct {
		Enabled bool    `yaml:"enabled" default:"true"`
		Rate    float64 `yaml:"rate" default:"5"`
		Burst   int     `yaml:"burst" default:"10"`
	} `yaml:"ratelimit"`
	Kafka struct {
		Enabled      bool          `yaml:"enabled"`
		Brokers      []string      `yaml:"brokers"`
		Topic        string        `yaml:"topic" default:"finsight.events"`
		ClientID     string        `yaml:"client_id" default:"finsight"`
		RequiredAcks int           `yaml:"required_acks" default:"1"`
		Compression  string        `yaml:"compression" default:"snappy"`
		WriteTimeout time.Duration `yaml:"write_timeout" default:"5s"`
		Async        bool          `yaml:"async" default:"true"`
	} `yaml:"kafka"`
}

// Default returns a configuration populated from default tags only.
func Default() (*Config, error) {
	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("set defaults: %w", err)
	}
	return &c, nil
}

// Load reads a YAML configuration file on top of the defaults. A missing
// file yields the defaults.
func Load(path string) (*Config, error) {
	c, err := Default()
	if err != nil {
		return nil, err
	}

	b, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(b, c); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// LoadWithEnv loads .env (if present), the YAML file and then applies
// environment overrides.
func LoadWithEnv(path string) (*Config, error) {
	_ = godotenv.Load()

	c, err := Load(path)
	if err != nil {
		return nil, err
	}
	c.applyEnv()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("TWELVE_DATA_KEY"); v != "" {
		c.Provider.APIKey = v
	}
	c.Server.Port = util.ParseIntDefault(os.Getenv("PORT"), c.Server.Port)
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("STORE_BACKEND"); v != "" {
		c.Store.Backend = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Store.Redis.Addr = v
	}
	if v := util.SplitList(os.Getenv("KAFKA_BROKERS")); len(v) > 0 {
		c.Kafka.Brokers = v
		c.Kafka.Enabled = true
	}
	if v := os.Getenv("KAFKA_TOPIC"); v != "" {
		c.Kafka.Topic = v
	}
}

// Validate checks if the configuration is valid. The provider API key is
// not required here: a missing key surfaces as a configuration error when
// the provider is first called.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	if c.Store.Backend != "memory" && c.Store.Backend != "redis" {
		return fmt.Errorf("store.backend must be 'memory' or 'redis', got '%s'", c.Store.Backend)
	}
	if c.Provider.OutputSize <= 0 {
		return fmt.Errorf("provider.output_size must be positive")
	}
	if c.Forecast.Holdout <= 0 || c.Forecast.Horizon <= 0 {
		return fmt.Errorf("forecast.holdout and forecast.horizon must be positive")
	}
	if c.Forecast.MinObservations <= c.Forecast.Holdout+1 {
		return fmt.Errorf("forecast.min_observations must exceed holdout+1")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	return nil
}
