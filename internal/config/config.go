package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"libranet/internal/catalog"
)

const envPrefix = "LIBRANET"

type Config struct {
	Log       LogConfig       `mapstructure:"log"`
	Server    ServerConfig    `mapstructure:"server"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Catalog   CatalogConfig   `mapstructure:"catalog"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	RateLimit       float64       `mapstructure:"rate_limit"`
	Burst           int           `mapstructure:"burst"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type TelemetryConfig struct {
	ServiceName  string `mapstructure:"service_name"`
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
	Insecure     bool   `mapstructure:"insecure"`
}

// CatalogConfig lists the items a fresh catalog starts with.
type CatalogConfig struct {
	Seed []catalog.Description `mapstructure:"seed"`
}

func SetDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.rate_limit", 50.0)
	v.SetDefault("server.burst", 100)
	v.SetDefault("server.shutdown_timeout", 5*time.Second)

	v.SetDefault("telemetry.service_name", "libranet")
	v.SetDefault("telemetry.otlp_endpoint", "")
	v.SetDefault("telemetry.insecure", true)

	v.SetDefault("catalog.seed", []map[string]interface{}{
		{"id": 1, "type": "Book", "title": "Clean Code", "author": "Robert C. Martin", "page_count": 464},
		{"id": 2, "type": "AudioBook", "title": "Atomic Habits", "author": "James Clear", "duration_minutes": 510},
		{"id": 3, "type": "EMagazine", "title": "Tech Today", "author": "Editorial", "issue_number": 42},
	})
}

// New returns a viper instance with defaults, config search paths and
// LIBRANET_ environment overrides (LIBRANET_SERVER_ADDR for server.addr).
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)

	v.SetConfigName("libranet")
	v.SetConfigType("yaml")
	v.AddConfigPath("$HOME/.libranet")
	v.AddConfigPath(".")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// Load reads configFile, or libranet.yaml from the search paths if configFile
// is empty, and decodes the result. A missing libranet.yaml is not an error.
func Load(v *viper.Viper, configFile string) (Config, error) {
	if configFile != "" {
		v.SetConfigFile(configFile)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format: unknown format %q", c.Log.Format)
	}

	if c.Server.RateLimit < 0 {
		return fmt.Errorf("server.rate_limit: must not be negative")
	}
	if c.Server.RateLimit > 0 && c.Server.Burst < 1 {
		return fmt.Errorf("server.burst: must be at least 1 when rate limiting")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("server.shutdown_timeout: must be positive")
	}
	return nil
}

// Items builds the seed items in order.
func (c CatalogConfig) Items() ([]catalog.Item, error) {
	items := make([]catalog.Item, 0, len(c.Seed))
	for i, d := range c.Seed {
		item, err := catalog.NewItem(d)
		if err != nil {
			return nil, fmt.Errorf("catalog.seed[%d]: %w", i, err)
		}
		items = append(items, item)
	}
	return items, nil
}
