package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Env          string `mapstructure:"ENV"`
	LogLevel     string `mapstructure:"LOG_LEVEL"`
	Port         string `mapstructure:"PORT"`
	Count        int    `mapstructure:"RECIPIENT_COUNT"`
	OutputPath   string `mapstructure:"OUTPUT_PATH"`
	OutputFormat string `mapstructure:"OUTPUT_FORMAT"`
	Shape        string `mapstructure:"RECORD_SHAPE"`
	Seed         int64  `mapstructure:"SEED"`
	CatalogPath  string `mapstructure:"CATALOG_PATH"`
}

const (
	FormatJSON   = "json"
	FormatNDJSON = "ndjson"
)

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("ENV", "production")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("PORT", "8000")
	v.SetDefault("RECIPIENT_COUNT", 10)
	v.SetDefault("OUTPUT_PATH", "receptores.json")
	v.SetDefault("OUTPUT_FORMAT", FormatJSON)
	v.SetDefault("RECORD_SHAPE", "full")
	v.SetDefault("SEED", 0)
	v.SetDefault("CATALOG_PATH", "")

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("ENV")
	v.BindEnv("LOG_LEVEL")
	v.BindEnv("PORT")
	v.BindEnv("RECIPIENT_COUNT")
	v.BindEnv("OUTPUT_PATH")
	v.BindEnv("OUTPUT_FORMAT")
	v.BindEnv("RECORD_SHAPE")
	v.BindEnv("SEED")
	v.BindEnv("CATALOG_PATH")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.OutputFormat = strings.ToLower(cfg.OutputFormat)
	cfg.Shape = strings.ToLower(cfg.Shape)

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// Validate rejects values the generator cannot act on. Shapes are checked
// by the recipient package when the generator is built.
func (c *Config) Validate() error {
	if c.Count < 0 {
		return fmt.Errorf("RECIPIENT_COUNT must not be negative, got %d", c.Count)
	}
	if c.OutputPath == "" {
		return fmt.Errorf("OUTPUT_PATH is required")
	}
	if c.OutputFormat != FormatJSON && c.OutputFormat != FormatNDJSON {
		return fmt.Errorf("OUTPUT_FORMAT must be %q or %q, got %q", FormatJSON, FormatNDJSON, c.OutputFormat)
	}
	if c.Shape != "full" && c.Shape != "short" {
		return fmt.Errorf("RECORD_SHAPE must be \"full\" or \"short\", got %q", c.Shape)
	}
	return nil
}
