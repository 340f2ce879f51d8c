package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"github.com/uyouii/isotherm-augmentor/fitting"
	"gopkg.in/yaml.v3"
)

const EnvPrefix = "ISOTHERM"

type Config struct {
	Server  ServerConfig  `yaml:"server" envconfig:"SERVER"`
	Logging LoggingConfig `yaml:"logging" envconfig:"LOGGING"`
	Fitting FittingConfig `yaml:"fitting" envconfig:"FITTING"`
}

type ServerConfig struct {
	Addr            string        `yaml:"addr" envconfig:"ADDR" validate:"required"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" validate:"gt=0"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" validate:"gt=0"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" validate:"gt=0"`
	MaxUploadBytes  int64         `yaml:"max_upload_bytes" envconfig:"MAX_UPLOAD_BYTES" validate:"gt=0"`
}

type LoggingConfig struct {
	Level       string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn error"`
	Development bool   `yaml:"development" envconfig:"DEVELOPMENT"`
}

// FittingConfig holds the request defaults used when a form field is omitted.
type FittingConfig struct {
	NPoints    int     `yaml:"n_points" envconfig:"N_POINTS" validate:"min=3"`
	SmoothingS float64 `yaml:"smoothing_s" envconfig:"SMOOTHING_S" validate:"gte=0"`
	PolyDegree int     `yaml:"poly_degree" envconfig:"POLY_DEGREE" validate:"min=1,max=10"`
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			MaxUploadBytes:  32 << 20,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Fitting: FittingConfig{
			NPoints:    fitting.DefaultGridPoints,
			SmoothingS: fitting.DefaultSmoothingS,
			PolyDegree: fitting.DefaultPolyDegree,
		},
	}
}

// Load builds the configuration from defaults, then the optional YAML file at
// path, then ISOTHERM_* environment variables. Later sources win.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFromFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

func (c *Config) Validate() error {
	return validator.New().Struct(c)
}
