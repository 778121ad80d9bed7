// Package config loads Decomposer settings from YAML files and TWOSQUARES_*
// environment variables.
package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// envPrefix is the environment variable prefix for every setting
const envPrefix = "TWOSQUARES"

// Config holds the tunables of a Decomposer
type Config struct {
	// Workers is the number of goroutines used for large enumerations
	Workers int `mapstructure:"workers" validate:"gte=1,lte=1024"`
	// ParallelThreshold is the slot count from which enumeration is split
	// across workers
	ParallelThreshold int `mapstructure:"parallel_threshold" validate:"gte=0,lte=63"`
	// MaxSlots rejects combinations with more sign-choice slots; 0 disables
	// the limit
	MaxSlots int `mapstructure:"max_slots" validate:"gte=0,lte=63"`
	// Strategy is "sign-vectors" or "exponent-splits"
	Strategy string `mapstructure:"strategy" validate:"oneof=sign-vectors exponent-splits"`
	// PrimeCache enables memoization of prime decompositions
	PrimeCache bool `mapstructure:"prime_cache"`
	// ResultCacheSize bounds the number of cached results; 0 disables it
	ResultCacheSize int `mapstructure:"result_cache_size" validate:"gte=0"`

	Log LogConfig `mapstructure:"log"`
}

// LogConfig selects the zap logger built by NewLogger
type LogConfig struct {
	// Level is one of debug, info, warn, error
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
	// Format is json or console
	Format string `mapstructure:"format" validate:"oneof=json console"`
}

// Default returns the settings used when nothing is configured
func Default() *Config {
	return &Config{
		Workers:           4,
		ParallelThreshold: 16,
		MaxSlots:          32,
		Strategy:          "sign-vectors",
		PrimeCache:        true,
		ResultCacheSize:   128,
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// newViper returns a viper instance with defaults and env binding. Nested
// keys map to TWOSQUARES_LOG_LEVEL and so on.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	d := Default()
	v.SetDefault("workers", d.Workers)
	v.SetDefault("parallel_threshold", d.ParallelThreshold)
	v.SetDefault("max_slots", d.MaxSlots)
	v.SetDefault("strategy", d.Strategy)
	v.SetDefault("prime_cache", d.PrimeCache)
	v.SetDefault("result_cache_size", d.ResultCacheSize)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	return v
}

// Load reads the YAML file at path, applies environment overrides and
// validates the result.
func Load(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: failed to read %q: %w", path, err)
	}
	return unmarshal(v)
}

// LoadFromEnv builds a Config from defaults and environment variables only
func LoadFromEnv() (*Config, error) {
	return unmarshal(newViper())
}

func unmarshal(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var validate = validator.New()

// Validate checks every field against its constraints
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config: validation failed: %w", err)
	}
	return nil
}

// NewLogger builds a zap logger for the configured level and format
func (c *Config) NewLogger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	zc := zap.NewProductionConfig()
	if c.Log.Format == "console" {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}
