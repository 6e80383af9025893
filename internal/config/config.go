// Package config loads gisops settings from defaults, an optional TOML file
// and GISOPS_* environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Config struct {
	Log    LogConfig    `mapstructure:"log"`
	Buffer BufferConfig `mapstructure:"buffer"`
	Batch  BatchConfig  `mapstructure:"batch"`
	Server ServerConfig `mapstructure:"server"`
}

// LogConfig controls level and rotation. An empty File means the caller's
// default sink.
type LogConfig struct {
	Level      string `mapstructure:"level"       validate:"oneof=debug info warn error"`
	File       string `mapstructure:"file"`
	MaxSize    int    `mapstructure:"max_size"    validate:"gte=0"` // MB
	MaxBackups int    `mapstructure:"max_backups" validate:"gte=0"`
	MaxAge     int    `mapstructure:"max_age"     validate:"gte=0"` // days
	Compress   bool   `mapstructure:"compress"`
}

type BufferConfig struct {
	QuadrantSegments int `mapstructure:"quadrant_segments" validate:"min=1,max=64"`
	// Distance used by the viewer; 0 picks 2% of the data extent.
	Distance float64 `mapstructure:"distance" validate:"gte=0"`
}

type BatchConfig struct {
	Workers int `mapstructure:"workers" validate:"min=1,max=256"`
}

type ServerConfig struct {
	Addr            string        `mapstructure:"addr"             validate:"required"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size", 10)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age", 7)
	v.SetDefault("log.compress", false)
	v.SetDefault("buffer.quadrant_segments", 8)
	v.SetDefault("buffer.distance", 0.0)
	v.SetDefault("batch.workers", 8)
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.shutdown_timeout", 5*time.Second)
}

// Default returns the built-in settings. The environment is not consulted.
func Default() Config {
	v := viper.New()
	setDefaults(v)
	var c Config
	// the defaults decode into Config without conversion errors
	_ = v.Unmarshal(&c)
	return c
}

// Load reads path (skipped when empty), applies environment overrides and
// validates the result.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("GISOPS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config error: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config error: %w", err)
	}
	if err := validator.New().Struct(c); err != nil {
		return Config{}, fmt.Errorf("config validation failed: %w", err)
	}
	return c, nil
}
