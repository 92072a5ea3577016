// Package config loads nplmerge settings from nplmerge.yaml, NPLMERGE_*
// environment variables and command-line flags, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/viper"

	"github.com/LiXizhi/nplmerge/buffer"
	"github.com/LiXizhi/nplmerge/internal/logging"
)

const (
	EnvPrefix = "NPLMERGE"
	FileName  = "nplmerge"
)

type Config struct {
	// LineEndingName is auto, lf, crlf or cr.
	LineEndingName string          `mapstructure:"line_ending"`
	Watch          bool            `mapstructure:"watch"`
	Log            LogConfig       `mapstructure:"log"`
	Telemetry      TelemetryConfig `mapstructure:"telemetry"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

type TelemetryConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// LineEnding returns the configured ending. LineEndingAuto means detect per
// document.
func (c *Config) LineEnding() buffer.LineEnding {
	e, _ := buffer.ParseLineEnding(c.LineEndingName)
	return e
}

// Logging converts the log section for logging.New.
func (c *Config) Logging() logging.Config {
	lvl, _ := logging.ParseLevel(c.Log.Level)
	return logging.Config{Level: lvl, JSON: c.Log.JSON, Service: "nplmerge"}
}

func (c *Config) Validate() error {
	if _, err := buffer.ParseLineEnding(c.LineEndingName); err != nil {
		return fmt.Errorf("line_ending: %w", err)
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return nil
}

// NewViper returns a viper instance reading from fs with defaults and
// environment binding in place. Callers may bind flags before Load.
func NewViper(fs afero.Fs) *viper.Viper {
	v := viper.New()
	if fs != nil {
		v.SetFs(fs)
	}
	v.SetDefault("line_ending", "auto")
	v.SetDefault("watch", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)
	v.SetDefault("telemetry.enabled", true)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads path, or nplmerge.yaml from the working directory when path is
// empty. A missing default file is not an error; a missing explicit one is.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
