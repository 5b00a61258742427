// Package config provides configuration loading from YAML files.
package config

import (
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/soundbridge/soundbridge/internal/engine"
)

// Config represents the application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Engine   EngineConfig   `yaml:"engine"`
	Playback PlaybackConfig `yaml:"playback"`
	Catalog  CatalogConfig  `yaml:"catalog"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig represents the remote-control API configuration.
type ServerConfig struct {
	Addr string `yaml:"addr" default:":8307"`
}

// EngineConfig represents the engine buffering and background policy.
// The bool fields are pointers so an explicit false in the file is not
// mistaken for "unset" by the defaults pass; unset keeps the engine
// default.
type EngineConfig struct {
	WaitForBuffer        *bool `yaml:"wait_for_buffer"`
	MinBufferSec         int   `yaml:"min_buffer_sec" default:"15" validate:"gte=0,lte=120"`
	PlayBufferMs         int   `yaml:"play_buffer_ms" default:"2500" validate:"gte=0,lte=30000"`
	BackBufferSec        int   `yaml:"back_buffer_sec" default:"30" validate:"gte=0,lte=300"`
	MaxCacheMB           int   `yaml:"max_cache_mb" default:"50" validate:"gte=0,lte=2048"`
	ContinueInBackground *bool `yaml:"continue_in_background"`
	StopOnAppKilled      *bool `yaml:"stop_on_app_killed"`
}

// PlaybackConfig represents orchestrator policy knobs. A zero or unset
// threshold keeps the built-in default of 3 seconds.
type PlaybackConfig struct {
	PreviousRestartThresholdSec int `yaml:"previous_restart_threshold_sec" default:"3" validate:"gte=0,lte=30"`
}

// CatalogConfig represents the optional metadata catalog credentials.
type CatalogConfig struct {
	Enabled      bool   `yaml:"enabled"`
	ClientID     string `yaml:"client_id" validate:"required_if=Enabled true"`
	ClientSecret string `yaml:"client_secret" validate:"required_if=Enabled true"`
	RefreshToken string `yaml:"refresh_token" validate:"required_if=Enabled true"`
	Market       string `yaml:"market" validate:"omitempty,len=2"`
}

// LogConfig represents logging configuration.
type LogConfig struct {
	Level  string `yaml:"level" default:"info" validate:"oneof=debug info warn warning error"`
	Output string `yaml:"output" default:"stdout"`
}

// Default returns the configuration used when no file is given.
func Default() (*Config, error) {
	var cfg Config
	if err := defaults.Set(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}
	cfg.overrideFromEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Load loads configuration from a YAML file. Environment variables take
// precedence over file values for credentials.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse config file")
	}

	cfg.overrideFromEnv()

	if err := defaults.Set(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// overrideFromEnv overrides credentials with environment variables.
func (c *Config) overrideFromEnv() {
	if v := os.Getenv("CATALOG_CLIENT_ID"); v != "" {
		c.Catalog.ClientID = v
	}
	if v := os.Getenv("CATALOG_CLIENT_SECRET"); v != "" {
		c.Catalog.ClientSecret = v
	}
	if v := os.Getenv("CATALOG_REFRESH_TOKEN"); v != "" {
		c.Catalog.RefreshToken = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, "config validation failed")
	}
	return nil
}

// EngineOptions converts the engine section into engine setup options,
// keeping the defaults for anything unset.
func (c *Config) EngineOptions() engine.Options {
	opts := engine.DefaultOptions()
	if c.Engine.WaitForBuffer != nil {
		opts.WaitForBuffer = *c.Engine.WaitForBuffer
	}
	opts.MinBuffer = time.Duration(c.Engine.MinBufferSec) * time.Second
	opts.PlayBuffer = time.Duration(c.Engine.PlayBufferMs) * time.Millisecond
	opts.BackBuffer = time.Duration(c.Engine.BackBufferSec) * time.Second
	opts.MaxCacheSize = int64(c.Engine.MaxCacheMB) * 1024 * 1024
	if c.Engine.ContinueInBackground != nil {
		opts.ContinueInBackground = *c.Engine.ContinueInBackground
	}
	if c.Engine.StopOnAppKilled != nil {
		opts.StopOnAppKilled = *c.Engine.StopOnAppKilled
	}
	return opts
}

// PreviousRestartThreshold returns the skip-to-previous restart
// threshold as a duration.
func (c *Config) PreviousRestartThreshold() time.Duration {
	return time.Duration(c.Playback.PreviousRestartThresholdSec) * time.Second
}
