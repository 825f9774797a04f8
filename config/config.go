// Package config loads the chainxt command configuration from YAML with
// environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/blockberries/chainxt/codec"
	"github.com/blockberries/chainxt/types"
)

// Defaults for a fresh configuration.
const (
	DefaultEndpoint      = "127.0.0.1:9944"
	DefaultBackoff       = 10 * time.Second
	DefaultStart         = 1
	DefaultLimit         = 50
	DefaultCheckpointKey = "watch"
	DefaultSubject       = "chainxt.events"
)

// ShapeConfig is the YAML form of a codec.Shape.
type ShapeConfig struct {
	Kind  string `yaml:"kind"`
	Width int    `yaml:"width,omitempty"`
}

// RuntimeConfig names the concrete types of the target runtime.
type RuntimeConfig struct {
	Name      string      `yaml:"name"`
	AccountID ShapeConfig `yaml:"account_id"`
	Hash      ShapeConfig `yaml:"hash"`
	Balance   ShapeConfig `yaml:"balance"`
	Gas       ShapeConfig `yaml:"gas"`
}

type RateLimitConfig struct {
	RPS   float64 `yaml:"rps"` // 0 disables the limit.
	Burst int     `yaml:"burst"`
}

type PollerConfig struct {
	Start   uint32        `yaml:"start"`
	Limit   uint32        `yaml:"limit"`
	Backoff time.Duration `yaml:"backoff"`
}

type CheckpointConfig struct {
	RedisURL string `yaml:"redis_url"` // Empty keeps checkpoints in memory.
	Key      string `yaml:"key"`
	Prefix   string `yaml:"prefix"`
}

type SinkConfig struct {
	NatsURL string `yaml:"nats_url"` // Empty disables publishing.
	Subject string `yaml:"subject"`
}

type MetricsConfig struct {
	Listen string `yaml:"listen"` // Empty disables the /metrics endpoint.
}

type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// Config holds the command configuration.
type Config struct {
	Endpoint   string           `yaml:"endpoint"`
	RateLimit  RateLimitConfig  `yaml:"rate_limit"`
	Runtime    RuntimeConfig    `yaml:"runtime"`
	Poller     PollerConfig     `yaml:"poller"`
	Checkpoint CheckpointConfig `yaml:"checkpoint"`
	Sink       SinkConfig       `yaml:"sink"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	Log        LogConfig        `yaml:"log"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Endpoint: DefaultEndpoint,
		Runtime: RuntimeConfig{
			Name:      "default",
			AccountID: ShapeConfig{Kind: "fixed", Width: types.HashLen},
			Hash:      ShapeConfig{Kind: "fixed", Width: types.HashLen},
			Balance:   ShapeConfig{Kind: "uint", Width: 16},
			Gas:       ShapeConfig{Kind: "uint", Width: 8},
		},
		Poller: PollerConfig{
			Start:   DefaultStart,
			Limit:   DefaultLimit,
			Backoff: DefaultBackoff,
		},
		Checkpoint: CheckpointConfig{Key: DefaultCheckpointKey, Prefix: "chainxt:cursor:"},
		Sink:       SinkConfig{Subject: DefaultSubject},
		Log:        LogConfig{Level: "info"},
	}
}

// Load reads the YAML file at path over the defaults, applies
// environment overrides and validates the result. An empty path skips
// the file.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from CHAINXT_* environment variables.
func (c *Config) ApplyEnv() error {
	c.Endpoint = getEnvWithDefault("CHAINXT_ENDPOINT", c.Endpoint)
	c.Checkpoint.RedisURL = getEnvWithDefault("CHAINXT_REDIS_URL", c.Checkpoint.RedisURL)
	c.Sink.NatsURL = getEnvWithDefault("CHAINXT_NATS_URL", c.Sink.NatsURL)

	var err error
	if c.Poller.Start, err = getEnvAsUint32("CHAINXT_START", c.Poller.Start); err != nil {
		return err
	}
	if c.Poller.Limit, err = getEnvAsUint32("CHAINXT_LIMIT", c.Poller.Limit); err != nil {
		return err
	}
	if c.Poller.Backoff, err = getEnvAsDuration("CHAINXT_BACKOFF", c.Poller.Backoff); err != nil {
		return err
	}
	return nil
}

// Validate checks the configuration for values the command cannot run
// with.
func (c *Config) Validate() error {
	var errs []error
	if c.Endpoint == "" {
		errs = append(errs, errors.New("endpoint is required"))
	}
	if c.Poller.Backoff <= 0 {
		errs = append(errs, fmt.Errorf("poller.backoff must be positive, got %s", c.Poller.Backoff))
	}
	if c.Poller.Limit <= c.Poller.Start {
		errs = append(errs, fmt.Errorf("poller.limit (%d) must exceed poller.start (%d)", c.Poller.Limit, c.Poller.Start))
	}
	if c.RateLimit.RPS < 0 || (c.RateLimit.RPS > 0 && c.RateLimit.Burst < 1) {
		errs = append(errs, fmt.Errorf("rate_limit needs rps >= 0 and burst >= 1 when enabled"))
	}
	if _, err := c.Runtime.Runtime(); err != nil {
		errs = append(errs, err)
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// Shape converts the YAML form into a codec.Shape. An empty kind is the
// zero shape, which satisfies no capability.
func (s ShapeConfig) Shape() (codec.Shape, error) {
	if s.Kind == "" {
		return codec.Shape{}, nil
	}
	kind, err := codec.ParseKind(s.Kind)
	if err != nil {
		return codec.Shape{}, err
	}
	switch kind {
	case codec.KindFixed, codec.KindUint:
		if s.Width < 1 || s.Width > 32 {
			return codec.Shape{}, fmt.Errorf("%s shape needs width 1..32, got %d", kind, s.Width)
		}
		return codec.Shape{Kind: kind, Width: s.Width}, nil
	}
	return codec.Shape{Kind: kind}, nil
}

// Runtime converts the YAML form into a types.Runtime.
func (r RuntimeConfig) Runtime() (types.Runtime, error) {
	rt := types.Runtime{Name: r.Name}
	fields := []struct {
		name string
		cfg  ShapeConfig
		dst  *codec.Shape
	}{
		{"account_id", r.AccountID, &rt.AccountID},
		{"hash", r.Hash, &rt.Hash},
		{"balance", r.Balance, &rt.Balance},
		{"gas", r.Gas, &rt.Gas},
	}
	for _, f := range fields {
		s, err := f.cfg.Shape()
		if err != nil {
			return types.Runtime{}, fmt.Errorf("runtime.%s: %w", f.name, err)
		}
		*f.dst = s
	}
	return rt, nil
}

// getEnvWithDefault returns environment variable or default value
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsUint32(key string, defaultValue uint32) (uint32, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.ParseUint(value, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return uint32(n), nil
}

func getEnvAsDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return d, nil
}
