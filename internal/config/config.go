package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ErrInvalid is wrapped by every validation error Load returns.
var ErrInvalid = errors.New("invalid configuration")

// Config holds all runtime configuration for a sarf session.
// Values are populated from .sarf.yaml, SARF_* env vars, and CLI flags.
type Config struct {
	APIURL        string        `mapstructure:"api_url"`
	Timeout       time.Duration `mapstructure:"timeout"`
	RulesPath     string        `mapstructure:"rules_path"`
	TelemetryPath string        `mapstructure:"telemetry_path"`
	JournalPath   string        `mapstructure:"journal_path"`
	SortOrder     string        `mapstructure:"sort_order"`
	ResultTTL     time.Duration `mapstructure:"result_ttl"`
	Verbose       bool          `mapstructure:"verbose"`
}

// Load reads configuration from viper, applying built-in defaults for any
// values not set by config file, environment, or flags.
func Load() (Config, error) {
	viper.SetDefault("api_url", "http://localhost:8080/api")
	viper.SetDefault("timeout", 30*time.Second)
	viper.SetDefault("rules_path", "")
	viper.SetDefault("telemetry_path", ".sarf/telemetry.jsonl")
	viper.SetDefault("journal_path", ".sarf/journal.db")
	viper.SetDefault("sort_order", "asc")
	viper.SetDefault("result_ttl", time.Duration(0))
	viper.SetDefault("verbose", false)

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	cfg.SortOrder = strings.ToLower(strings.TrimSpace(cfg.SortOrder))
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail later and less clearly.
func (c Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: api_url %q must be an absolute http(s) URL", ErrInvalid, c.APIURL)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("%w: timeout %s is negative", ErrInvalid, c.Timeout)
	}
	if c.ResultTTL < 0 {
		return fmt.Errorf("%w: result_ttl %s is negative", ErrInvalid, c.ResultTTL)
	}
	switch c.SortOrder {
	case "asc", "desc":
	default:
		return fmt.Errorf("%w: sort_order %q must be asc or desc", ErrInvalid, c.SortOrder)
	}
	return nil
}
