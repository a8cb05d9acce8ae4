package config

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/spf13/viper"

	"gamefilm/timeline"
)

type Config struct {
	Port        string `mapstructure:"port"`
	FootagePath string `mapstructure:"footage_path"`
	DataPath    string `mapstructure:"data_path"`

	DBDriver string `mapstructure:"db_driver"`
	DBDSN    string `mapstructure:"db_dsn"`

	GridMs            int64  `mapstructure:"grid_ms"`
	MinClipMs         int64  `mapstructure:"min_clip_ms"`
	GapPolicy         string `mapstructure:"gap_policy"`
	ResumeToleranceMs int64  `mapstructure:"resume_tolerance_ms"`

	Watch        bool  `mapstructure:"watch"`
	MaxBodyBytes int64 `mapstructure:"max_body_bytes"`

	MetricsEnabled    bool   `mapstructure:"metrics_enabled"`
	SentryDSN         string `mapstructure:"sentry_dsn"`
	SentryEnvironment string `mapstructure:"sentry_environment"`
	Release           string `mapstructure:"release"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("footage_path", "/footage")
	v.SetDefault("data_path", "/config")
	v.SetDefault("db_driver", "sqlite3")
	v.SetDefault("db_dsn", "")
	v.SetDefault("grid_ms", timeline.DefaultGridMs)
	v.SetDefault("min_clip_ms", timeline.DefaultMinClipDurationMs)
	v.SetDefault("gap_policy", "skip")
	v.SetDefault("resume_tolerance_ms", timeline.ResumeToleranceMs)
	v.SetDefault("watch", true)
	v.SetDefault("max_body_bytes", 1<<20)
	v.SetDefault("metrics_enabled", true)
	v.SetDefault("sentry_dsn", "")
	v.SetDefault("sentry_environment", "production")
	v.SetDefault("release", "dev")
}

// Load reads configuration from defaults, an optional gamefilm.{yaml,toml,json}
// file and GAMEFILM_* environment variables, in increasing precedence. An
// explicit file path must exist.
func Load(file string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("GAMEFILM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", file, err)
		}
		log.Printf("[CONFIG] Loaded %s", file)
	} else {
		v.SetConfigName("gamefilm")
		v.AddConfigPath(".")
		v.AddConfigPath("/config")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("reading config: %w", err)
			}
		} else {
			log.Printf("[CONFIG] Loaded %s", v.ConfigFileUsed())
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.GridMs < 0 {
		return fmt.Errorf("grid_ms must not be negative, got %d", c.GridMs)
	}
	if c.MinClipMs < 0 {
		return fmt.Errorf("min_clip_ms must not be negative, got %d", c.MinClipMs)
	}
	if c.ResumeToleranceMs < 0 {
		return fmt.Errorf("resume_tolerance_ms must not be negative, got %d", c.ResumeToleranceMs)
	}
	if _, err := timeline.ParseGapPolicy(c.GapPolicy); err != nil {
		return err
	}
	switch c.DBDriver {
	case "sqlite3", "postgres":
	default:
		return fmt.Errorf("unsupported db_driver %q", c.DBDriver)
	}
	if c.DBDriver == "postgres" && c.DBDSN == "" {
		return errors.New("db_dsn is required for postgres")
	}
	return nil
}

// Engine builds a mutation engine with the configured grid and minimum clip length.
func (c *Config) Engine() *timeline.Engine {
	e := timeline.NewEngine()
	e.GridMs = c.GridMs
	e.MinClipDurationMs = c.MinClipMs
	return e
}

func (c *Config) Policy() timeline.GapPolicy {
	p, _ := timeline.ParseGapPolicy(c.GapPolicy)
	return p
}
