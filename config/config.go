// Package config loads process configuration via viper, grounded on
// the teacher's cmd/config.go flag/env-binding conventions, and
// implements the environment-variable surface from spec.md §6: TZ,
// LANG/LC_*, and PURC_TEST, plus a $SYS.env! writer for the variant
// package to expose as a dynamic variable.
package config

import (
	"fmt"
	"os"
	"strings"

	"dario.cat/mergo"
	"github.com/adrg/xdg"
	"github.com/spf13/viper"
)

// Config is the process-wide configuration, bound from (in ascending
// priority) defaults, a config file, and environment variables.
type Config struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`

	RunnerName    string `mapstructure:"runner_name"`
	MaxMovingMsgs int    `mapstructure:"max_moving_msgs"`

	Timezone string `mapstructure:"timezone"`
	Lang     string `mapstructure:"lang"`
	Test     bool   `mapstructure:"test"`

	DataDir string `mapstructure:"data_dir"`
}

func defaults() Config {
	dataDir, _ := xdg.DataFile("hvmi/data")
	return Config{
		Host:          "localhost",
		Port:          8080,
		RunnerName:    "main",
		MaxMovingMsgs: 1024,
		Timezone:      "UTC",
		Lang:          "C",
		DataDir:       dataDir,
	}
}

// Load reads configPath (if non-empty) over viper, merges it onto
// defaults with dario.cat/mergo (so a partial config file only
// overrides the keys it sets), and finally layers spec.md §6's
// observed environment variables on top.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("HVMI")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", configPath, err)
		}
	}

	cfg := defaults()
	var fromFile Config
	if err := v.Unmarshal(&fromFile); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := mergo.Merge(&cfg, fromFile, mergo.WithOverride); err != nil {
		return nil, fmt.Errorf("config: merge: %w", err)
	}

	applyObservedEnv(&cfg)
	return &cfg, nil
}

// applyObservedEnv layers spec.md §6's environment variables
// (TZ, LANG/LC_*, PURC_TEST) over whatever the config file set,
// since these are process-ambient overrides a user expects to win.
func applyObservedEnv(cfg *Config) {
	if tz := os.Getenv("TZ"); tz != "" {
		cfg.Timezone = tz
	}
	if lang := os.Getenv("LANG"); lang != "" {
		cfg.Lang = lang
	}
	for _, key := range []string{"LC_ALL", "LC_CTYPE", "LC_TIME", "LC_MESSAGES"} {
		if v := os.Getenv(key); v != "" {
			cfg.Lang = v
			break
		}
	}
	if os.Getenv("PURC_TEST") != "" {
		cfg.Test = true
	}
}

// Env returns the observed-environment snapshot as a plain map, for
// the variant package's $SYS.env dynamic getter to wrap.
func (c *Config) Env() map[string]string {
	return map[string]string{
		"TZ":   c.Timezone,
		"LANG": c.Lang,
	}
}

// SetEnv implements $SYS.env!'s setter contract: writing a key updates
// both the in-process Config and the actual OS environment variable,
// since downstream fetchers/loggers read from os.Getenv directly.
func (c *Config) SetEnv(key, value string) error {
	switch key {
	case "TZ":
		c.Timezone = value
	case "LANG":
		c.Lang = value
	}
	return os.Setenv(key, value)
}
