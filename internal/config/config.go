// Package config loads draftctl settings from config.yaml and the
// environment. Precedence is environment over file over defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// TrackerConfig holds the external tracker connection settings. An empty
// BaseURL means sync commands run against no tracker and fail fast.
type TrackerConfig struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

// Config is the resolved runtime configuration.
type Config struct {
	DBPath       string
	IDSeparator  string
	IDWidth      int
	ChangeTypes  []string
	TemplatePath string
	LogTarget    string
	Tracker      TrackerConfig
}

// Load reads configuration from ./.draftctl.yaml, then
// ~/.draftctl/config.yaml, with DRAFTCTL_* environment variables taking
// precedence over both.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	if home, err := os.UserHomeDir(); err == nil {
		v.SetDefault("db", filepath.Join(home, ".draftctl", "draftctl.db"))
		v.AddConfigPath(filepath.Join(home, ".draftctl"))
	} else {
		v.SetDefault("db", "draftctl.db")
	}
	v.SetDefault("id.separator", "-")
	v.SetDefault("id.width", 4)
	v.SetDefault("change_types", []string{})
	v.SetDefault("template", "")
	v.SetDefault("log", "")
	v.SetDefault("tracker.base_url", "")
	v.SetDefault("tracker.token", "")
	v.SetDefault("tracker.timeout", "10s")

	v.SetEnvPrefix("DRAFTCTL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// A project-local file beats the home-directory one.
	if wd, err := os.Getwd(); err == nil {
		local := filepath.Join(wd, ".draftctl.yaml")
		if _, statErr := os.Stat(local); statErr == nil {
			v.SetConfigFile(local)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	cfg := &Config{
		DBPath:       v.GetString("db"),
		IDSeparator:  v.GetString("id.separator"),
		IDWidth:      v.GetInt("id.width"),
		ChangeTypes:  v.GetStringSlice("change_types"),
		TemplatePath: v.GetString("template"),
		LogTarget:    v.GetString("log"),
		Tracker: TrackerConfig{
			BaseURL: v.GetString("tracker.base_url"),
			Token:   v.GetString("tracker.token"),
			Timeout: v.GetDuration("tracker.timeout"),
		},
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.DBPath == "" {
		return fmt.Errorf("config: db path is required")
	}
	if c.IDSeparator == "" {
		return fmt.Errorf("config: id.separator must not be empty")
	}
	if c.IDWidth < 1 || c.IDWidth > 10 {
		return fmt.Errorf("config: id.width %d out of range [1,10]", c.IDWidth)
	}
	if c.Tracker.Timeout <= 0 {
		return fmt.Errorf("config: tracker.timeout must be positive")
	}
	return nil
}
