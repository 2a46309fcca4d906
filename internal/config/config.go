package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

const EnvPrefix = "UNITVIEW"

type Config struct {
	UnitsPath     string
	DataPath      string
	Document      string
	ListenAddr    string
	LogLevel      string
	LogPretty     bool
	DevLog        string
	Watch         bool
	WatchDebounce time.Duration
	WriteTimeout  time.Duration
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("units_path", "")
	v.SetDefault("data_path", "~/.unitview")
	v.SetDefault("document", "")
	v.SetDefault("listen_addr", "127.0.0.1:3000")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_pretty", false)
	v.SetDefault("dev_log", "")
	v.SetDefault("watch", true)
	v.SetDefault("watch_debounce", 200*time.Millisecond)
	v.SetDefault("write_timeout", 5*time.Second)
}

// Load reads .env, then .unitview.yaml from UNITVIEW_CONFIG_PATH or the
// working directory, then UNITVIEW_* variables, later sources winning.
func Load() (Config, error) {
	initEnvFile()

	v := viper.New()
	setDefaults(v)
	v.SetConfigName(".unitview")
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	if override := os.Getenv(EnvPrefix + "_CONFIG_PATH"); override != "" {
		v.AddConfigPath(override)
	}
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}
	return fromViper(v)
}

func fromViper(v *viper.Viper) (Config, error) {
	cfg := Config{
		Document:      strings.TrimSpace(v.GetString("document")),
		ListenAddr:    v.GetString("listen_addr"),
		LogLevel:      v.GetString("log_level"),
		LogPretty:     v.GetBool("log_pretty"),
		Watch:         v.GetBool("watch"),
		WatchDebounce: v.GetDuration("watch_debounce"),
		WriteTimeout:  v.GetDuration("write_timeout"),
	}
	var err error
	if cfg.UnitsPath, err = ExpandPath(v.GetString("units_path")); err != nil {
		return Config{}, err
	}
	if cfg.DataPath, err = ExpandPath(v.GetString("data_path")); err != nil {
		return Config{}, err
	}
	if cfg.DevLog, err = ExpandPath(v.GetString("dev_log")); err != nil {
		return Config{}, err
	}
	if cfg.DataPath == "" {
		return Config{}, fmt.Errorf("data path is required")
	}
	if cfg.WatchDebounce <= 0 {
		cfg.WatchDebounce = 200 * time.Millisecond
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 5 * time.Second
	}
	return cfg, nil
}

// ExpandPath expands a leading ~ and makes p absolute. Empty stays empty.
func ExpandPath(p string) (string, error) {
	p = strings.TrimSpace(p)
	if p == "" {
		return "", nil
	}
	expanded, err := homedir.Expand(p)
	if err != nil {
		return "", fmt.Errorf("expand %q: %w", p, err)
	}
	return filepath.Abs(expanded)
}
