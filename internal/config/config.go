package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	ServerURL      string        `mapstructure:"server_url"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	SessionDBPath  string        `mapstructure:"session_db_path"`
	LogPath        string        `mapstructure:"log_path"`
	LogLevel       string        `mapstructure:"log_level"`
}

func Default() Config {
	return Config{
		ServerURL:      "http://localhost:8080",
		RequestTimeout: 30 * time.Second,
		LogLevel:       "info",
	}
}

func DefaultConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "icrs", "config.yaml"), nil
}

func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}

// Load reads the config file at path (missing file is fine, defaults apply)
// and lets ICRS_* environment variables override every key.
func Load(path string) (Config, error) {
	defaults := Default()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("icrs")
	v.AutomaticEnv()

	v.SetDefault("server_url", defaults.ServerURL)
	v.SetDefault("request_timeout", defaults.RequestTimeout)
	v.SetDefault("session_db_path", "")
	v.SetDefault("log_path", "")
	v.SetDefault("log_level", defaults.LogLevel)

	if err := v.ReadInConfig(); err != nil {
		if !os.IsNotExist(err) {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if config.SessionDBPath == "" {
		config.SessionDBPath = filepath.Join(filepath.Dir(path), "session.db")
	}
	if config.LogPath == "" {
		config.LogPath = filepath.Join(filepath.Dir(path), "icrs.log")
	}
	return config, nil
}
