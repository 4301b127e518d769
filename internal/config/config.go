// Package config provides application configuration loading and management.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration values loaded from file or environment variables.
type Config struct {
	ServerURL      string        `mapstructure:"SERVER_URL"`
	RequestTimeout time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	SessionFile    string        `mapstructure:"SESSION_FILE"`
	LogLevel       string        `mapstructure:"LOG_LEVEL"`
	Env            string        `mapstructure:"APP_ENV"`
}

// LoadConfig loads application configuration from file and environment variables.
func LoadConfig() (*Config, error) {
	viper.AddConfigPath(".")
	viper.SetConfigName("config")
	viper.SetConfigType("yml")
	viper.AutomaticEnv()

	// The config file is optional; env vars and defaults cover everything.
	_ = viper.ReadInConfig()

	viper.SetDefault("SERVER_URL", "http://localhost:8080")
	viper.SetDefault("REQUEST_TIMEOUT", 15*time.Second)
	viper.SetDefault("SESSION_FILE", defaultSessionFile())
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("APP_ENV", "development")

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// defaultSessionFile places the persisted session under the user config
// directory, falling back to the working directory when it is unavailable.
func defaultSessionFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".parley-session.json"
	}
	return filepath.Join(dir, "parley", "session.json")
}
