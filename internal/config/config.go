// Package config loads UnivMarket configuration from the environment.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	defaultRunAddress    = "localhost:5000"
	defaultLogLevel      = "info"
	defaultStaticDir     = "dist/public"
	defaultDataDirName   = ".univmarket"
	defaultRemoteBaseURL = "http://localhost:5000"
	defaultProbeSeconds  = 30
	defaultRemoteTimeout = 15
)

// Config holds all runtime settings for the server and the offline core.
type Config struct {
	RunAddress    string `mapstructure:"run_address"`
	LogLevel      string `mapstructure:"log_level"`
	DataDir       string `mapstructure:"data_dir"`
	StaticDir     string `mapstructure:"static_dir"`
	RemoteBaseURL string `mapstructure:"remote_base_url"`
	RemoteTimeout int    `mapstructure:"remote_timeout_seconds"`
	ProbeInterval int    `mapstructure:"probe_interval_seconds"`
	ImgBBAPIKey   string `mapstructure:"imgbb_api_key"`

	// Firebase web config, served verbatim to the client.
	FirebaseAPIKey            string `mapstructure:"firebase_api_key"`
	FirebaseProjectID         string `mapstructure:"firebase_project_id"`
	FirebaseMessagingSenderID string `mapstructure:"firebase_messaging_sender_id"`
	FirebaseAppID             string `mapstructure:"firebase_app_id"`
}

// Load reads configuration from a .env file (when present) and the
// environment, applying defaults for anything unset.
func Load() (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return nil, err
		}
	}

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("RUN_ADDRESS", defaultRunAddress)
	v.SetDefault("LOG_LEVEL", defaultLogLevel)
	v.SetDefault("STATIC_DIR", defaultStaticDir)
	v.SetDefault("REMOTE_BASE_URL", defaultRemoteBaseURL)
	v.SetDefault("REMOTE_TIMEOUT_SECONDS", defaultRemoteTimeout)
	v.SetDefault("PROBE_INTERVAL_SECONDS", defaultProbeSeconds)

	dataDir := v.GetString("DATA_DIR")
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		dataDir = filepath.Join(home, defaultDataDirName)
	}

	cfg := &Config{
		RunAddress:                v.GetString("RUN_ADDRESS"),
		LogLevel:                  v.GetString("LOG_LEVEL"),
		DataDir:                   dataDir,
		StaticDir:                 v.GetString("STATIC_DIR"),
		RemoteBaseURL:             v.GetString("REMOTE_BASE_URL"),
		RemoteTimeout:             v.GetInt("REMOTE_TIMEOUT_SECONDS"),
		ProbeInterval:             v.GetInt("PROBE_INTERVAL_SECONDS"),
		ImgBBAPIKey:               v.GetString("IMGBB_API_KEY"),
		FirebaseAPIKey:            v.GetString("FIREBASE_API_KEY"),
		FirebaseProjectID:         v.GetString("FIREBASE_PROJECT_ID"),
		FirebaseMessagingSenderID: v.GetString("FIREBASE_MESSAGING_SENDER_ID"),
		FirebaseAppID:             v.GetString("FIREBASE_APP_ID"),
	}

	return cfg, nil
}

// RemoteTimeoutDuration returns the remote client timeout as a duration.
func (c *Config) RemoteTimeoutDuration() time.Duration {
	return time.Duration(c.RemoteTimeout) * time.Second
}

// ProbeIntervalDuration returns the connectivity probe interval as a duration.
func (c *Config) ProbeIntervalDuration() time.Duration {
	return time.Duration(c.ProbeInterval) * time.Second
}
