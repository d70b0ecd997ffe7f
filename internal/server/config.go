package server

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"

	"github.com/mindmirror/backend/internal/config"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTesting     = "testing"
)

func LoadConfig() (*config.AppConfig, error) {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = EnvDevelopment
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath("./config/server")
	v.AutomaticEnv()

	// Secrets come from the environment, never from the config file.
	_ = v.BindEnv("auth.access_token_secret", "AUTH_ACCESS_TOKEN_SECRET")
	_ = v.BindEnv("auth.refresh_token_secret", "AUTH_REFRESH_TOKEN_SECRET")
	_ = v.BindEnv("database.password", "DATABASE_PASSWORD")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var cfg config.AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	applyDefaults(&cfg.Auth, &cfg.Maintenance)

	if err := validateAuthConfig(&cfg.Auth); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func applyDefaults(auth *config.AuthConfig, maintenance *config.MaintenanceConfig) {
	if auth.AccessTokenDuration == 0 {
		auth.AccessTokenDuration = 15 * time.Minute
	}
	if auth.RefreshTokenDuration == 0 {
		auth.RefreshTokenDuration = 7 * 24 * time.Hour
	}
	if auth.MaxLoginAttempts == 0 {
		auth.MaxLoginAttempts = 5
	}
	if auth.LockoutDuration == 0 {
		auth.LockoutDuration = 30 * time.Minute
	}
	if maintenance.CleanupSchedule == "" {
		maintenance.CleanupSchedule = "@hourly"
	}
	if maintenance.RetentionWindow == 0 {
		maintenance.RetentionWindow = 30 * 24 * time.Hour
	}
}

// validateAuthConfig refuses to start without distinct signing secrets.
// There is intentionally no fallback value.
func validateAuthConfig(auth *config.AuthConfig) error {
	if auth.AccessTokenSecret == "" {
		return errors.New("auth.access_token_secret is required")
	}
	if auth.RefreshTokenSecret == "" {
		return errors.New("auth.refresh_token_secret is required")
	}
	if auth.AccessTokenSecret == auth.RefreshTokenSecret {
		return errors.New("access and refresh token secrets must differ")
	}
	return nil
}
