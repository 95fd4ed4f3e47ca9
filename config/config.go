package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	UIModeWeb      = "web"
	UIModeTerminal = "terminal"
)

// Config holds the application's configuration
type Config struct {
	LogLevel                string        `mapstructure:"LOG_LEVEL" validate:"oneof=debug info warn warning error"`
	UIMode                  string        `mapstructure:"UI_MODE" validate:"oneof=web terminal"`
	WebPort                 int           `mapstructure:"WEB_PORT" validate:"min=1,max=65535"`
	BackendURL              string        `mapstructure:"BACKEND_URL" validate:"required,url"`
	BackendTimeoutSeconds   int           `mapstructure:"BACKEND_TIMEOUT" validate:"min=0"`
	CopyFeedbackDelayMS     int           `mapstructure:"COPY_FEEDBACK_DELAY_MS" validate:"min=0"`
	PreferDarkMode          bool          `mapstructure:"PREFER_DARK_MODE"`
	SessionRetentionMinutes int           `mapstructure:"SESSION_RETENTION_AGE" validate:"min=0"`
	SessionCleanupMinutes   int           `mapstructure:"SESSION_CLEANUP_INTERVAL" validate:"min=0"`
	RateLimitQueriesPerMin  int           `mapstructure:"RATE_LIMIT_QUERIES_PER_MIN" validate:"min=1"`
	RateLimitUploadsPerHour int           `mapstructure:"RATE_LIMIT_UPLOADS_PER_HOUR" validate:"min=1"`
	RateLimitBurstSize      int           `mapstructure:"RATE_LIMIT_BURST_SIZE" validate:"min=1"`
	RateLimitMaxSessions    int           `mapstructure:"RATE_LIMIT_MAX_SESSIONS" validate:"min=1"`
	CORSAllowedOrigins      []string      `mapstructure:"CORS_ALLOWED_ORIGINS"`

	// Derived from the integer settings above by decode.
	BackendTimeout         time.Duration `mapstructure:"-"`
	CopyFeedbackDelay      time.Duration `mapstructure:"-"`
	SessionRetentionAge    time.Duration `mapstructure:"-"`
	SessionCleanupInterval time.Duration `mapstructure:"-"`
}

func Load(logger *zap.Logger) *Config {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")        // For running locally
	v.AddConfigPath("../")      // For running from docker subdir
	v.AddConfigPath("./config") // Common config folder
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if logger != nil {
			logger.Warn("Could not read config file, using defaults/env vars", zap.Error(err))
		}
	}

	cfg, err := decode(v)
	if err != nil {
		// Config decoding is critical - fail fast during bootstrap
		if logger != nil {
			logger.Fatal("Unable to decode config", zap.Error(err))
		}
		fmt.Fprintf(os.Stderr, "FATAL: Unable to decode config: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("UI_MODE", UIModeWeb)
	v.SetDefault("WEB_PORT", 8080)
	v.SetDefault("BACKEND_URL", "http://127.0.0.1:5000")
	v.SetDefault("BACKEND_TIMEOUT", 0)
	v.SetDefault("COPY_FEEDBACK_DELAY_MS", 2000)
	v.SetDefault("PREFER_DARK_MODE", false)
	v.SetDefault("SESSION_RETENTION_AGE", 120)
	v.SetDefault("SESSION_CLEANUP_INTERVAL", 10)
	v.SetDefault("RATE_LIMIT_QUERIES_PER_MIN", 20)
	v.SetDefault("RATE_LIMIT_UPLOADS_PER_HOUR", 10)
	v.SetDefault("RATE_LIMIT_BURST_SIZE", 5)
	v.SetDefault("RATE_LIMIT_MAX_SESSIONS", 1000)
	v.SetDefault("CORS_ALLOWED_ORIGINS", []string{})
}

// decode unmarshals, normalizes and validates the configuration held by v.
func decode(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	config.LogLevel = strings.ToLower(strings.TrimSpace(config.LogLevel))
	config.UIMode = strings.ToLower(strings.TrimSpace(config.UIMode))
	config.BackendURL = strings.TrimRight(strings.TrimSpace(config.BackendURL), "/")

	origins := make([]string, 0, len(config.CORSAllowedOrigins))
	for _, origin := range config.CORSAllowedOrigins {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			origins = append(origins, origin)
		}
	}
	config.CORSAllowedOrigins = origins

	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	config.BackendTimeout = time.Duration(config.BackendTimeoutSeconds) * time.Second
	config.CopyFeedbackDelay = time.Duration(config.CopyFeedbackDelayMS) * time.Millisecond
	config.SessionRetentionAge = time.Duration(config.SessionRetentionMinutes) * time.Minute
	config.SessionCleanupInterval = time.Duration(config.SessionCleanupMinutes) * time.Minute
	return &config, nil
}
