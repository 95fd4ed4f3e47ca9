package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDecodeDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	cfg, err := decode(v)
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, UIModeWeb, cfg.UIMode)
	assert.Equal(t, "http://127.0.0.1:5000", cfg.BackendURL)
	assert.Equal(t, time.Duration(0), cfg.BackendTimeout)
	assert.Equal(t, 2*time.Second, cfg.CopyFeedbackDelay)
	assert.Equal(t, 2*time.Hour, cfg.SessionRetentionAge)
	assert.Equal(t, 10*time.Minute, cfg.SessionCleanupInterval)
	assert.Empty(t, cfg.CORSAllowedOrigins)
}

func TestDecodeNormalizes(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("BACKEND_URL", " http://analysis.local:5000/ ")
	v.Set("UI_MODE", "Terminal")
	v.Set("BACKEND_TIMEOUT", 30)
	v.Set("CORS_ALLOWED_ORIGINS", []string{" http://a.test ", ""})

	cfg, err := decode(v)
	require.NoError(t, err)

	assert.Equal(t, "http://analysis.local:5000", cfg.BackendURL)
	assert.Equal(t, UIModeTerminal, cfg.UIMode)
	assert.Equal(t, 30*time.Second, cfg.BackendTimeout)
	assert.Equal(t, []string{"http://a.test"}, cfg.CORSAllowedOrigins)
}

func TestDecodeReadsIntegerSettingsFromEnv(t *testing.T) {
	t.Setenv("BACKEND_TIMEOUT", "30")
	t.Setenv("COPY_FEEDBACK_DELAY_MS", "1500")
	t.Setenv("SESSION_RETENTION_AGE", "45")
	t.Setenv("SESSION_CLEANUP_INTERVAL", "5")
	t.Setenv("WEB_PORT", "9090")

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	cfg, err := decode(v)
	require.NoError(t, err)

	assert.Equal(t, 30, cfg.BackendTimeoutSeconds)
	assert.Equal(t, 30*time.Second, cfg.BackendTimeout)
	assert.Equal(t, 1500*time.Millisecond, cfg.CopyFeedbackDelay)
	assert.Equal(t, 45*time.Minute, cfg.SessionRetentionAge)
	assert.Equal(t, 5*time.Minute, cfg.SessionCleanupInterval)
	assert.Equal(t, 9090, cfg.WebPort)
}

func TestDecodeRejectsInvalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value any
	}{
		{name: "unknown_ui_mode", key: "UI_MODE", value: "gui"},
		{name: "backend_url_not_url", key: "BACKEND_URL", value: "not a url"},
		{name: "port_out_of_range", key: "WEB_PORT", value: 70000},
		{name: "zero_burst", key: "RATE_LIMIT_BURST_SIZE", value: 0},
		{name: "negative_timeout", key: "BACKEND_TIMEOUT", value: -1},
		{name: "duration_text_timeout", key: "BACKEND_TIMEOUT", value: "30s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viper.New()
			setDefaults(v)
			v.Set(tt.key, tt.value)

			_, err := decode(v)
			assert.Error(t, err)
		})
	}
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zap.DebugLevel, parseLevel("DEBUG"))
	assert.Equal(t, zap.WarnLevel, parseLevel("warning"))
	assert.Equal(t, zap.ErrorLevel, parseLevel("error"))
	assert.Equal(t, zap.InfoLevel, parseLevel("verbose"))
}
