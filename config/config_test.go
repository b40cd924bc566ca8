package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alejandrodnm/xtrader/config"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"NEXT_PUBLIC_API_URL", "XTRADER_TOKEN", "XTRADER_USER_ID", "LOG_LEVEL", "LOG_FORMAT"} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	cfg, err := config.Load(writeConfig(t, "{}\n"))
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8000", cfg.API.BaseURL)
	assert.Equal(t, "v3", cfg.API.Version)
	assert.Equal(t, 10*time.Second, cfg.Timeout())
	assert.Equal(t, 2*time.Second, cfg.PriceInterval())
	assert.Equal(t, 5*time.Second, cfg.AccountInterval())
	assert.Equal(t, 10*time.Second, cfg.AnalyticsInterval())
	assert.Equal(t, time.Minute, cfg.CommunityInterval())
	assert.Equal(t, 4*time.Second, cfg.Dismiss())
	assert.Equal(t, 30*time.Second, cfg.PingInterval())
	assert.Equal(t, "R_100", cfg.Trading.Market)
	assert.True(t, cfg.Stake().Equal(decimal.NewFromInt(10)))
	assert.Equal(t, "xtrader.db", cfg.Storage.DSN)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
}

func TestLoad_YAMLValues(t *testing.T) {
	clearEnv(t)
	cfg, err := config.Load(writeConfig(t, `
api:
  base_url: "https://api.example.com/"
  version: v2
  signal_variant: advanced
poll:
  price_seconds: 1
trading:
  market: R_50
  stake: 2.5
`))
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.com", cfg.API.BaseURL)
	assert.Equal(t, "v2", cfg.API.Version)
	assert.Equal(t, "advanced", cfg.API.SignalVariant)
	assert.Equal(t, time.Second, cfg.PriceInterval())
	assert.Equal(t, "R_50", cfg.Trading.Market)
	assert.True(t, cfg.Stake().Equal(decimal.RequireFromString("2.5")))
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("NEXT_PUBLIC_API_URL", "http://backend:9000")
	t.Setenv("XTRADER_TOKEN", "tok")
	t.Setenv("XTRADER_USER_ID", "u-7")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := config.Load(writeConfig(t, "api:\n  base_url: http://ignored\n"))
	require.NoError(t, err)
	assert.Equal(t, "http://backend:9000", cfg.API.BaseURL)
	assert.Equal(t, "tok", cfg.Session.Token)
	assert.Equal(t, "u-7", cfg.Session.UserID)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_InvalidVersion(t *testing.T) {
	clearEnv(t)
	_, err := config.Load(writeConfig(t, "api:\n  version: v9\n"))
	assert.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_BadYAML(t *testing.T) {
	_, err := config.Load(writeConfig(t, "api: [unclosed\n"))
	assert.Error(t, err)
}

func TestDefault(t *testing.T) {
	clearEnv(t)
	t.Setenv("XTRADER_USER_ID", "u-1")
	cfg := config.Default()
	assert.Equal(t, 2, cfg.API.MaxRetries)
	assert.True(t, cfg.Stream.Enabled)
	assert.Equal(t, "u-1", cfg.Session.UserID)
	assert.Equal(t, ":9090", cfg.Metrics.Addr)
}
