package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_DefaultsApplied(t *testing.T) {
	path := writeConfig(t, "exchange:\n  rest_endpoint: \"https://fapi.binance.com\"\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Reference.CoinGeckoPages)
	assert.Equal(t, 500, cfg.Reference.CoinMarketCapLimit)
	assert.Equal(t, 100_000_000.0, cfg.Screener.MinFDVUSD)
	assert.Equal(t, "screener.db", cfg.Storage.DBPath)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.True(t, cfg.Change24hZeroFallbackEnabled())
}

func TestLoad_EnvOverlaysAPIKey(t *testing.T) {
	t.Setenv("CMC_API_KEY", "from-env")
	path := writeConfig(t, "reference:\n  cmc_api_key: \"from-yaml\"\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Reference.CMCAPIKey)
}

func TestLoad_ZeroFallbackCanBeDisabled(t *testing.T) {
	path := writeConfig(t, "screener:\n  change_24h_zero_fallback: false\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.False(t, cfg.Change24hZeroFallbackEnabled())
}

func TestWindow_Bounds(t *testing.T) {
	path := writeConfig(t, "screener:\n  window_start: \"2025-11-01\"\n  window_end: \"2025-12-31\"\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	start, end, err := cfg.Window()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, 12, 31, 23, 59, 59, 0, time.UTC), end)
}

func TestWindow_RejectsInvertedRange(t *testing.T) {
	path := writeConfig(t, "screener:\n  window_start: \"2025-12-31\"\n  window_end: \"2025-11-01\"\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	_, _, err = cfg.Window()
	require.Error(t, err)
}

func TestLoad_MissingFileIsAnError(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}
