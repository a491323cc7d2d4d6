package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Config is the explicit configuration passed into each component at
// construction. No component reads the environment directly: the env overlay
// happens here, once, after the YAML file is decoded.
type Config struct {
	Exchange struct {
		RESTEndpoint string `yaml:"rest_endpoint"`
	} `yaml:"exchange"`
	Reference struct {
		CoinGeckoEndpoint     string `yaml:"coingecko_endpoint"`
		CoinGeckoPages        int    `yaml:"coingecko_pages"`
		CoinMarketCapEndpoint string `yaml:"coinmarketcap_endpoint"`
		CoinMarketCapLimit    int    `yaml:"coinmarketcap_limit"`
		// Optional. Without it the CoinMarketCap source is skipped.
		CMCAPIKey string `yaml:"cmc_api_key" envconfig:"CMC_API_KEY"`
	} `yaml:"reference"`
	Screener struct {
		MinFDVUSD float64 `yaml:"min_fdv_usd"`
		// Substitute the reference 24h change when the exchange reports
		// exactly zero. Kept for compatibility with the old screener.
		Change24hZeroFallback *bool  `yaml:"change_24h_zero_fallback"`
		WindowStart           string `yaml:"window_start"` // YYYY-MM-DD, inclusive
		WindowEnd             string `yaml:"window_end"`   // YYYY-MM-DD, inclusive
	} `yaml:"screener"`
	Storage struct {
		DBPath            string `yaml:"db_path"`
		LegacyHistoryFile string `yaml:"legacy_history_file"`
	} `yaml:"storage"`
	Report struct {
		DataFile string `yaml:"data_file"` // JS dataset output, empty disables the file
	} `yaml:"report"`
	Logging struct {
		Level string `yaml:"level"`
		File  string `yaml:"file"`
	} `yaml:"logging"`
}

// Load reads the YAML file, overlays SCREENER_*-prefixed environment
// variables (plus the explicitly named ones like CMC_API_KEY) and applies
// defaults. A .env file is honored when present.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := envconfig.Process("screener", &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Reference.CoinGeckoPages <= 0 {
		c.Reference.CoinGeckoPages = 5
	}
	if c.Reference.CoinMarketCapLimit <= 0 {
		c.Reference.CoinMarketCapLimit = 500
	}
	if c.Screener.MinFDVUSD == 0 {
		c.Screener.MinFDVUSD = 100_000_000
	}
	if c.Screener.WindowStart == "" {
		c.Screener.WindowStart = "2025-11-01"
	}
	if c.Screener.WindowEnd == "" {
		c.Screener.WindowEnd = "2025-12-31"
	}
	if c.Storage.DBPath == "" {
		c.Storage.DBPath = "screener.db"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

// Change24hZeroFallbackEnabled defaults to true when the key is absent.
func (c *Config) Change24hZeroFallbackEnabled() bool {
	if c.Screener.Change24hZeroFallback == nil {
		return true
	}
	return *c.Screener.Change24hZeroFallback
}

// Window returns the historical window bounds: start at midnight UTC, end at
// the last second of the end date.
func (c *Config) Window() (time.Time, time.Time, error) {
	start, err := time.Parse("2006-01-02", c.Screener.WindowStart)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("parse window_start: %w", err)
	}
	end, err := time.Parse("2006-01-02", c.Screener.WindowEnd)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("parse window_end: %w", err)
	}
	end = end.Add(24*time.Hour - time.Second)
	if !end.After(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("window_end %s is not after window_start %s",
			c.Screener.WindowEnd, c.Screener.WindowStart)
	}
	return start.UTC(), end.UTC(), nil
}
