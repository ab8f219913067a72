package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/emperorhan/base-score/internal/domain/model"
)

type Config struct {
	Explorer    ExplorerConfig
	RPC         RPCConfig
	Fetch       FetchConfig
	Names       NamesConfig
	Server      ServerConfig
	Leaderboard LeaderboardConfig
	Manifest    ManifestConfig
	Tracing     TracingConfig
	Alert       AlertConfig
	Log         LogConfig
}

type ExplorerConfig struct {
	URL           string
	APIKey        string
	RPS           float64
	Burst         int
	Timeout       time.Duration
	RetryAttempts int
}

type RPCConfig struct {
	URL     string
	ChainID int64
}

type FetchConfig struct {
	TxPageSize  int
	RecentLimit int
}

type NamesConfig struct {
	CacheSize int
	CacheTTL  time.Duration
}

type ServerConfig struct {
	Port int
}

type LeaderboardConfig struct {
	MaxAddresses int
}

type ManifestConfig struct {
	File    string
	HomeURL string
}

type TracingConfig struct {
	Enabled     bool
	Endpoint    string
	Insecure    bool
	SampleRatio float64
}

type AlertConfig struct {
	SlackWebhookURL string
	WebhookURL      string
	Cooldown        time.Duration
	CheckInterval   time.Duration
}

// Enabled reports whether any alert channel is configured.
func (a AlertConfig) Enabled() bool {
	return a.SlackWebhookURL != "" || a.WebhookURL != ""
}

type LogConfig struct {
	Level string
}

// Load reads the configuration from the environment. A .env file in the
// working directory is applied first; real environment variables win.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Explorer: ExplorerConfig{
			URL:           getEnv("BASESCAN_API_URL", "https://api.basescan.org/api"),
			APIKey:        getEnv("BASESCAN_API_KEY", ""),
			RPS:           getEnvFloat("EXPLORER_RPS", 5),
			Burst:         getEnvInt("EXPLORER_BURST", 5),
			Timeout:       time.Duration(getEnvInt("EXPLORER_TIMEOUT_MS", 10000)) * time.Millisecond,
			RetryAttempts: getEnvInt("EXPLORER_RETRY_ATTEMPTS", 3),
		},
		RPC: RPCConfig{
			URL:     getEnv("BASE_RPC_URL", "https://mainnet.base.org"),
			ChainID: int64(getEnvInt("BASE_CHAIN_ID", int(model.BaseMainnetChainID))),
		},
		Fetch: FetchConfig{
			TxPageSize:  getEnvInt("TX_PAGE_SIZE", 100),
			RecentLimit: getEnvInt("RECENT_TX_LIMIT", 20),
		},
		Names: NamesConfig{
			CacheSize: getEnvInt("NAME_CACHE_SIZE", 1024),
			CacheTTL:  time.Duration(getEnvInt("NAME_CACHE_TTL_SEC", 600)) * time.Second,
		},
		Server: ServerConfig{
			Port: getEnvInt("HTTP_PORT", 8080),
		},
		Leaderboard: LeaderboardConfig{
			MaxAddresses: getEnvInt("LEADERBOARD_MAX_ADDRESSES", 25),
		},
		Manifest: ManifestConfig{
			File:    getEnv("MANIFEST_FILE", ""),
			HomeURL: getEnv("APP_HOME_URL", ""),
		},
		Tracing: TracingConfig{
			Enabled:     getEnvBool("OTEL_ENABLED", false),
			Endpoint:    getEnv("OTEL_ENDPOINT", "localhost:4317"),
			Insecure:    getEnvBool("OTEL_INSECURE", true),
			SampleRatio: getEnvFloat("OTEL_SAMPLE_RATIO", 0.1),
		},
		Alert: AlertConfig{
			SlackWebhookURL: getEnv("ALERT_SLACK_WEBHOOK_URL", ""),
			WebhookURL:      getEnv("ALERT_WEBHOOK_URL", ""),
			Cooldown:        time.Duration(getEnvInt("ALERT_COOLDOWN_SEC", 300)) * time.Second,
			CheckInterval:   time.Duration(getEnvInt("ALERT_CHECK_INTERVAL_SEC", 30)) * time.Second,
		},
		Log: LogConfig{
			Level: strings.ToLower(getEnv("LOG_LEVEL", "info")),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Chain returns the descriptor for the configured chain id.
func (c *Config) Chain() model.ChainDescriptor {
	d, _ := model.DescriptorForChainID(c.RPC.ChainID)
	return d
}

func (c *Config) validate() error {
	if c.Explorer.URL == "" {
		return fmt.Errorf("BASESCAN_API_URL is required")
	}
	if c.RPC.URL == "" {
		return fmt.Errorf("BASE_RPC_URL is required")
	}
	if _, ok := model.DescriptorForChainID(c.RPC.ChainID); !ok {
		return fmt.Errorf("BASE_CHAIN_ID %d is not a Base chain", c.RPC.ChainID)
	}
	if c.Explorer.RPS < 0 {
		return fmt.Errorf("EXPLORER_RPS must be >= 0")
	}
	if c.Explorer.RetryAttempts < 1 {
		return fmt.Errorf("EXPLORER_RETRY_ATTEMPTS must be >= 1")
	}
	if c.Fetch.TxPageSize < 1 || c.Fetch.TxPageSize > 10000 {
		return fmt.Errorf("TX_PAGE_SIZE must be between 1 and 10000")
	}
	if c.Fetch.RecentLimit < 1 || c.Fetch.RecentLimit > c.Fetch.TxPageSize {
		return fmt.Errorf("RECENT_TX_LIMIT must be between 1 and TX_PAGE_SIZE")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT %d out of range", c.Server.Port)
	}
	if c.Leaderboard.MaxAddresses < 1 {
		return fmt.Errorf("LEADERBOARD_MAX_ADDRESSES must be >= 1")
	}
	if c.Tracing.SampleRatio < 0 || c.Tracing.SampleRatio > 1 {
		return fmt.Errorf("OTEL_SAMPLE_RATIO must be between 0 and 1")
	}
	if c.Alert.Enabled() && c.Alert.CheckInterval <= 0 {
		return fmt.Errorf("ALERT_CHECK_INTERVAL_SEC must be > 0")
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("LOG_LEVEL %q is not one of debug, info, warn, error", c.Log.Level)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
