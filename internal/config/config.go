package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	// ListenAddrKey is the host:port the ticker API listens on
	ListenAddrKey = "ADDR"
	// OpsAddrKey is the host:port of the health/info/metrics listener, empty disables it
	OpsAddrKey = "OPS_ADDR"
	// TokensFileKey is the path of the JSON token catalog
	TokensFileKey = "TOKENS_FILE"
	// SloppyKey enables random errors and delays on every ticker endpoint
	SloppyKey = "SLOPPY"
	// LogLevelKey is one of debug, info, warn, error
	LogLevelKey = "LOG_LEVEL"
	// LogFileKey is an optional path for a rotated log file in addition to stdout
	LogFileKey = "LOG_FILE"
	// ShutdownTimeoutKey is the grace period given to in-flight requests on shutdown
	ShutdownTimeoutKey = "SHUTDOWN_TIMEOUT"
	// MetricsIntervalKey is how often system metrics are sampled
	MetricsIntervalKey = "METRICS_INTERVAL"

	envPrefix = "DEV_TICKER"
)

// Config holds the resolved server settings
type Config struct {
	ListenAddr      string
	OpsAddr         string
	TokensFile      string
	Sloppy          bool
	LogLevel        string
	LogFile         string
	ShutdownTimeout time.Duration
	MetricsInterval time.Duration
}

// New returns a viper instance with defaults and environment lookup configured
func New() *viper.Viper {
	vip := viper.New()
	vip.SetEnvPrefix(envPrefix)
	vip.AutomaticEnv()

	vip.SetDefault(ListenAddrKey, "0.0.0.0:9876")
	vip.SetDefault(OpsAddrKey, "127.0.0.1:9877")
	vip.SetDefault(TokensFileKey, "etc/tokens/localhost.json")
	vip.SetDefault(SloppyKey, false)
	vip.SetDefault(LogLevelKey, "info")
	vip.SetDefault(LogFileKey, "")
	vip.SetDefault(ShutdownTimeoutKey, time.Second)
	vip.SetDefault(MetricsIntervalKey, 15*time.Second)

	return vip
}

// LoadDotEnv loads variables from the given .env files, or ./.env when none is given.
// Missing files are not an error.
func LoadDotEnv(files ...string) error {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("error while loading .env: %w", err)
	}
	return nil
}

// Load resolves and validates the configuration from vip
func Load(vip *viper.Viper) (*Config, error) {
	cfg := &Config{
		ListenAddr:      vip.GetString(ListenAddrKey),
		OpsAddr:         vip.GetString(OpsAddrKey),
		TokensFile:      vip.GetString(TokensFileKey),
		Sloppy:          vip.GetBool(SloppyKey),
		LogLevel:        vip.GetString(LogLevelKey),
		LogFile:         vip.GetString(LogFileKey),
		ShutdownTimeout: vip.GetDuration(ShutdownTimeoutKey),
		MetricsInterval: vip.GetDuration(MetricsIntervalKey),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("error while validating config: %w", err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.ListenAddr == "" {
		return fmt.Errorf("%s must not be empty", ListenAddrKey)
	}
	if c.ListenAddr == c.OpsAddr {
		return fmt.Errorf("%s and %s must differ", ListenAddrKey, OpsAddrKey)
	}
	if c.TokensFile == "" {
		return fmt.Errorf("%s must not be empty", TokensFileKey)
	}
	if c.ShutdownTimeout < 0 {
		return fmt.Errorf("%s must not be negative", ShutdownTimeoutKey)
	}
	if c.MetricsInterval <= 0 {
		return fmt.Errorf("%s must be positive", MetricsIntervalKey)
	}
	return nil
}
