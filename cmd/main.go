package main

import (
	"context"
	"os"
	"time"

	"dev-ticker-server/internal/config"

	"github.com/spf13/cobra"
)

const (
	serviceName = "dev-ticker"
	version     = "1.0.0"
)

func main() {
	if err := newRootCommand().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

// newRootCommand serves the ticker API; flags override DEV_TICKER_* environment variables
func newRootCommand() *cobra.Command {
	vip := config.New()

	cmd := &cobra.Command{
		Use:           serviceName,
		Short:         "Mock CoinMarketCap and CoinGecko price API for local development",
		Version:       version,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.LoadDotEnv(); err != nil {
				return err
			}
			cfg, err := config.Load(vip)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}

	flags := cmd.Flags()
	flags.Bool("sloppy", false, "randomly fail 5% of requests and delay the rest (60% 100ms, 30% 100ms-1s, 10% 5s)")
	flags.String("addr", "0.0.0.0:9876", "address the ticker API listens on")
	flags.String("ops-addr", "127.0.0.1:9877", "address of the health/info/metrics listener, empty to disable")
	flags.String("tokens", "etc/tokens/localhost.json", "path of the JSON token catalog")
	flags.String("log-level", "info", "log level: debug, info, warn, error")
	flags.String("log-file", "", "optional rotated log file")
	flags.Duration("shutdown-timeout", time.Second, "grace period for in-flight requests on shutdown")

	for key, name := range map[string]string{
		config.SloppyKey:          "sloppy",
		config.ListenAddrKey:      "addr",
		config.OpsAddrKey:         "ops-addr",
		config.TokensFileKey:      "tokens",
		config.LogLevelKey:        "log-level",
		config.LogFileKey:         "log-file",
		config.ShutdownTimeoutKey: "shutdown-timeout",
	} {
		if err := vip.BindPFlag(key, flags.Lookup(name)); err != nil {
			panic(err)
		}
	}

	cmd.AddCommand(newSampleCommand())
	return cmd
}
