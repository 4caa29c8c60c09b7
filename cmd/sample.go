package main

import (
	"context"
	"fmt"
	"time"

	"dev-ticker-server/internal/client"

	"github.com/spf13/cobra"
)

// default keys per endpoint when --key is not given
var defaultSampleKeys = map[string]string{
	"quotes":       "ETH",
	"list":         "",
	"market_chart": "ethereum",
}

func newSampleCommand() *cobra.Command {
	var (
		baseURL     string
		endpoint    string
		key         string
		requests    int
		concurrency int
		timeout     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Fire requests at a running ticker and report error rate and latency buckets",
		RunE: func(cmd *cobra.Command, args []string) error {
			if requests <= 0 || concurrency <= 0 {
				return fmt.Errorf("-n and --concurrency must be positive")
			}
			call, err := sampleCall(client.NewClient(baseURL), endpoint, key)
			if err != nil {
				return err
			}

			callWithTimeout := func(ctx context.Context) error {
				ctx, cancel := context.WithTimeout(ctx, timeout)
				defer cancel()
				return call(ctx)
			}

			summary, err := client.Sample(cmd.Context(), requests, concurrency, callWithTimeout)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "requests:     %d\n", summary.Total)
			fmt.Fprintf(out, "errors:       %d (%.2f%%)\n", summary.Errors, 100*summary.ErrorRate())
			fmt.Fprintf(out, "< 300ms:      %d (%.2f%%)\n", summary.Fast, 100*summary.Share(summary.Fast))
			fmt.Fprintf(out, "300ms - 4s:   %d (%.2f%%)\n", summary.Medium, 100*summary.Share(summary.Medium))
			fmt.Fprintf(out, ">= 4s:        %d (%.2f%%)\n", summary.Slow, 100*summary.Share(summary.Slow))
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&baseURL, "url", "http://127.0.0.1:9876", "base URL of the ticker server")
	flags.StringVar(&endpoint, "endpoint", "market_chart", "endpoint to sample: quotes, list, market_chart")
	flags.StringVar(&key, "key", "", "symbol or coin id to query (defaults to ETH / ethereum)")
	flags.IntVarP(&requests, "requests", "n", 1000, "number of requests")
	flags.IntVar(&concurrency, "concurrency", 50, "maximum requests in flight")
	flags.DurationVar(&timeout, "timeout", 10*time.Second, "per-request timeout")

	return cmd
}

// sampleCall returns the client call for an endpoint name
func sampleCall(c *client.Client, endpoint, key string) (func(ctx context.Context) error, error) {
	def, ok := defaultSampleKeys[endpoint]
	if !ok {
		return nil, fmt.Errorf("unknown endpoint %q", endpoint)
	}
	if key == "" {
		key = def
	}

	switch endpoint {
	case "quotes":
		return func(ctx context.Context) error {
			_, err := c.LatestQuote(ctx, key)
			return err
		}, nil
	case "list":
		return func(ctx context.Context) error {
			_, err := c.CoinsList(ctx)
			return err
		}, nil
	default:
		return func(ctx context.Context) error {
			_, err := c.MarketChart(ctx, key)
			return err
		}, nil
	}
}
